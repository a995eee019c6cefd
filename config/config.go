// Package config loads and validates run configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/sim"
)

// Config is the complete run configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Run      RunConfig      `json:"run" yaml:"run"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig describes the simulated account.
type AccountConfig struct {
	Currency   string  `json:"currency" yaml:"currency"`
	Balance    float64 `json:"balance" yaml:"balance"`
	Leverage   float64 `json:"leverage" yaml:"leverage"`
	Spread     float64 `json:"spread" yaml:"spread"`
	Commission float64 `json:"commission" yaml:"commission"`
}

// RunConfig describes the simulated period.
type RunConfig struct {
	Start        string   `json:"start" yaml:"start"`
	End          string   `json:"end" yaml:"end"`
	Frequency    string   `json:"frequency" yaml:"frequency"`
	Instruments  []string `json:"instruments" yaml:"instruments"`
	HistoryCount int      `json:"history_count" yaml:"history_count"`
}

// StrategyConfig names a registered strategy and its knobs.
type StrategyConfig struct {
	Name       string  `json:"name" yaml:"name"`
	Instrument string  `json:"instrument,omitempty" yaml:"instrument,omitempty"`
	Units      float64 `json:"units,omitempty" yaml:"units,omitempty"`
	FastPeriod int     `json:"fast_period,omitempty" yaml:"fast_period,omitempty"`
	SlowPeriod int     `json:"slow_period,omitempty" yaml:"slow_period,omitempty"`
	RiskPct    float64 `json:"risk_pct,omitempty" yaml:"risk_pct,omitempty"`
	StopPips   float64 `json:"stop_pips,omitempty" yaml:"stop_pips,omitempty"`
	RR         float64 `json:"rr,omitempty" yaml:"rr,omitempty"`
}

// DataConfig points at the price database.
type DataConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// JournalConfig selects the trade/performance journal backend.
type JournalConfig struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"` // "csv", "sqlite" or empty for none
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	PerfFile   string `json:"perf_file,omitempty" yaml:"perf_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Load reads a YAML or JSON configuration file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := defaults()
	if yamlErr := yaml.Unmarshal(data, cfg); yamlErr != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", yamlErr)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	p := sim.DefaultParameters()
	return &Config{
		Account: AccountConfig{
			Currency: p.AccountCurrency,
			Balance:  p.Balance,
			Leverage: p.Leverage,
		},
		Run: RunConfig{
			Frequency:    p.Frequency.String(),
			HistoryCount: p.HistoryCount,
		},
		Strategy: StrategyConfig{Name: "noop"},
	}
}

// Validate fails fast on anything that would abort a run later: malformed
// times, an unknown frequency, an end before the start.
func (c *Config) Validate() error {
	params, err := c.Parameters()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if c.Data.DBPath == "" {
		return fmt.Errorf("data.db_path is required")
	}
	switch strings.ToLower(c.Journal.Type) {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.PerfFile == "" {
			return fmt.Errorf("journal.trades_file and journal.perf_file are required for a csv journal")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path is required for a sqlite journal")
		}
	default:
		return fmt.Errorf("unknown journal.type %q", c.Journal.Type)
	}
	return nil
}

// Parameters converts the file values into simulation parameters.
func (c *Config) Parameters() (*sim.Parameters, error) {
	freq, err := calendar.ParseFrequency(c.Run.Frequency)
	if err != nil {
		return nil, err
	}
	start, err := parseTime(c.Run.Start)
	if err != nil {
		return nil, fmt.Errorf("run.start: %w", err)
	}
	end, err := parseTime(c.Run.End)
	if err != nil {
		return nil, fmt.Errorf("run.end: %w", err)
	}
	return &sim.Parameters{
		Start:           start,
		End:             end,
		Instruments:     c.Run.Instruments,
		AccountCurrency: c.Account.Currency,
		Balance:         c.Account.Balance,
		Leverage:        c.Account.Leverage,
		Spread:          c.Account.Spread,
		Commission:      c.Account.Commission,
		Frequency:       freq,
		HistoryCount:    c.Run.HistoryCount,
	}, nil
}

// parseTime accepts RFC 3339 or a bare date, taken as midnight UTC.
func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty time", calendar.ErrInvalidTimeSpec)
	}
	if at, err := time.Parse(time.RFC3339, value); err == nil {
		return at, nil
	}
	if at, err := time.Parse("2006-01-02", value); err == nil {
		return at, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", calendar.ErrInvalidTimeSpec, value)
}
