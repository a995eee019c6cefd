package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shine15/iridium/calendar"
)

const validYAML = `
account:
  currency: USD
  balance: 100000
  leverage: 50
  spread: 0.0001
run:
  start: 2019-01-02
  end: 2019-03-01
  frequency: H4
  instruments: [EUR_USD, USD_JPY]
  history_count: 60
strategy:
  name: sma-cross
  instrument: EUR_USD
  fast_period: 20
  slow_period: 50
  risk_pct: 0.005
  stop_pips: 20
data:
  db_path: ./prices.db
journal:
  type: sqlite
  db_path: ./journal.db
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "run.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, "sma-cross", cfg.Strategy.Name)
	assert.Equal(t, []string{"EUR_USD", "USD_JPY"}, cfg.Run.Instruments)

	params, err := cfg.Parameters()
	require.NoError(t, err)
	assert.Equal(t, calendar.H4, params.Frequency)
	assert.InDelta(t, 0.0001, params.Spread, 1e-12)
	assert.Equal(t, 60, params.HistoryCount)
	assert.Equal(t, 2019, params.Start.Year())
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "run.json", `{
		"account": {"currency": "USD", "balance": 50000, "leverage": 30},
		"run": {
			"start": "2019-01-02T00:00:00Z",
			"end": "2019-02-01T00:00:00Z",
			"frequency": "D",
			"instruments": ["EUR_USD"],
			"history_count": 10
		},
		"strategy": {"name": "noop"},
		"data": {"db_path": "./prices.db"}
	}`))
	require.NoError(t, err)

	params, err := cfg.Parameters()
	require.NoError(t, err)
	assert.Equal(t, calendar.D, params.Frequency)
	assert.InDelta(t, 50_000, params.Balance, 1e-9)
}

func TestLoadRejectsBadConfigs(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bad frequency": `
run: {start: 2019-01-02, end: 2019-02-01, frequency: Q, instruments: [EUR_USD]}
data: {db_path: ./x.db}
`,
		"end before start": `
run: {start: 2019-03-01, end: 2019-01-02, frequency: D, instruments: [EUR_USD]}
data: {db_path: ./x.db}
`,
		"bad time": `
run: {start: someday, end: 2019-02-01, frequency: D, instruments: [EUR_USD]}
data: {db_path: ./x.db}
`,
		"no instruments": `
run: {start: 2019-01-02, end: 2019-02-01, frequency: D}
data: {db_path: ./x.db}
`,
		"missing db path": `
run: {start: 2019-01-02, end: 2019-02-01, frequency: D, instruments: [EUR_USD]}
`,
		"csv journal without files": `
run: {start: 2019-01-02, end: 2019-02-01, frequency: D, instruments: [EUR_USD]}
data: {db_path: ./x.db}
journal: {type: csv}
`,
		"unknown journal": `
run: {start: 2019-01-02, end: 2019-02-01, frequency: D, instruments: [EUR_USD]}
data: {db_path: ./x.db}
journal: {type: kafka}
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "bad.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
