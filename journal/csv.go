package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	trades *csv.Writer
	perf   *csv.Writer
	tf, pf *os.File
}

func NewCSV(tradesPath, perfPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(perfPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	pw := csv.NewWriter(pf)

	closeBoth := func() {
		tf.Close()
		pf.Close()
	}

	if err := tw.Write([]string{"trade_id", "instrument", "units", "entry_price", "exit_price", "open_time", "close_time", "realized_pl", "reason"}); err != nil {
		closeBoth()
		return nil, err
	}
	if err := pw.Write([]string{"time", "nav", "margin_used", "margin_available"}); err != nil {
		closeBoth()
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		closeBoth()
		return nil, err
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		closeBoth()
		return nil, err
	}

	return &CSVJournal{trades: tw, perf: pw, tf: tf, pf: pf}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Instrument,
		f(t.Units),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		f(t.RealizedPL),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordPerf(p PerfSnapshot) error {
	err := j.perf.Write([]string{
		p.Time.Format(time.RFC3339),
		f(p.NAV),
		f(p.MarginUsed),
		f(p.MarginAvailable),
	})
	if err != nil {
		return err
	}
	j.perf.Flush()
	return j.perf.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.perf.Flush()
	if err := j.perf.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.pf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
