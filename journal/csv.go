package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{
	"time", "id", "symbol", "direction",
	"entry", "take_profit", "stop_loss",
	"exit_price", "pnl", "roi", "result",
}

// CSVJournal appends trade records to a single CSV file. The file is
// opened in append mode so the log survives restarts; the header is
// written only when the file is new.
type CSVJournal struct {
	path string
	file *os.File
	w    *csv.Writer
}

func NewCSV(path string) (*CSVJournal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat journal: %w", err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write journal header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &CSVJournal{path: path, file: file, w: w}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.w.Write([]string{
		t.Time.Format(time.RFC3339),
		t.ID,
		t.Symbol,
		t.Direction,
		f(t.Entry),
		f(t.TakeProfit),
		f(t.StopLoss),
		fp(t.ExitPrice),
		fp(t.PnL),
		fp(t.ROI),
		t.Result(),
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

// Summary re-reads the file so that rows appended by earlier runs are
// counted too.
func (j *CSVJournal) Summary() (Summary, error) {
	f, err := os.Open(j.path)
	if err != nil {
		return Summary{}, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	var records []TradeRecord
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Summary{}, fmt.Errorf("read journal: %w", err)
		}
		if first {
			first = false
			continue
		}
		rec, err := parseRow(row)
		if err != nil {
			return Summary{}, err
		}
		records = append(records, rec)
	}

	return summarize(records), nil
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.file.Close()
		return err
	}
	return j.file.Close()
}

func parseRow(row []string) (TradeRecord, error) {
	if len(row) != len(csvHeader) {
		return TradeRecord{}, fmt.Errorf("journal row has %d fields, want %d", len(row), len(csvHeader))
	}

	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return TradeRecord{}, fmt.Errorf("parse journal time: %w", err)
	}

	rec := TradeRecord{ID: row[1], Symbol: row[2], Direction: row[3], Time: ts}
	if rec.Entry, err = strconv.ParseFloat(row[4], 64); err != nil {
		return TradeRecord{}, fmt.Errorf("parse entry: %w", err)
	}
	if rec.TakeProfit, err = strconv.ParseFloat(row[5], 64); err != nil {
		return TradeRecord{}, fmt.Errorf("parse take_profit: %w", err)
	}
	if rec.StopLoss, err = strconv.ParseFloat(row[6], 64); err != nil {
		return TradeRecord{}, fmt.Errorf("parse stop_loss: %w", err)
	}
	if rec.ExitPrice, err = parseOptional(row[7]); err != nil {
		return TradeRecord{}, fmt.Errorf("parse exit_price: %w", err)
	}
	if rec.PnL, err = parseOptional(row[8]); err != nil {
		return TradeRecord{}, fmt.Errorf("parse pnl: %w", err)
	}
	if rec.ROI, err = parseOptional(row[9]); err != nil {
		return TradeRecord{}, fmt.Errorf("parse roi: %w", err)
	}
	return rec, nil
}

func parseOptional(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func fp(x *float64) string {
	if x == nil {
		return ""
	}
	return f(*x)
}
