package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal stores trade records in a single-table SQLite file.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(id, time, symbol, direction, entry, take_profit, stop_loss, exit_price, pnl, roi, result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Time, t.Symbol, t.Direction,
		t.Entry, t.TakeProfit, t.StopLoss,
		t.ExitPrice, t.PnL, t.ROI, t.Result(),
	)
	return err
}

func (j *SQLiteJournal) Summary() (Summary, error) {
	rows, err := j.db.Query(`
		SELECT id, time, symbol, direction, entry, take_profit, stop_loss, exit_price, pnl, roi
		FROM trades ORDER BY time`)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	var records []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		err := rows.Scan(
			&rec.ID, &rec.Time, &rec.Symbol, &rec.Direction,
			&rec.Entry, &rec.TakeProfit, &rec.StopLoss,
			&rec.ExitPrice, &rec.PnL, &rec.ROI,
		)
		if err != nil {
			return Summary{}, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	return summarize(records), nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
