package journal

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	entry REAL NOT NULL,
	take_profit REAL NOT NULL,
	stop_loss REAL NOT NULL,
	exit_price REAL,
	pnl REAL,
	roi REAL,
	result TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
`
