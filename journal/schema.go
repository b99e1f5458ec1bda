package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	instrument TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	value REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);

CREATE TABLE IF NOT EXISTS standings (
	time DATETIME NOT NULL,
	tick INTEGER NOT NULL,
	member_id TEXT NOT NULL,
	username TEXT NOT NULL,
	algorithm TEXT NOT NULL,
	rank INTEGER NOT NULL,
	portfolio_value REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_standings_time ON standings(time);
`
