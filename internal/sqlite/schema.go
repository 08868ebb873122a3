package sqlite

// Schema DDL. Timestamps are stored as RFC 3339 text; the medicines check
// constraint is the last line of defense for the non-negative stock
// invariant, which every write path also enforces.
const (
	createMedicines = `CREATE TABLE IF NOT EXISTS medicines (
    medicine_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    stock INTEGER NOT NULL CHECK (stock >= 0),
    aisle TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createHistory = `CREATE TABLE IF NOT EXISTS history (
    history_id TEXT PRIMARY KEY,
    medicine_id TEXT NOT NULL,
    user TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL,
    timestamp TEXT NOT NULL
);`

	createHistoryIndex = `CREATE INDEX IF NOT EXISTS idx_history_medicine
    ON history (medicine_id, timestamp DESC);`

	createCredentials = `CREATE TABLE IF NOT EXISTS credentials (
    uid TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// schemaStatements lists every DDL statement executed on Attach, in order.
var schemaStatements = []string{
	createMedicines,
	createHistory,
	createHistoryIndex,
	createCredentials,
}
