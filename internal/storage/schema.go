// FILE: stripchess/internal/storage/schema.go
package storage

import "time"

// AnalysisRecord represents a row in the analyses table
type AnalysisRecord struct {
	AnalysisID string    `db:"analysis_id"`
	Record     string    `db:"record"`
	Depth      int       `db:"depth"`
	Score      int       `db:"score"`
	Line       string    `db:"line"` // space separated "from-to" moves
	Nodes      int       `db:"nodes"`
	CreatedUTC time.Time `db:"created_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS analyses (
	analysis_id TEXT PRIMARY KEY,
	record TEXT NOT NULL,
	depth INTEGER NOT NULL CHECK(depth >= 0),
	score INTEGER NOT NULL,
	line TEXT NOT NULL DEFAULT '',
	nodes INTEGER NOT NULL DEFAULT 0,
	created_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(record, depth)
);

CREATE INDEX IF NOT EXISTS idx_analyses_record ON analyses(record);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_utc);
`
