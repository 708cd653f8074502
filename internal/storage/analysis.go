// FILE: stripchess/internal/storage/analysis.go
package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// RecordAnalysis asynchronously stores a search result, replacing any earlier
// result for the same record and depth
func (s *Store) RecordAnalysis(record AnalysisRecord) error {
	return s.enqueue("analysis", func(tx *sql.Tx) error {
		query := `INSERT INTO analyses (
			analysis_id, record, depth, score, line, nodes, created_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(record, depth) DO UPDATE SET
			analysis_id = excluded.analysis_id,
			score = excluded.score,
			line = excluded.line,
			nodes = excluded.nodes,
			created_utc = excluded.created_utc`

		_, err := tx.Exec(query,
			record.AnalysisID, record.Record, record.Depth,
			record.Score, record.Line, record.Nodes, record.CreatedUTC,
		)
		return err
	})
}

// LookupAnalysis returns the stored result for record at depth, or nil
func (s *Store) LookupAnalysis(record string, depth int) (*AnalysisRecord, error) {
	query := `SELECT analysis_id, record, depth, score, line, nodes, created_utc
	FROM analyses WHERE record = ? AND depth = ?`

	var a AnalysisRecord
	err := s.db.QueryRow(query, record, depth).Scan(
		&a.AnalysisID, &a.Record, &a.Depth, &a.Score, &a.Line, &a.Nodes, &a.CreatedUTC,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup failed: %w", err)
	}
	return &a, nil
}

// QueryAnalyses retrieves analyses with optional record filtering, deepest first
func (s *Store) QueryAnalyses(record string) ([]AnalysisRecord, error) {
	query := `SELECT analysis_id, record, depth, score, line, nodes, created_utc
	FROM analyses WHERE 1=1`

	var args []interface{}

	if record != "" && record != "*" {
		query += " AND record = ?"
		args = append(args, record)
	}

	query += " ORDER BY record, depth DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var analyses []AnalysisRecord
	for rows.Next() {
		var a AnalysisRecord
		err := rows.Scan(
			&a.AnalysisID, &a.Record, &a.Depth, &a.Score, &a.Line, &a.Nodes, &a.CreatedUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return analyses, nil
}

// DeleteAnalyses asynchronously removes every stored result for record
func (s *Store) DeleteAnalyses(record string) error {
	return s.enqueue("delete analyses", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM analyses WHERE record = ?`, record)
		return err
	})
}
