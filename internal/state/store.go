// Package state persists entered report values and submission history
// using SQLite. Values are stored as the raw entered text keyed by
// (table, period, metric, field path); the engine re-parses on load so a
// correction to a parse rule never requires a data migration.
package state

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/heatstack/heatplan/pkg/report"
)

//go:embed schema.sql
var schemaSQL string

// Submission is one recorded submission of a table for a period, with the
// validation outcome at the time of submission.
type Submission struct {
	ID           string
	TableID      string
	Period       string
	SubmittedAt  time.Time
	HardFindings int
	SoftFindings int
	Note         string
}

// Store persists entered values and submissions in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance. Call Open before use.
func NewStore() *Store {
	return &Store{}
}

// Open opens the SQLite database at path. Use ":memory:" for an
// in-memory database.
func (s *Store) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the schema if it does not exist yet.
func (s *Store) InitSchema() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// ===================================================================
// Entered values
// ===================================================================

// SaveValue stores one entered value as raw text. An empty value deletes
// the stored entry, matching a user clearing a cell.
func (s *Store) SaveValue(tableID, period string, metricID int, field, value string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if value == "" {
		_, err := s.db.Exec(
			`DELETE FROM entered_values WHERE table_id = ? AND period = ? AND metric_id = ? AND field = ?`,
			tableID, period, metricID, field,
		)
		if err != nil {
			return fmt.Errorf("failed to clear value: %w", err)
		}
		return nil
	}

	_, err := s.db.Exec(
		`INSERT INTO entered_values (table_id, period, metric_id, field, value, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (table_id, period, metric_id, field)
		 DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		tableID, period, metricID, field, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save value: %w", err)
	}
	return nil
}

// SaveValues stores a batch of entered values for one table in a single
// transaction. Empty values delete existing entries.
func (s *Store) SaveValues(tableID, period string, values report.TableValues) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	del, err := tx.Prepare(
		`DELETE FROM entered_values WHERE table_id = ? AND period = ? AND metric_id = ? AND field = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer del.Close()

	ins, err := tx.Prepare(
		`INSERT INTO entered_values (table_id, period, metric_id, field, value, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (table_id, period, metric_id, field)
		 DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer ins.Close()

	now := time.Now().UTC()
	for metricID, fields := range values {
		for field, value := range fields {
			if value == "" {
				if _, err := del.Exec(tableID, period, metricID, field); err != nil {
					return fmt.Errorf("failed to clear value: %w", err)
				}
				continue
			}
			if _, err := ins.Exec(tableID, period, metricID, field, value, now); err != nil {
				return fmt.Errorf("failed to save value: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit values: %w", err)
	}
	return nil
}

// TableValues loads all entered values for one table and period.
func (s *Store) TableValues(tableID, period string) (report.TableValues, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT metric_id, field, value FROM entered_values WHERE table_id = ? AND period = ?`,
		tableID, period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load values: %w", err)
	}
	defer rows.Close()

	values := report.TableValues{}
	for rows.Next() {
		var metricID int
		var field, value string
		if err := rows.Scan(&metricID, &field, &value); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		if values[metricID] == nil {
			values[metricID] = map[string]string{}
		}
		values[metricID][field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	return values, nil
}

// PeriodValues loads the entered values of every table for a period,
// keyed by table ID. Summary computation needs the whole set because
// rollups reach into subsidiary tables.
func (s *Store) PeriodValues(period string) (report.ValueSet, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT table_id, metric_id, field, value FROM entered_values WHERE period = ?`,
		period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load values: %w", err)
	}
	defer rows.Close()

	set := report.ValueSet{}
	for rows.Next() {
		var tableID, field, value string
		var metricID int
		if err := rows.Scan(&tableID, &metricID, &field, &value); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		if set[tableID] == nil {
			set[tableID] = report.TableValues{}
		}
		if set[tableID][metricID] == nil {
			set[tableID][metricID] = map[string]string{}
		}
		set[tableID][metricID][field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}
	return set, nil
}

// ===================================================================
// Submissions
// ===================================================================

// RecordSubmission records a submission of a table for a period along with
// the validation finding counts observed at submission time.
func (s *Store) RecordSubmission(tableID, period string, hard, soft int, note string) (*Submission, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	sub := &Submission{
		ID:           uuid.New().String(),
		TableID:      tableID,
		Period:       period,
		SubmittedAt:  time.Now().UTC(),
		HardFindings: hard,
		SoftFindings: soft,
		Note:         note,
	}

	_, err := s.db.Exec(
		`INSERT INTO submissions (id, table_id, period, submitted_at, hard_findings, soft_findings, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.TableID, sub.Period, sub.SubmittedAt, sub.HardFindings, sub.SoftFindings, sub.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}
	return sub, nil
}

// Submissions returns the submission history of a table for a period,
// newest first.
func (s *Store) Submissions(tableID, period string) ([]Submission, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT id, table_id, period, submitted_at, hard_findings, soft_findings, note
		 FROM submissions WHERE table_id = ? AND period = ?
		 ORDER BY submitted_at DESC, rowid DESC`,
		tableID, period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.TableID, &sub.Period, &sub.SubmittedAt,
			&sub.HardFindings, &sub.SoftFindings, &sub.Note); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}
	return subs, nil
}

// LatestSubmission returns the most recent submission of a table for a
// period, or nil when nothing was submitted yet.
func (s *Store) LatestSubmission(tableID, period string) (*Submission, error) {
	subs, err := s.Submissions(tableID, period)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return &subs[0], nil
}
