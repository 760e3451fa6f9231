package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nrtkbb/fnbundle/models"
)

// ErrRunNotFound is returned when a run id is not in the catalog.
var ErrRunNotFound = errors.New("run not found")

// SaveRun records a completed bundle pass, its records and its skipped names
// in one transaction.
func SaveRun(ctx context.Context, db *sql.DB, label string, result *models.BundleResult) (*models.Run, error) {
	run := &models.Run{
		RunUUID:       uuid.New().String(),
		Label:         label,
		InputDir:      result.InputDir,
		OutputPath:    result.OutputPath,
		CreatedAt:     result.StartTime.UTC().Unix(),
		AcceptedCount: len(result.Records),
		SkippedCount:  len(result.Skipped),
		IgnoredCount:  result.Ignored,
	}
	if result.StartTime.IsZero() {
		run.CreatedAt = time.Now().UTC().Unix()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_uuid, label, input_dir, output_path, created_at,
			accepted_count, skipped_count, ignored_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunUUID, run.Label, run.InputDir, run.OutputPath, run.CreatedAt,
		run.AcceptedCount, run.SkippedCount, run.IgnoredCount)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	run.RunID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	recordStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (
			run_id, position, source_name, field1, field2, field3, field4,
			size_bytes, modification_time_utc, creation_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare record statement: %w", err)
	}
	defer recordStmt.Close()

	for i, r := range result.Records {
		_, err := recordStmt.ExecContext(ctx,
			run.RunID, i, r.SourceName,
			r.Fields[0], r.Fields[1], r.Fields[2], r.Fields[3],
			r.SizeBytes, r.ModificationTimeUTC, r.CreationTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert record %s: %w", r.SourceName, err)
		}
	}

	skippedStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO skipped (run_id, position, source_name, field_count)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare skipped statement: %w", err)
	}
	defer skippedStmt.Close()

	for i, s := range result.Skipped {
		if _, err := skippedStmt.ExecContext(ctx, run.RunID, i, s.SourceName, s.FieldCount); err != nil {
			return nil, fmt.Errorf("failed to insert skipped entry %s: %w", s.SourceName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Recorded run %d (%d records, %d skipped)", run.RunID, run.AcceptedCount, run.SkippedCount)
	return run, nil
}

const runColumns = `
	run_id, run_uuid, label, input_dir, output_path, created_at,
	accepted_count, skipped_count, ignored_count
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (models.Run, error) {
	var run models.Run
	err := row.Scan(
		&run.RunID,
		&run.RunUUID,
		&run.Label,
		&run.InputDir,
		&run.OutputPath,
		&run.CreatedAt,
		&run.AcceptedCount,
		&run.SkippedCount,
		&run.IgnoredCount,
	)
	return run, err
}

// GetRun loads one run by id.
func GetRun(ctx context.Context, db *sql.DB, runID int64) (*models.Run, error) {
	run, err := scanRun(db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", runID, err)
	}
	return &run, nil
}

// CountRuns returns the number of runs in the catalog.
func CountRuns(ctx context.Context, db *sql.DB) (int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return total, nil
}

// ListRuns returns runs newest first.
func ListRuns(ctx context.Context, db *sql.DB, limit, offset int) ([]models.Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RecordFilter restricts records to exact field values. Empty strings match
// anything.
type RecordFilter [models.FieldCount]string

func (f RecordFilter) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}
	for i, v := range f {
		if v == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("field%d = ?", i+1))
		args = append(args, v)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

// CountRecords returns the number of records of a run matching filter.
func CountRecords(ctx context.Context, db *sql.DB, runID int64, filter RecordFilter) (int, error) {
	clause, args := filter.where()
	var total int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE run_id = ?`+clause,
		append([]interface{}{runID}, args...)...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return total, nil
}

// ListRecords returns the records of a run in bundle order. A negative limit
// returns all of them.
func ListRecords(ctx context.Context, db *sql.DB, runID int64, filter RecordFilter, limit, offset int) ([]models.Record, error) {
	clause, args := filter.where()
	query := `
		SELECT source_name, field1, field2, field3, field4,
			size_bytes, modification_time_utc, creation_time_utc
		FROM records
		WHERE run_id = ?` + clause + `
		ORDER BY position
		LIMIT ? OFFSET ?
	`
	qargs := append([]interface{}{runID}, args...)
	qargs = append(qargs, limit, offset)

	rows, err := db.QueryContext(ctx, query, qargs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var r models.Record
		err := rows.Scan(
			&r.SourceName,
			&r.Fields[0],
			&r.Fields[1],
			&r.Fields[2],
			&r.Fields[3],
			&r.SizeBytes,
			&r.ModificationTimeUTC,
			&r.CreationTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListSkipped returns the malformed names of a run in listing order.
func ListSkipped(ctx context.Context, db *sql.DB, runID int64) ([]models.SkippedEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT source_name, field_count
		FROM skipped
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query skipped entries: %w", err)
	}
	defer rows.Close()

	skipped := []models.SkippedEntry{}
	for rows.Next() {
		var s models.SkippedEntry
		if err := rows.Scan(&s.SourceName, &s.FieldCount); err != nil {
			return nil, fmt.Errorf("failed to scan skipped row: %w", err)
		}
		skipped = append(skipped, s)
	}
	return skipped, rows.Err()
}
