package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/nrtkbb/fnbundle/models"
)

// MergeStats reports what MergeDatabase copied.
type MergeStats struct {
	Runs       int
	Records    int
	Skipped    int
	Duplicates int
}

// MergeProgress is called after each run has been copied, before commit.
type MergeProgress func(oldRunID, newRunID int64)

// MergeDatabase copies every run of sourceDB into destDB. Run ids are moved
// past the destination maximum and labels get a "_merged" suffix. Runs whose
// uuid is already in the destination are left out. A cancelled ctx rolls
// the whole merge back. progress may be nil.
func MergeDatabase(ctx context.Context, sourceDB, destDB string, progress MergeProgress) (*MergeStats, error) {
	if _, err := os.Stat(sourceDB); err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}

	source, err := sql.Open("sqlite3", sourceDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}
	defer source.Close()

	if NeedsMigration(source) {
		return nil, fmt.Errorf("source database %s has no catalog schema", sourceDB)
	}

	dest, err := SetupDatabase(destDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open destination database: %w", err)
	}
	defer dest.Close()

	var maxRunID int64
	err = dest.QueryRowContext(ctx, "SELECT COALESCE(MAX(run_id), 0) FROM runs").Scan(&maxRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to get max run_id: %w", err)
	}

	existing := make(map[string]struct{})
	uuidRows, err := dest.QueryContext(ctx, "SELECT run_uuid FROM runs")
	if err != nil {
		return nil, fmt.Errorf("failed to query destination runs: %w", err)
	}
	for uuidRows.Next() {
		var id string
		if err := uuidRows.Scan(&id); err != nil {
			uuidRows.Close()
			return nil, fmt.Errorf("failed to scan run uuid: %w", err)
		}
		existing[id] = struct{}{}
	}
	uuidRows.Close()

	destTx, err := dest.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer destTx.Rollback()

	runStmt, err := destTx.PrepareContext(ctx, `
		INSERT INTO runs (
			run_id, run_uuid, label, input_dir, output_path, created_at,
			accepted_count, skipped_count, ignored_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare run statement: %w", err)
	}
	defer runStmt.Close()

	rows, err := source.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query source runs: %w", err)
	}

	stats := &MergeStats{}
	runIDMap := make(map[int64]int64)
	for rows.Next() {
		select {
		case <-ctx.Done():
			rows.Close()
			return nil, ctx.Err()
		default:
		}

		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if _, dup := existing[run.RunUUID]; dup {
			stats.Duplicates++
			continue
		}

		newID := maxRunID + run.RunID
		runIDMap[run.RunID] = newID

		_, err = runStmt.ExecContext(ctx,
			newID, run.RunUUID, run.Label+"_merged", run.InputDir, run.OutputPath,
			run.CreatedAt, run.AcceptedCount, run.SkippedCount, run.IgnoredCount,
		)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to insert run: %w", err)
		}
		stats.Runs++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source runs: %w", err)
	}

	recordStmt, err := destTx.PrepareContext(ctx, `
		INSERT INTO records (
			run_id, position, source_name, field1, field2, field3, field4,
			size_bytes, modification_time_utc, creation_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare record statement: %w", err)
	}
	defer recordStmt.Close()

	skippedStmt, err := destTx.PrepareContext(ctx, `
		INSERT INTO skipped (run_id, position, source_name, field_count)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare skipped statement: %w", err)
	}
	defer skippedStmt.Close()

	for oldID, newID := range runIDMap {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		n, err := copyRecords(ctx, source, recordStmt, oldID, newID)
		if err != nil {
			return nil, err
		}
		stats.Records += n

		n, err = copySkipped(ctx, source, skippedStmt, oldID, newID)
		if err != nil {
			return nil, err
		}
		stats.Skipped += n

		if progress != nil {
			progress(oldID, newID)
		}
	}

	if err := destTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stats, nil
}

func copyRecords(ctx context.Context, source *sql.DB, stmt *sql.Stmt, oldID, newID int64) (int, error) {
	rows, err := source.QueryContext(ctx, `
		SELECT position, source_name, field1, field2, field3, field4,
			size_bytes, modification_time_utc, creation_time_utc
		FROM records WHERE run_id = ?
	`, oldID)
	if err != nil {
		return 0, fmt.Errorf("failed to query records of run %d: %w", oldID, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var position int
		var r models.Record
		err := rows.Scan(
			&position,
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
			return 0, fmt.Errorf("failed to scan record row: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			newID, position, r.SourceName,
			r.Fields[0], r.Fields[1], r.Fields[2], r.Fields[3],
			r.SizeBytes, r.ModificationTimeUTC, r.CreationTimeUTC,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}
		count++
	}
	return count, rows.Err()
}

func copySkipped(ctx context.Context, source *sql.DB, stmt *sql.Stmt, oldID, newID int64) (int, error) {
	rows, err := source.QueryContext(ctx, `
		SELECT position, source_name, field_count
		FROM skipped WHERE run_id = ?
	`, oldID)
	if err != nil {
		return 0, fmt.Errorf("failed to query skipped entries of run %d: %w", oldID, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var position, fieldCount int
		var name string
		if err := rows.Scan(&position, &name, &fieldCount); err != nil {
			return 0, fmt.Errorf("failed to scan skipped row: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, newID, position, name, fieldCount); err != nil {
			return 0, fmt.Errorf("failed to insert skipped entry: %w", err)
		}
		count++
	}
	return count, rows.Err()
}
