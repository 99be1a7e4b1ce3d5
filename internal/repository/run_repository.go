package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/itgovern/carga/internal/db"
	"github.com/itgovern/carga/internal/domain"
)

type runRepository struct {
	conn *db.Connection
}

// NewRunRepository wires a repository backed by a database connection.
func NewRunRepository(conn *db.Connection) RunRepository {
	return &runRepository{conn: conn}
}

func (r *runRepository) ready() error {
	if r.conn == nil || r.conn.Pool == nil {
		return fmt.Errorf("run repository not initialized")
	}
	return nil
}

func (r *runRepository) Record(ctx context.Context, ingestion domain.IngestionRun) error {
	if err := r.ready(); err != nil {
		return err
	}

	return r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO ingestion_runs (id, started_at, finished_at)
			 VALUES ($1, $2, $3)`,
			ingestion.ID,
			ingestion.StartedAt,
			ingestion.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for position, file := range ingestion.Files {
			outcomes, marshalErr := json.Marshal(file.Outcomes)
			if marshalErr != nil {
				return fmt.Errorf("failed to encode outcomes for %s: %w", file.FileName, marshalErr)
			}
			_, err = tx.Exec(
				ctx,
				`INSERT INTO ingestion_run_files
				 (run_id, position, file_name, entity_type, status, total_records, succeeded, failed, skip_reason, outcomes)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				ingestion.ID,
				position,
				file.FileName,
				string(file.EntityType),
				string(file.Status),
				file.TotalRecords,
				file.Succeeded,
				file.Failed,
				file.SkipReason,
				outcomes,
			)
			if err != nil {
				return fmt.Errorf("failed to insert file summary %s: %w", file.FileName, err)
			}
		}

		for position, entry := range ingestion.Log {
			_, err = tx.Exec(
				ctx,
				`INSERT INTO ingestion_run_logs (run_id, position, logged_at, severity, message)
				 VALUES ($1, $2, $3, $4, $5)`,
				ingestion.ID,
				position,
				entry.Timestamp,
				string(entry.Severity),
				entry.Message,
			)
			if err != nil {
				return fmt.Errorf("failed to insert log entry: %w", err)
			}
		}

		return nil
	})
}

func (r *runRepository) Get(ctx context.Context, id uuid.UUID) (domain.IngestionRun, error) {
	if err := r.ready(); err != nil {
		return domain.IngestionRun{}, err
	}

	var result domain.IngestionRun
	var started, finished pgtype.Timestamptz
	err := r.conn.Pool.QueryRow(
		ctx,
		`SELECT id, started_at, finished_at FROM ingestion_runs WHERE id = $1`,
		id,
	).Scan(&result.ID, &started, &finished)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.IngestionRun{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return domain.IngestionRun{}, fmt.Errorf("failed to load run: %w", err)
	}
	if started.Valid {
		result.StartedAt = started.Time
	}
	if finished.Valid {
		result.FinishedAt = finished.Time
	}

	files, err := r.loadFiles(ctx, id)
	if err != nil {
		return domain.IngestionRun{}, err
	}
	result.Files = files

	log, err := r.loadLog(ctx, id)
	if err != nil {
		return domain.IngestionRun{}, err
	}
	result.Log = log

	return result, nil
}

func (r *runRepository) List(ctx context.Context, limit, offset int) ([]domain.IngestionRun, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT id, started_at, finished_at
		 FROM ingestion_runs
		 ORDER BY started_at DESC
		 LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.IngestionRun{}
	for rows.Next() {
		var result domain.IngestionRun
		var started, finished pgtype.Timestamptz
		if scanErr := rows.Scan(&result.ID, &started, &finished); scanErr != nil {
			return nil, fmt.Errorf("failed to scan run: %w", scanErr)
		}
		if started.Valid {
			result.StartedAt = started.Time
		}
		if finished.Valid {
			result.FinishedAt = finished.Time
		}
		runs = append(runs, result)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", rowsErr)
	}
	return runs, nil
}

func (r *runRepository) loadFiles(ctx context.Context, id uuid.UUID) ([]domain.FileSummary, error) {
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT file_name, entity_type, status, total_records, succeeded, failed, skip_reason, outcomes
		 FROM ingestion_run_files
		 WHERE run_id = $1
		 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load file summaries: %w", err)
	}
	defer rows.Close()

	files := []domain.FileSummary{}
	for rows.Next() {
		var file domain.FileSummary
		var entityType, status string
		var outcomes []byte
		if scanErr := rows.Scan(
			&file.FileName,
			&entityType,
			&status,
			&file.TotalRecords,
			&file.Succeeded,
			&file.Failed,
			&file.SkipReason,
			&outcomes,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan file summary: %w", scanErr)
		}
		file.EntityType = domain.EntityType(entityType)
		file.Status = domain.FileStatus(status)
		if len(outcomes) > 0 {
			if unmarshalErr := json.Unmarshal(outcomes, &file.Outcomes); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to decode outcomes: %w", unmarshalErr)
			}
		}
		files = append(files, file)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate file summaries: %w", rowsErr)
	}
	return files, nil
}

func (r *runRepository) loadLog(ctx context.Context, id uuid.UUID) ([]domain.LogEntry, error) {
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT logged_at, severity, message
		 FROM ingestion_run_logs
		 WHERE run_id = $1
		 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load run log: %w", err)
	}
	defer rows.Close()

	log := []domain.LogEntry{}
	for rows.Next() {
		var entry domain.LogEntry
		var loggedAt pgtype.Timestamptz
		var severity string
		if scanErr := rows.Scan(&loggedAt, &severity, &entry.Message); scanErr != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", scanErr)
		}
		if loggedAt.Valid {
			entry.Timestamp = loggedAt.Time
		}
		entry.Severity = domain.Severity(severity)
		log = append(log, entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate run log: %w", rowsErr)
	}
	return log, nil
}
