package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const importRunColumns = `id, filename, status, total_rows, new_rows, updated_rows,
	unchanged_rows, error_rows, error_log, created_by, started_at, finished_at`

func scanImportRun(row interface{ Scan(...any) error }) (ImportRun, error) {
	var r ImportRun
	err := row.Scan(
		&r.ID, &r.Filename, &r.Status, &r.TotalRows, &r.NewRows, &r.UpdatedRows,
		&r.UnchangedRows, &r.ErrorRows, &r.ErrorLog, &r.CreatedBy,
		&r.StartedAt, &r.FinishedAt,
	)
	return r, err
}

const createImportRun = `
INSERT INTO import_runs (filename, created_by)
VALUES ($1, $2)
RETURNING ` + importRunColumns

type CreateImportRunParams struct {
	Filename  string
	CreatedBy pgtype.Text
}

func (q *Queries) CreateImportRun(ctx context.Context, arg CreateImportRunParams) (ImportRun, error) {
	return scanImportRun(q.db.QueryRow(ctx, createImportRun, arg.Filename, arg.CreatedBy))
}

const finishImportRun = `
UPDATE import_runs SET
	status = $2,
	total_rows = $3,
	new_rows = $4,
	updated_rows = $5,
	unchanged_rows = $6,
	error_rows = $7,
	error_log = $8,
	finished_at = now()
WHERE id = $1
`

type FinishImportRunParams struct {
	ID            pgtype.UUID
	Status        string
	TotalRows     int32
	NewRows       int32
	UpdatedRows   int32
	UnchangedRows int32
	ErrorRows     int32
	ErrorLog      pgtype.Text
}

// FinishImportRun records the final counters and terminal status of a run.
func (q *Queries) FinishImportRun(ctx context.Context, arg FinishImportRunParams) error {
	_, err := q.db.Exec(ctx, finishImportRun,
		arg.ID, arg.Status, arg.TotalRows, arg.NewRows, arg.UpdatedRows,
		arg.UnchangedRows, arg.ErrorRows, arg.ErrorLog)
	return err
}

const getImportRun = `
SELECT ` + importRunColumns + `
FROM import_runs
WHERE id = $1
`

func (q *Queries) GetImportRun(ctx context.Context, id pgtype.UUID) (ImportRun, error) {
	return scanImportRun(q.db.QueryRow(ctx, getImportRun, id))
}

const listImportRuns = `
SELECT ` + importRunColumns + `
FROM import_runs
ORDER BY started_at DESC
LIMIT $1 OFFSET $2
`

func (q *Queries) ListImportRuns(ctx context.Context, limit, offset int32) ([]ImportRun, error) {
	rows, err := q.db.Query(ctx, listImportRuns, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ImportRun
	for rows.Next() {
		r, err := scanImportRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
