package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getSectorByName = `
SELECT id, codigo, nombre, es_todos, created_at
FROM economic_sectors
WHERE lower(nombre) = lower($1)
`

func (q *Queries) GetSectorByName(ctx context.Context, nombre string) (EconomicSector, error) {
	var s EconomicSector
	err := q.db.QueryRow(ctx, getSectorByName, nombre).
		Scan(&s.ID, &s.Codigo, &s.Nombre, &s.EsTodos, &s.CreatedAt)
	return s, err
}

const insertSector = `
INSERT INTO economic_sectors (codigo, nombre, es_todos)
VALUES ($1, $2, $3)
RETURNING id, codigo, nombre, es_todos, created_at
`

type InsertSectorParams struct {
	Codigo  pgtype.Text
	Nombre  string
	EsTodos bool
}

func (q *Queries) InsertSector(ctx context.Context, arg InsertSectorParams) (EconomicSector, error) {
	var s EconomicSector
	err := q.db.QueryRow(ctx, insertSector, arg.Codigo, arg.Nombre, arg.EsTodos).
		Scan(&s.ID, &s.Codigo, &s.Nombre, &s.EsTodos, &s.CreatedAt)
	return s, err
}

const listSectors = `
SELECT id, codigo, nombre, es_todos, created_at
FROM economic_sectors
ORDER BY nombre
`

func (q *Queries) ListSectors(ctx context.Context) ([]EconomicSector, error) {
	rows, err := q.db.Query(ctx, listSectors)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EconomicSector
	for rows.Next() {
		var s EconomicSector
		if err := rows.Scan(&s.ID, &s.Codigo, &s.Nombre, &s.EsTodos, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
