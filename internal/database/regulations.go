package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const regulationColumns = `id, ambito_aplicacion, sector_id, sector_texto, clasificacion,
	tema_general, subtema, anio, tipo, numero, fecha_expedicion, expedida_por,
	descripcion, articulo, estado, info_adicional, exigencias, hazard_flags,
	aplicacion_general, content_hash, version, import_run_id, activo,
	created_at, updated_at`

func scanRegulation(row interface{ Scan(...any) error }) (Regulation, error) {
	var r Regulation
	err := row.Scan(
		&r.ID, &r.AmbitoAplicacion, &r.SectorID, &r.SectorTexto, &r.Clasificacion,
		&r.TemaGeneral, &r.Subtema, &r.Anio, &r.Tipo, &r.Numero, &r.FechaExpedicion,
		&r.ExpedidaPor, &r.Descripcion, &r.Articulo, &r.Estado, &r.InfoAdicional,
		&r.Exigencias, &r.HazardFlags, &r.AplicacionGeneral, &r.ContentHash,
		&r.Version, &r.ImportRunID, &r.Activo, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

const getRegulationByKey = `
SELECT ` + regulationColumns + `
FROM regulations
WHERE lower(tipo) = lower($1)
  AND lower(numero) = lower($2)
  AND lower(coalesce(articulo, '')) = lower(coalesce($3, ''))
`

// GetRegulationByKeyParams is the case-insensitive uniqueness key.
type GetRegulationByKeyParams struct {
	Tipo     string
	Numero   string
	Articulo pgtype.Text
}

func (q *Queries) GetRegulationByKey(ctx context.Context, arg GetRegulationByKeyParams) (Regulation, error) {
	return scanRegulation(q.db.QueryRow(ctx, getRegulationByKey, arg.Tipo, arg.Numero, arg.Articulo))
}

const insertRegulation = `
INSERT INTO regulations (
	ambito_aplicacion, sector_id, sector_texto, clasificacion, tema_general,
	subtema, anio, tipo, numero, fecha_expedicion, expedida_por, descripcion,
	articulo, estado, info_adicional, exigencias, hazard_flags,
	aplicacion_general, content_hash, import_run_id
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
)
RETURNING id
`

type InsertRegulationParams struct {
	AmbitoAplicacion  string
	SectorID          pgtype.Int4
	SectorTexto       pgtype.Text
	Clasificacion     string
	TemaGeneral       string
	Subtema           pgtype.Text
	Anio              int32
	Tipo              string
	Numero            string
	FechaExpedicion   pgtype.Date
	ExpedidaPor       pgtype.Text
	Descripcion       pgtype.Text
	Articulo          pgtype.Text
	Estado            string
	InfoAdicional     pgtype.Text
	Exigencias        pgtype.Text
	HazardFlags       []byte
	AplicacionGeneral bool
	ContentHash       string
	ImportRunID       pgtype.UUID
}

func (q *Queries) InsertRegulation(ctx context.Context, arg InsertRegulationParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, insertRegulation,
		arg.AmbitoAplicacion, arg.SectorID, arg.SectorTexto, arg.Clasificacion,
		arg.TemaGeneral, arg.Subtema, arg.Anio, arg.Tipo, arg.Numero,
		arg.FechaExpedicion, arg.ExpedidaPor, arg.Descripcion, arg.Articulo,
		arg.Estado, arg.InfoAdicional, arg.Exigencias, arg.HazardFlags,
		arg.AplicacionGeneral, arg.ContentHash, arg.ImportRunID,
	).Scan(&id)
	return id, err
}

const updateRegulation = `
UPDATE regulations SET
	ambito_aplicacion = $2,
	sector_id = $3,
	sector_texto = $4,
	clasificacion = $5,
	tema_general = $6,
	subtema = $7,
	anio = $8,
	fecha_expedicion = $9,
	expedida_por = $10,
	descripcion = $11,
	estado = $12,
	info_adicional = $13,
	exigencias = $14,
	hazard_flags = $15,
	aplicacion_general = $16,
	content_hash = $17,
	import_run_id = $18,
	version = version + 1,
	updated_at = now()
WHERE id = $1
`

// UpdateRegulationParams rewrites every mutable field of an existing
// regulation and bumps its version. The identity columns (tipo, numero,
// articulo) never change.
type UpdateRegulationParams struct {
	ID                int64
	AmbitoAplicacion  string
	SectorID          pgtype.Int4
	SectorTexto       pgtype.Text
	Clasificacion     string
	TemaGeneral       string
	Subtema           pgtype.Text
	Anio              int32
	FechaExpedicion   pgtype.Date
	ExpedidaPor       pgtype.Text
	Descripcion       pgtype.Text
	Estado            string
	InfoAdicional     pgtype.Text
	Exigencias        pgtype.Text
	HazardFlags       []byte
	AplicacionGeneral bool
	ContentHash       string
	ImportRunID       pgtype.UUID
}

func (q *Queries) UpdateRegulation(ctx context.Context, arg UpdateRegulationParams) error {
	_, err := q.db.Exec(ctx, updateRegulation,
		arg.ID, arg.AmbitoAplicacion, arg.SectorID, arg.SectorTexto,
		arg.Clasificacion, arg.TemaGeneral, arg.Subtema, arg.Anio,
		arg.FechaExpedicion, arg.ExpedidaPor, arg.Descripcion, arg.Estado,
		arg.InfoAdicional, arg.Exigencias, arg.HazardFlags,
		arg.AplicacionGeneral, arg.ContentHash, arg.ImportRunID,
	)
	return err
}

const insertRegulationVersion = `
INSERT INTO regulation_versions (regulation_id, version, snapshot, content_hash, changed_by)
SELECT $1, coalesce(max(version), 0) + 1, $2, $3, $4
FROM regulation_versions
WHERE regulation_id = $1
`

type InsertRegulationVersionParams struct {
	RegulationID int64
	Snapshot     []byte
	ContentHash  string
	ChangedBy    pgtype.Text
}

// InsertRegulationVersion appends a version-history row, numbering it one
// past the current maximum for the regulation.
func (q *Queries) InsertRegulationVersion(ctx context.Context, arg InsertRegulationVersionParams) error {
	_, err := q.db.Exec(ctx, insertRegulationVersion,
		arg.RegulationID, arg.Snapshot, arg.ContentHash, arg.ChangedBy)
	return err
}

const listRegulationVersions = `
SELECT id, regulation_id, version, snapshot, content_hash, changed_by, changed_at
FROM regulation_versions
WHERE regulation_id = $1
ORDER BY version DESC
`

func (q *Queries) ListRegulationVersions(ctx context.Context, regulationID int64) ([]RegulationVersion, error) {
	rows, err := q.db.Query(ctx, listRegulationVersions, regulationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegulationVersion
	for rows.Next() {
		var v RegulationVersion
		if err := rows.Scan(&v.ID, &v.RegulationID, &v.Version, &v.Snapshot,
			&v.ContentHash, &v.ChangedBy, &v.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const listActiveRegulations = `
SELECT ` + regulationColumns + `
FROM regulations
WHERE activo AND estado = 'vigente'
ORDER BY id
`

// ListActiveRegulations returns every active in-force regulation, the
// candidate set for applicability synchronization.
func (q *Queries) ListActiveRegulations(ctx context.Context) ([]Regulation, error) {
	rows, err := q.db.Query(ctx, listActiveRegulations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Regulation
	for rows.Next() {
		r, err := scanRegulation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getRegulation = `
SELECT ` + regulationColumns + `
FROM regulations
WHERE id = $1
`

func (q *Queries) GetRegulation(ctx context.Context, id int64) (Regulation, error) {
	return scanRegulation(q.db.QueryRow(ctx, getRegulation, id))
}
