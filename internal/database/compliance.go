package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getOrganization = `
SELECT id, nombre, sector_id, caracteristicas, activo, created_at
FROM organizations
WHERE id = $1
`

func (q *Queries) GetOrganization(ctx context.Context, id int64) (Organization, error) {
	var o Organization
	err := q.db.QueryRow(ctx, getOrganization, id).
		Scan(&o.ID, &o.Nombre, &o.SectorID, &o.Caracteristicas, &o.Activo, &o.CreatedAt)
	return o, err
}

const complianceColumns = `id, organization_id, regulation_id, status, applicability,
	evidencia, plan_accion, responsable, fecha_compromiso, evaluated_at,
	created_at, updated_at`

func scanCompliance(row interface{ Scan(...any) error }) (ComplianceRecord, error) {
	var c ComplianceRecord
	err := row.Scan(
		&c.ID, &c.OrganizationID, &c.RegulationID, &c.Status, &c.Applicability,
		&c.Evidencia, &c.PlanAccion, &c.Responsable, &c.FechaCompromiso,
		&c.EvaluatedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

const getComplianceRecord = `
SELECT ` + complianceColumns + `
FROM compliance_records
WHERE id = $1
`

func (q *Queries) GetComplianceRecord(ctx context.Context, id int64) (ComplianceRecord, error) {
	return scanCompliance(q.db.QueryRow(ctx, getComplianceRecord, id))
}

const listComplianceByOrganization = `
SELECT ` + complianceColumns + `
FROM compliance_records
WHERE organization_id = $1
ORDER BY regulation_id
`

func (q *Queries) ListComplianceByOrganization(ctx context.Context, organizationID int64) ([]ComplianceRecord, error) {
	rows, err := q.db.Query(ctx, listComplianceByOrganization, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ComplianceRecord
	for rows.Next() {
		c, err := scanCompliance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const insertComplianceRecord = `
INSERT INTO compliance_records (organization_id, regulation_id, status, applicability)
VALUES ($1, $2, $3, $4)
`

type InsertComplianceRecordParams struct {
	OrganizationID int64
	RegulationID   int64
	Status         string
	Applicability  string
}

func (q *Queries) InsertComplianceRecord(ctx context.Context, arg InsertComplianceRecordParams) error {
	_, err := q.db.Exec(ctx, insertComplianceRecord,
		arg.OrganizationID, arg.RegulationID, arg.Status, arg.Applicability)
	return err
}

const updateComplianceApplicability = `
UPDATE compliance_records SET applicability = $2, updated_at = now()
WHERE id = $1
`

func (q *Queries) UpdateComplianceApplicability(ctx context.Context, id int64, applicability string) error {
	_, err := q.db.Exec(ctx, updateComplianceApplicability, id, applicability)
	return err
}

const updateComplianceEvaluation = `
UPDATE compliance_records SET
	status = $2,
	evidencia = $3,
	plan_accion = $4,
	responsable = $5,
	fecha_compromiso = $6,
	evaluated_at = now(),
	updated_at = now()
WHERE id = $1
`

type UpdateComplianceEvaluationParams struct {
	ID              int64
	Status          string
	Evidencia       pgtype.Text
	PlanAccion      pgtype.Text
	Responsable     pgtype.Text
	FechaCompromiso pgtype.Date
}

func (q *Queries) UpdateComplianceEvaluation(ctx context.Context, arg UpdateComplianceEvaluationParams) error {
	_, err := q.db.Exec(ctx, updateComplianceEvaluation,
		arg.ID, arg.Status, arg.Evidencia, arg.PlanAccion,
		arg.Responsable, arg.FechaCompromiso)
	return err
}

const insertComplianceVersion = `
INSERT INTO compliance_versions (compliance_id, snapshot, changed_by)
VALUES ($1, $2, $3)
`

type InsertComplianceVersionParams struct {
	ComplianceID int64
	Snapshot     []byte
	ChangedBy    pgtype.Text
}

func (q *Queries) InsertComplianceVersion(ctx context.Context, arg InsertComplianceVersionParams) error {
	_, err := q.db.Exec(ctx, insertComplianceVersion,
		arg.ComplianceID, arg.Snapshot, arg.ChangedBy)
	return err
}

const listComplianceVersions = `
SELECT id, compliance_id, snapshot, changed_by, changed_at
FROM compliance_versions
WHERE compliance_id = $1
ORDER BY changed_at DESC, id DESC
`

func (q *Queries) ListComplianceVersions(ctx context.Context, complianceID int64) ([]ComplianceVersion, error) {
	rows, err := q.db.Query(ctx, listComplianceVersions, complianceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ComplianceVersion
	for rows.Next() {
		var v ComplianceVersion
		if err := rows.Scan(&v.ID, &v.ComplianceID, &v.Snapshot, &v.ChangedBy, &v.ChangedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const countComplianceByStatus = `
SELECT status, count(*)
FROM compliance_records
WHERE organization_id = $1 AND applicability = 'active'
GROUP BY status
`

// CountComplianceByStatus returns per-status counts over an organization's
// active compliance records.
func (q *Queries) CountComplianceByStatus(ctx context.Context, organizationID int64) (map[string]int64, error) {
	rows, err := q.db.Query(ctx, countComplianceByStatus, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
