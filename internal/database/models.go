package database

import "github.com/jackc/pgx/v5/pgtype"

// EconomicSector is one row of economic_sectors.
type EconomicSector struct {
	ID        int32
	Codigo    pgtype.Text
	Nombre    string
	EsTodos   bool
	CreatedAt pgtype.Timestamptz
}

// Regulation is one row of regulations.
type Regulation struct {
	ID                int64
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
	Version           int32
	ImportRunID       pgtype.UUID
	Activo            bool
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

// RegulationVersion is one row of regulation_versions.
type RegulationVersion struct {
	ID           int64
	RegulationID int64
	Version      int32
	Snapshot     []byte
	ContentHash  string
	ChangedBy    pgtype.Text
	ChangedAt    pgtype.Timestamptz
}

// ImportRun is one row of import_runs.
type ImportRun struct {
	ID            pgtype.UUID
	Filename      string
	Status        string
	TotalRows     int32
	NewRows       int32
	UpdatedRows   int32
	UnchangedRows int32
	ErrorRows     int32
	ErrorLog      pgtype.Text
	CreatedBy     pgtype.Text
	StartedAt     pgtype.Timestamptz
	FinishedAt    pgtype.Timestamptz
}

// Organization is one row of organizations.
type Organization struct {
	ID              int64
	Nombre          string
	SectorID        pgtype.Int4
	Caracteristicas []byte
	Activo          bool
	CreatedAt       pgtype.Timestamptz
}

// ComplianceRecord is one row of compliance_records.
type ComplianceRecord struct {
	ID              int64
	OrganizationID  int64
	RegulationID    int64
	Status          string
	Applicability   string
	Evidencia       pgtype.Text
	PlanAccion      pgtype.Text
	Responsable     pgtype.Text
	FechaCompromiso pgtype.Date
	EvaluatedAt     pgtype.Timestamptz
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

// ComplianceVersion is one row of compliance_versions.
type ComplianceVersion struct {
	ID           int64
	ComplianceID int64
	Snapshot     []byte
	ChangedBy    pgtype.Text
	ChangedAt    pgtype.Timestamptz
}
