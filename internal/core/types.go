package core

import "time"

// Scope is the territorial scope of a regulation.
type Scope string

const (
	ScopeNational      Scope = "nacional"
	ScopeDepartmental  Scope = "departamental"
	ScopeMunicipal     Scope = "municipal"
	ScopeInternational Scope = "internacional"
)

// NormStatus is the legal status of a regulation.
type NormStatus string

const (
	NormInForce  NormStatus = "vigente"
	NormRepealed NormStatus = "derogada"
	NormAmended  NormStatus = "modificada"
)

// ImportStatus is the terminal (or in-progress) state of an import run.
type ImportStatus string

const (
	ImportInProgress ImportStatus = "en_proceso"
	ImportCompleted  ImportStatus = "completada"
	ImportPartial    ImportStatus = "parcial"
	ImportFailed     ImportStatus = "fallida"
)

// ComplianceStatus is an organization's evaluation state against one regulation.
type ComplianceStatus string

const (
	CompliancePending       ComplianceStatus = "pendiente"
	ComplianceMet           ComplianceStatus = "cumple"
	ComplianceNotMet        ComplianceStatus = "no_cumple"
	ComplianceInProgress    ComplianceStatus = "en_proceso"
	ComplianceNotApplicable ComplianceStatus = "no_aplica"
)

// ApplicabilityState is the applies/doesn't-apply toggle on a compliance
// record. The third state (not yet relevant) is the absence of a record.
type ApplicabilityState string

const (
	ApplicabilityActive   ApplicabilityState = "active"
	ApplicabilityInactive ApplicabilityState = "inactive"
)

// HazardFlags maps hazard-category keys (Taxonomy.Hazards) to whether the
// regulation concerns that category, or whether an organization has that
// characteristic.
type HazardFlags map[string]bool

// Clone returns an independent copy of the flags.
func (h HazardFlags) Clone() HazardFlags {
	c := make(HazardFlags, len(h))
	for k, v := range h {
		c[k] = v
	}
	return c
}

// Record is the canonical regulation record extracted from one spreadsheet
// row. Field order is fixed and JSON tags match the canonical field names;
// the content hash depends on both, so fields must not be reordered.
type Record struct {
	Scope          Scope      `json:"ambito_aplicacion"`
	SectorText     *string    `json:"sector_economico_texto"`
	Classification string     `json:"clasificacion_norma"`
	Theme          string     `json:"tema_general"`
	Subtheme       *string    `json:"subtema_riesgo_especifico"`
	Year           int        `json:"anio"`
	NormType       string     `json:"tipo_norma"`
	NormNumber     string     `json:"numero_norma"`
	IssueDate      *time.Time `json:"fecha_expedicion"`
	IssuedBy       *string    `json:"expedida_por"`
	Description    *string    `json:"descripcion_norma"`
	Article        *string    `json:"articulo"`
	Status         NormStatus `json:"estado"`
	ExtraInfo      *string    `json:"info_adicional"`
	Exigency       *string    `json:"descripcion_articulo_exigencias"`
}

// RowError is a structured per-row validation error. Row is the 1-indexed
// line number in the source file.
type RowError struct {
	Row     int    `json:"fila"`
	Message string `json:"error"`
}

// ColumnMapping is one entry of the column-mapping diagnostic: the original
// header label and the canonical field it resolved to ("" if unmapped).
type ColumnMapping struct {
	Original string `json:"original"`
	Mapped   string `json:"mapped,omitempty"`
}

// RowOutcome classifies what a committed row did to the store.
type RowOutcome string

const (
	OutcomeNew       RowOutcome = "new"
	OutcomeUpdated   RowOutcome = "updated"
	OutcomeUnchanged RowOutcome = "unchanged"
)

// ImportCounters accumulates per-run row statistics.
type ImportCounters struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Errors    int `json:"errors"`
}

// PreviewResult is the outcome of a dry-run import: counts, capped validation
// errors, a small sample of parsed rows, and the column-mapping diagnostic.
// Nothing is persisted.
type PreviewResult struct {
	TotalRows       int                 `json:"totalRows"`
	NewRows         int                 `json:"newRows"`
	ExistingRows    int                 `json:"existingRows"`
	Errors          []RowError          `json:"errors"`
	DetectedColumns []string            `json:"detectedColumns"`
	ColumnMappings  []ColumnMapping     `json:"columnMappings"`
	SampleRows      []map[string]string `json:"sampleRows"`
	TwoRowHeader    bool                `json:"twoRowHeader"`
}

// ImportResult is the outcome of a committed import run.
type ImportResult struct {
	RunID    string         `json:"runId"`
	Filename string         `json:"filename"`
	Status   ImportStatus   `json:"status"`
	Counters ImportCounters `json:"counters"`
	ErrorLog []string       `json:"errorLog,omitempty"`
	Duration time.Duration  `json:"-"`
}

// SyncResult reports what a compliance synchronization did for one
// organization.
type SyncResult struct {
	ApplicableTotal int `json:"applicableTotal"`
	Existing        int `json:"existing"`
	Created         int `json:"created"`
	Reactivated     int `json:"reactivated"`
	Deactivated     int `json:"deactivated"`
}

// RegulationView is the applicability-relevant projection of a regulation,
// used by the synchronizer's pure predicate.
type RegulationView struct {
	ID        int64
	General   bool
	SectorID  *int32
	SectorAll bool
	Hazards   HazardFlags
}

// OrganizationView is the applicability-relevant projection of an
// organization.
type OrganizationView struct {
	SectorID        *int32
	Characteristics HazardFlags
}
