package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Bernah2o/legalmatrix/internal/database"
)

// DB is the connection surface the service needs: the query methods plus the
// ability to open a transaction. *pgxpool.Pool satisfies it.
type DB interface {
	database.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Options tunes the import pipeline. Zero values fall back to defaults.
type Options struct {
	// HeaderScanRows caps how many leading rows header detection scans.
	HeaderScanRows int
	// MaxPreviewErrors caps the validation-error list a preview returns.
	MaxPreviewErrors int
	// PreviewSampleRows is how many parsed rows a preview includes.
	PreviewSampleRows int
}

func (o Options) withDefaults() Options {
	if o.HeaderScanRows <= 0 {
		o.HeaderScanRows = DefaultHeaderScanRows
	}
	if o.MaxPreviewErrors <= 0 {
		o.MaxPreviewErrors = 50
	}
	if o.PreviewSampleRows <= 0 {
		o.PreviewSampleRows = 5
	}
	return o
}

// Service is the engine facade: imports, synchronization, and listings.
type Service struct {
	pool       DB
	tax        *Taxonomy
	detector   *HeaderDetector
	validator  RowValidator
	extractor  *RegulationExtractor
	classifier *Classifier
	opts       Options
	log        *slog.Logger
}

// NewService wires the pipeline over a connection pool. tax must not be nil;
// log may be nil for the default logger.
func NewService(pool DB, tax *Taxonomy, opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	opts = opts.withDefaults()
	return &Service{
		pool:       pool,
		tax:        tax,
		detector:   NewHeaderDetector(tax, opts.HeaderScanRows),
		extractor:  &RegulationExtractor{},
		classifier: NewClassifier(tax),
		opts:       opts,
		log:        log,
	}
}

// RegulationSummary is the listing projection of a regulation.
type RegulationSummary struct {
	ID            int64       `json:"id"`
	Tipo          string      `json:"tipo"`
	Numero        string      `json:"numero"`
	Articulo      *string     `json:"articulo,omitempty"`
	Anio          int32       `json:"anio"`
	Clasificacion string      `json:"clasificacion"`
	TemaGeneral   string      `json:"temaGeneral"`
	Subtema       *string     `json:"subtema,omitempty"`
	Estado        string      `json:"estado"`
	General       bool        `json:"aplicacionGeneral"`
	Hazards       HazardFlags `json:"hazards"`
	Descripcion   *string     `json:"descripcion,omitempty"`
}

func summarize(r database.Regulation) RegulationSummary {
	return RegulationSummary{
		ID:            r.ID,
		Tipo:          r.Tipo,
		Numero:        r.Numero,
		Articulo:      FromPgText(r.Articulo),
		Anio:          r.Anio,
		Clasificacion: r.Clasificacion,
		TemaGeneral:   r.TemaGeneral,
		Subtema:       FromPgText(r.Subtema),
		Estado:        r.Estado,
		General:       r.AplicacionGeneral,
		Hazards:       unmarshalFlags(r.HazardFlags),
		Descripcion:   FromPgText(r.Descripcion),
	}
}

// RegulationFilter selects and paginates the regulation listing. Nil/empty
// fields are unfiltered.
type RegulationFilter struct {
	Clasificacion string
	Tema          string
	Anio          *int
	SectorID      *int32
	Query         string
	Page          int
	PageSize      int
}

// Page is one page of a listing plus the unpaginated total.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

func normalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}
	return page, size
}

// ListRegulations returns active regulations matching the filter, paginated.
func (s *Service) ListRegulations(ctx context.Context, f RegulationFilter) (*Page[RegulationSummary], error) {
	var wb WhereBuilder
	wb.Add("activo = $%d", true)
	if f.Clasificacion != "" {
		wb.Add("clasificacion ILIKE $%d", f.Clasificacion)
	}
	if f.Tema != "" {
		wb.Add("tema_general ILIKE $%d", "%"+f.Tema+"%")
	}
	if f.Anio != nil {
		wb.Add("anio = $%d", *f.Anio)
	}
	if f.SectorID != nil {
		wb.Add("sector_id = $%d", *f.SectorID)
	}
	if f.Query != "" {
		wb.Add("(descripcion ILIKE $%[1]d OR numero ILIKE $%[1]d OR tipo ILIKE $%[1]d)", "%"+f.Query+"%")
	}

	page, size := normalizePaging(f.Page, f.PageSize)

	var total int64
	countSQL := "SELECT count(*) FROM regulations" + wb.Clause()
	if err := s.pool.QueryRow(ctx, countSQL, wb.Args()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count regulations: %w", err)
	}

	listSQL := fmt.Sprintf(
		"SELECT %s FROM regulations%s ORDER BY anio DESC, tipo, numero LIMIT $%d OFFSET $%d",
		regulationListColumns, wb.Clause(), wb.NextIndex(), wb.NextIndex()+1)
	rows, err := s.pool.Query(ctx, listSQL, wb.Args(size, (page-1)*size)...)
	if err != nil {
		return nil, fmt.Errorf("list regulations: %w", err)
	}
	defer rows.Close()

	result := &Page[RegulationSummary]{Items: []RegulationSummary{}, Total: total, Page: page, PageSize: size}
	for rows.Next() {
		var r database.Regulation
		if err := rows.Scan(
			&r.ID, &r.Tipo, &r.Numero, &r.Articulo, &r.Anio, &r.Clasificacion,
			&r.TemaGeneral, &r.Subtema, &r.Estado, &r.AplicacionGeneral,
			&r.HazardFlags, &r.Descripcion,
		); err != nil {
			return nil, err
		}
		result.Items = append(result.Items, summarize(r))
	}
	return result, rows.Err()
}

const regulationListColumns = `id, tipo, numero, articulo, anio, clasificacion,
	tema_general, subtema, estado, aplicacion_general, hazard_flags, descripcion`

// ImportRunSummary is the listing projection of an import run.
type ImportRunSummary struct {
	ID         string     `json:"id"`
	Filename   string     `json:"filename"`
	Status     string     `json:"status"`
	Total      int32      `json:"total"`
	New        int32      `json:"new"`
	Updated    int32      `json:"updated"`
	Unchanged  int32      `json:"unchanged"`
	Errors     int32      `json:"errors"`
	ErrorLog   *string    `json:"errorLog,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

func summarizeRun(r database.ImportRun) ImportRunSummary {
	out := ImportRunSummary{
		ID:        uuidString(r.ID),
		Filename:  r.Filename,
		Status:    r.Status,
		Total:     r.TotalRows,
		New:       r.NewRows,
		Updated:   r.UpdatedRows,
		Unchanged: r.UnchangedRows,
		Errors:    r.ErrorRows,
		ErrorLog:  FromPgText(r.ErrorLog),
		StartedAt: r.StartedAt.Time,
	}
	if r.FinishedAt.Valid {
		t := r.FinishedAt.Time
		out.FinishedAt = &t
	}
	return out
}

// ListImportRuns returns import runs, newest first.
func (s *Service) ListImportRuns(ctx context.Context, page, pageSize int) ([]ImportRunSummary, error) {
	page, size := normalizePaging(page, pageSize)
	runs, err := database.New(s.pool).ListImportRuns(ctx, int32(size), int32((page-1)*size))
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	out := make([]ImportRunSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, summarizeRun(r))
	}
	return out, nil
}

// ComplianceSummary is the listing projection of a compliance record.
type ComplianceSummary struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organizationId"`
	RegulationID   int64      `json:"regulationId"`
	Status         string     `json:"status"`
	Applicability  string     `json:"applicability"`
	Evidencia      *string    `json:"evidencia,omitempty"`
	PlanAccion     *string    `json:"planAccion,omitempty"`
	Responsable    *string    `json:"responsable,omitempty"`
	EvaluatedAt    *time.Time `json:"evaluatedAt,omitempty"`
}

func summarizeCompliance(c database.ComplianceRecord) ComplianceSummary {
	out := ComplianceSummary{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		RegulationID:   c.RegulationID,
		Status:         c.Status,
		Applicability:  c.Applicability,
		Evidencia:      FromPgText(c.Evidencia),
		PlanAccion:     FromPgText(c.PlanAccion),
		Responsable:    FromPgText(c.Responsable),
	}
	if c.EvaluatedAt.Valid {
		t := c.EvaluatedAt.Time
		out.EvaluatedAt = &t
	}
	return out
}

// ComplianceFilter selects an organization's compliance listing.
type ComplianceFilter struct {
	OrganizationID int64
	Status         string
	Applicability  string
	Page           int
	PageSize       int
}

// ListCompliance returns an organization's compliance records matching the
// filter, paginated.
func (s *Service) ListCompliance(ctx context.Context, f ComplianceFilter) (*Page[ComplianceSummary], error) {
	var wb WhereBuilder
	wb.Add("organization_id = $%d", f.OrganizationID)
	if f.Status != "" {
		wb.Add("status = $%d", f.Status)
	}
	if f.Applicability != "" {
		wb.Add("applicability = $%d", f.Applicability)
	}

	page, size := normalizePaging(f.Page, f.PageSize)

	var total int64
	countSQL := "SELECT count(*) FROM compliance_records" + wb.Clause()
	if err := s.pool.QueryRow(ctx, countSQL, wb.Args()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count compliance: %w", err)
	}

	listSQL := fmt.Sprintf(
		`SELECT id, organization_id, regulation_id, status, applicability,
			evidencia, plan_accion, responsable, fecha_compromiso, evaluated_at,
			created_at, updated_at
		FROM compliance_records%s ORDER BY regulation_id LIMIT $%d OFFSET $%d`,
		wb.Clause(), wb.NextIndex(), wb.NextIndex()+1)
	rows, err := s.pool.Query(ctx, listSQL, wb.Args(size, (page-1)*size)...)
	if err != nil {
		return nil, fmt.Errorf("list compliance: %w", err)
	}
	defer rows.Close()

	result := &Page[ComplianceSummary]{Items: []ComplianceSummary{}, Total: total, Page: page, PageSize: size}
	for rows.Next() {
		var c database.ComplianceRecord
		if err := rows.Scan(
			&c.ID, &c.OrganizationID, &c.RegulationID, &c.Status, &c.Applicability,
			&c.Evidencia, &c.PlanAccion, &c.Responsable, &c.FechaCompromiso,
			&c.EvaluatedAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result.Items = append(result.Items, summarizeCompliance(c))
	}
	return result, rows.Err()
}

// VersionEntry is one version-history row for either entity family.
type VersionEntry struct {
	ID        int64           `json:"id"`
	Version   int32           `json:"version,omitempty"`
	Snapshot  json.RawMessage `json:"snapshot"`
	ChangedBy *string         `json:"changedBy,omitempty"`
	ChangedAt time.Time       `json:"changedAt"`
}

// RegulationVersions lists a regulation's version history, newest first.
func (s *Service) RegulationVersions(ctx context.Context, regulationID int64) ([]VersionEntry, error) {
	versions, err := database.New(s.pool).ListRegulationVersions(ctx, regulationID)
	if err != nil {
		return nil, fmt.Errorf("regulation versions: %w", err)
	}
	out := make([]VersionEntry, 0, len(versions))
	for _, v := range versions {
		out = append(out, VersionEntry{
			ID:        v.ID,
			Version:   v.Version,
			Snapshot:  json.RawMessage(v.Snapshot),
			ChangedBy: FromPgText(v.ChangedBy),
			ChangedAt: v.ChangedAt.Time,
		})
	}
	return out, nil
}

// ComplianceVersions lists a compliance record's version history, newest
// first.
func (s *Service) ComplianceVersions(ctx context.Context, complianceID int64) ([]VersionEntry, error) {
	versions, err := database.New(s.pool).ListComplianceVersions(ctx, complianceID)
	if err != nil {
		return nil, fmt.Errorf("compliance versions: %w", err)
	}
	out := make([]VersionEntry, 0, len(versions))
	for _, v := range versions {
		out = append(out, VersionEntry{
			ID:        v.ID,
			Snapshot:  json.RawMessage(v.Snapshot),
			ChangedBy: FromPgText(v.ChangedBy),
			ChangedAt: v.ChangedAt.Time,
		})
	}
	return out, nil
}

// ApplicableRegulations returns the regulations currently applicable to an
// organization, computed live (not from compliance records).
func (s *Service) ApplicableRegulations(ctx context.Context, orgID int64) ([]RegulationSummary, error) {
	q := database.New(s.pool)

	org, err := q.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("organization %d: %w", orgID, err)
	}
	regs, err := q.ListActiveRegulations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regulations: %w", err)
	}
	sectors, err := q.ListSectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	allSectors := make(map[int32]bool, len(sectors))
	for _, sec := range sectors {
		allSectors[sec.ID] = sec.EsTodos
	}

	orgView := OrganizationView{
		SectorID:        FromPgInt4(org.SectorID),
		Characteristics: unmarshalFlags(org.Caracteristicas),
	}

	out := []RegulationSummary{}
	for _, r := range regs {
		view := RegulationView{
			ID:       r.ID,
			General:  r.AplicacionGeneral,
			SectorID: FromPgInt4(r.SectorID),
			Hazards:  unmarshalFlags(r.HazardFlags),
		}
		if view.SectorID != nil {
			view.SectorAll = allSectors[*view.SectorID]
		}
		if AppliesTo(view, orgView) {
			out = append(out, summarize(r))
		}
	}
	return out, nil
}

// OrganizationStats summarizes an organization's compliance position over
// its active records.
type OrganizationStats struct {
	OrganizationID int64            `json:"organizationId"`
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"byStatus"`
	ComplianceRate float64          `json:"complianceRate"`
}

// GetOrganizationStats computes per-status counts and the compliance rate
// (met over evaluable, excluding not-applicable records).
func (s *Service) GetOrganizationStats(ctx context.Context, orgID int64) (*OrganizationStats, error) {
	counts, err := database.New(s.pool).CountComplianceByStatus(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("organization stats: %w", err)
	}

	stats := &OrganizationStats{OrganizationID: orgID, ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	evaluable := stats.Total - counts[string(ComplianceNotApplicable)]
	if evaluable > 0 {
		stats.ComplianceRate = float64(counts[string(ComplianceMet)]) / float64(evaluable) * 100
	}
	return stats, nil
}

// UpdateComplianceInput carries an evaluation update for one compliance
// record.
type UpdateComplianceInput struct {
	Status          ComplianceStatus
	Evidencia       *string
	PlanAccion      *string
	Responsable     *string
	FechaCompromiso *time.Time
	ChangedBy       *string
}

func validComplianceStatus(s ComplianceStatus) bool {
	switch s {
	case CompliancePending, ComplianceMet, ComplianceNotMet, ComplianceInProgress, ComplianceNotApplicable:
		return true
	}
	return false
}

// UpdateCompliance records an evaluation on a compliance record, writing the
// prior state to the version history first.
func (s *Service) UpdateCompliance(ctx context.Context, id int64, in UpdateComplianceInput) (*ComplianceSummary, error) {
	if !validComplianceStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", ErrInvalidInput, in.Status)
	}

	q := database.New(s.pool)
	current, err := q.GetComplianceRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("compliance %d: %w", id, err)
	}

	snapshot, err := json.Marshal(summarizeCompliance(current))
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if err := q.InsertComplianceVersion(ctx, database.InsertComplianceVersionParams{
		ComplianceID: id,
		Snapshot:     snapshot,
		ChangedBy:    ToPgText(in.ChangedBy),
	}); err != nil {
		return nil, fmt.Errorf("version history: %w", err)
	}

	if err := q.UpdateComplianceEvaluation(ctx, database.UpdateComplianceEvaluationParams{
		ID:              id,
		Status:          string(in.Status),
		Evidencia:       ToPgText(in.Evidencia),
		PlanAccion:      ToPgText(in.PlanAccion),
		Responsable:     ToPgText(in.Responsable),
		FechaCompromiso: ToPgDate(in.FechaCompromiso),
	}); err != nil {
		return nil, fmt.Errorf("update compliance %d: %w", id, err)
	}

	updated, err := q.GetComplianceRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload compliance %d: %w", id, err)
	}
	out := summarizeCompliance(updated)
	return &out, nil
}

// SectorSummary is the listing projection of an economic sector.
type SectorSummary struct {
	ID      int32   `json:"id"`
	Codigo  *string `json:"codigo,omitempty"`
	Nombre  string  `json:"nombre"`
	EsTodos bool    `json:"esTodos"`
}

// ListSectors returns the sector catalog, alphabetically.
func (s *Service) ListSectors(ctx context.Context) ([]SectorSummary, error) {
	sectors, err := database.New(s.pool).ListSectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	out := make([]SectorSummary, 0, len(sectors))
	for _, sec := range sectors {
		out = append(out, SectorSummary{
			ID:      sec.ID,
			Codigo:  FromPgText(sec.Codigo),
			Nombre:  sec.Nombre,
			EsTodos: sec.EsTodos,
		})
	}
	return out, nil
}

// GetImportRun returns one import run by id.
func (s *Service) GetImportRun(ctx context.Context, id string) (*ImportRunSummary, error) {
	pgID, err := parseUUID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: run id %q", ErrInvalidInput, id)
	}
	run, err := database.New(s.pool).GetImportRun(ctx, pgID)
	if err != nil {
		return nil, fmt.Errorf("import run %s: %w", id, err)
	}
	out := summarizeRun(run)
	return &out, nil
}
