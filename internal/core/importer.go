package core

// importer.go is the import orchestrator: file parsing, the dry-run preview,
// and the committed run with its per-row savepoint handling.

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/Bernah2o/legalmatrix/internal/database"
)

// uniqueViolation is the Postgres error code for a unique-constraint hit.
const uniqueViolation = "23505"

// parsedRow is one data row projected onto canonical fields. Line is the
// 1-indexed position in the source file.
type parsedRow struct {
	Line   int
	Values map[string]string
}

// parsedFile is the outcome of header detection and column normalization
// over one uploaded file.
type parsedFile struct {
	Headers  []string
	Mappings []ColumnMapping
	TwoRow   bool
	Rows     []parsedRow
}

// parseFile decodes, parses, and normalizes an uploaded file into canonical
// rows. Non-UTF-8 input is assumed to be a Windows-1252 export and
// transcoded; the CSV delimiter is sniffed because regional Excel saves
// with semicolons.
func (s *Service) parseFile(data []byte, filename string) (*parsedFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty file", filename)
	}
	data = decodeToUTF8(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var grid [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: parse: %w", filename, err)
		}
		grid = append(grid, row)
	}

	header, err := s.detector.Detect(grid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	idx, mappings := NormalizeColumns(s.tax, header.Headers)
	if len(idx) == 0 {
		return nil, fmt.Errorf("%s: no recognizable columns", filename)
	}

	// Re-project the column index from retained-header positions back onto
	// source column positions.
	srcIdx := make(ColumnIndex, len(idx))
	for field, pos := range idx {
		srcIdx[field] = header.Columns[pos]
	}

	pf := &parsedFile{Headers: header.Headers, Mappings: mappings, TwoRow: header.TwoRow}
	for i := header.DataStart; i < len(grid); i++ {
		if IsEmptyRow(grid[i]) {
			continue
		}
		pf.Rows = append(pf.Rows, parsedRow{Line: i + 1, Values: srcIdx.RowValues(grid[i])})
	}
	return pf, nil
}

// decodeToUTF8 passes valid UTF-8 through (minus any BOM) and transcodes
// everything else from Windows-1252.
func decodeToUTF8(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return data
	}
	return out
}

// sniffDelimiter picks ';' over ',' when the first line favors it.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// PreviewImport runs the full pipeline without persisting anything: counts
// of new vs existing rows, a capped validation-error list, a sample of
// parsed rows, and the column-mapping diagnostic.
func (s *Service) PreviewImport(ctx context.Context, data []byte, filename string) (*PreviewResult, error) {
	pf, err := s.parseFile(data, filename)
	if err != nil {
		return nil, err
	}

	q := database.New(s.pool)
	res := &PreviewResult{
		TotalRows:       len(pf.Rows),
		DetectedColumns: pf.Headers,
		ColumnMappings:  pf.Mappings,
		TwoRowHeader:    pf.TwoRow,
		Errors:          []RowError{},
		SampleRows:      []map[string]string{},
	}

	for _, row := range pf.Rows {
		if verr := s.validator.Validate(row.Line, row.Values); verr != nil {
			if len(res.Errors) < s.opts.MaxPreviewErrors {
				res.Errors = append(res.Errors, *verr)
			}
			continue
		}

		// Samples show only rows that passed validation.
		if len(res.SampleRows) < s.opts.PreviewSampleRows {
			res.SampleRows = append(res.SampleRows, row.Values)
		}

		rec := s.extractor.Extract(row.Values)
		_, err := q.GetRegulationByKey(ctx, keyParams(&rec))
		switch {
		case err == nil:
			res.ExistingRows++
		case errors.Is(err, pgx.ErrNoRows):
			res.NewRows++
		default:
			return nil, fmt.Errorf("preview lookup: %w", err)
		}
	}
	return res, nil
}

// CommitImport creates an ImportRun, processes every row inside one
// transaction (savepoint per insert, continuing past per-row failures),
// and finishes the run with a terminal status. overwrite controls whether
// changed rows replace the stored regulation or are discarded.
func (s *Service) CommitImport(ctx context.Context, data []byte, filename string, createdBy *string, overwrite bool) (*ImportResult, error) {
	start := time.Now()
	q := database.New(s.pool)

	run, err := q.CreateImportRun(ctx, database.CreateImportRunParams{
		Filename:  filename,
		CreatedBy: ToPgText(createdBy),
	})
	if err != nil {
		return nil, fmt.Errorf("create import run: %w", err)
	}

	pf, err := s.parseFile(data, filename)
	if err != nil {
		s.finishRun(ctx, q, run.ID, ImportFailed, ImportCounters{}, []string{err.Error()})
		return nil, err
	}

	counters := ImportCounters{Total: len(pf.Rows)}
	var errorLog []string

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.finishRun(ctx, q, run.ID, ImportFailed, counters, []string{err.Error()})
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := q.WithTx(tx)
	resolver := NewSectorResolver(s.tax)

	for i, row := range pf.Rows {
		if verr := s.validator.Validate(row.Line, row.Values); verr != nil {
			counters.Errors++
			errorLog = append(errorLog, fmt.Sprintf("fila %d: %s", verr.Row, verr.Message))
			continue
		}

		outcome, err := s.processRow(ctx, tx, qtx, resolver, run.ID, i, row, createdBy, overwrite)
		if err != nil {
			counters.Errors++
			errorLog = append(errorLog, fmt.Sprintf("fila %d: %v", row.Line, err))
			continue
		}
		switch outcome {
		case OutcomeNew:
			counters.New++
		case OutcomeUpdated:
			counters.Updated++
		case OutcomeUnchanged:
			counters.Unchanged++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		s.finishRun(ctx, q, run.ID, ImportFailed, counters, append(errorLog, err.Error()))
		return nil, fmt.Errorf("commit import: %w", err)
	}

	status := terminalStatus(counters)
	s.finishRun(ctx, q, run.ID, status, counters, errorLog)

	s.log.Info("import committed",
		"run_id", uuidString(run.ID),
		"filename", filename,
		"status", string(status),
		"total", counters.Total,
		"new", counters.New,
		"updated", counters.Updated,
		"unchanged", counters.Unchanged,
		"errors", counters.Errors,
	)

	return &ImportResult{
		RunID:    uuidString(run.ID),
		Filename: filename,
		Status:   status,
		Counters: counters,
		ErrorLog: errorLog,
		Duration: time.Since(start),
	}, nil
}

// processRow runs extraction, classification, and change detection for one
// validated row. Inserts go through a savepoint so a duplicate key from the
// same batch rolls back only this row.
func (s *Service) processRow(ctx context.Context, tx pgx.Tx, qtx *database.Queries, resolver *SectorResolver, runID pgtype.UUID, n int, row parsedRow, changedBy *string, overwrite bool) (RowOutcome, error) {
	rec := s.extractor.Extract(row.Values)
	flags, general := s.classifier.Classify(&rec)
	hash := ContentHash(&rec)

	sectorID, err := resolver.Resolve(ctx, qtx, rec.SectorText)
	if err != nil {
		return "", err
	}

	existing, err := qtx.GetRegulationByKey(ctx, keyParams(&rec))
	if errors.Is(err, pgx.ErrNoRows) {
		return s.conflictSafeInsert(ctx, tx, qtx, n, insertParams(&rec, sectorID, flags, general, hash, runID))
	}
	if err != nil {
		return "", fmt.Errorf("lookup: %w", err)
	}

	if existing.ContentHash == hash || !overwrite {
		return OutcomeUnchanged, nil
	}

	// Snapshot the prior version before overwriting.
	prior := recordFromRow(existing)
	snapshot, err := json.Marshal(struct {
		Record
		HazardFlags HazardFlags `json:"hazard_flags"`
		General     bool        `json:"aplicacion_general"`
	}{prior, unmarshalFlags(existing.HazardFlags), existing.AplicacionGeneral})
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	if err := qtx.InsertRegulationVersion(ctx, database.InsertRegulationVersionParams{
		RegulationID: existing.ID,
		Snapshot:     snapshot,
		ContentHash:  existing.ContentHash,
		ChangedBy:    ToPgText(changedBy),
	}); err != nil {
		return "", fmt.Errorf("version history: %w", err)
	}
	if err := qtx.UpdateRegulation(ctx, updateParams(existing.ID, &rec, sectorID, flags, general, hash, runID)); err != nil {
		return "", fmt.Errorf("update: %w", err)
	}
	return OutcomeUpdated, nil
}

// conflictSafeInsert inserts a new regulation under a savepoint. A unique
// violation (a duplicate identity earlier in the same batch) rolls back only
// this row's insert and reclassifies it as unchanged.
func (s *Service) conflictSafeInsert(ctx context.Context, tx pgx.Tx, qtx *database.Queries, n int, params database.InsertRegulationParams) (RowOutcome, error) {
	sp := fmt.Sprintf("sp_%d", n)
	if _, err := tx.Exec(ctx, "SAVEPOINT "+sp); err != nil {
		return "", fmt.Errorf("savepoint: %w", err)
	}

	_, err := qtx.InsertRegulation(ctx, params)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			_, _ = tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp)
			return OutcomeUnchanged, nil
		}
		return "", fmt.Errorf("insert: %w", err)
	}

	_, _ = tx.Exec(ctx, "RELEASE SAVEPOINT "+sp)
	return OutcomeNew, nil
}

// finishRun records the terminal state of a run. Failures here are logged,
// not returned; the import outcome itself is already decided.
func (s *Service) finishRun(ctx context.Context, q *database.Queries, id pgtype.UUID, status ImportStatus, counters ImportCounters, errorLog []string) {
	err := q.FinishImportRun(ctx, database.FinishImportRunParams{
		ID:            id,
		Status:        string(status),
		TotalRows:     int32(counters.Total),
		NewRows:       int32(counters.New),
		UpdatedRows:   int32(counters.Updated),
		UnchangedRows: int32(counters.Unchanged),
		ErrorRows:     int32(counters.Errors),
		ErrorLog:      joinErrorLog(errorLog),
	})
	if err != nil {
		s.log.Error("finish import run", "run_id", uuidString(id), "error", err)
	}
}

// terminalStatus maps counters to the run's terminal state: completed with
// zero errors, failed when no row was written, partial otherwise. Unchanged
// rows are not writes, so a run that only skipped and errored is a failure.
func terminalStatus(c ImportCounters) ImportStatus {
	successes := c.New + c.Updated
	switch {
	case c.Errors == 0:
		return ImportCompleted
	case successes == 0:
		return ImportFailed
	default:
		return ImportPartial
	}
}

// keyParams builds the case-insensitive uniqueness key of a record.
func keyParams(rec *Record) database.GetRegulationByKeyParams {
	return database.GetRegulationByKeyParams{
		Tipo:     rec.NormType,
		Numero:   rec.NormNumber,
		Articulo: ToPgText(rec.Article),
	}
}

func joinErrorLog(lines []string) pgtype.Text {
	if len(lines) == 0 {
		return pgtype.Text{}
	}
	return pgtype.Text{String: strings.Join(lines, "\n"), Valid: true}
}

func uuidString(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
