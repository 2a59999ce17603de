package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Bernah2o/legalmatrix/internal/database"
)

// dbFake is an in-memory DB that routes the importer's fixed statements by
// SQL text, so the commit path (lookups, savepoints, version history) runs
// without Postgres. It also checks positional parameter order, since every
// argument is rebuilt into its params struct by index.
type dbFake struct {
	nextRegID  int64
	regs       []*storedReg
	versions   []storedVersion
	sectors    map[string]*storedSector
	savepoints map[string]int
	rolledBack []string
	committed  bool
	finished   string
}

type storedReg struct {
	id      int64
	version int32
	params  database.InsertRegulationParams
}

type storedVersion struct {
	regulationID int64
	snapshot     []byte
	contentHash  string
}

type storedSector struct {
	id      int32
	nombre  string
	esTodos bool
}

func newDBFake() *dbFake {
	return &dbFake{
		sectors:    map[string]*storedSector{},
		savepoints: map[string]int{},
	}
}

type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

func errRow(err error) pgx.Row {
	return fakeRow{scan: func(...any) error { return err }}
}

func regKey(tipo, numero, articulo string) string {
	return strings.ToLower(tipo) + "|" + strings.ToLower(numero) + "|" + strings.ToLower(articulo)
}

func (f *dbFake) findReg(tipo, numero, articulo string) *storedReg {
	want := regKey(tipo, numero, articulo)
	for _, r := range f.regs {
		p := r.params
		if regKey(p.Tipo, p.Numero, p.Articulo.String) == want {
			return r
		}
	}
	return nil
}

func (f *dbFake) queryRow(sql string, args []any) pgx.Row {
	switch {
	case strings.Contains(sql, "INSERT INTO import_runs"):
		return fakeRow{scan: func(dest ...any) error {
			*dest[0].(*pgtype.UUID) = pgtype.UUID{Bytes: [16]byte{0xAB}, Valid: true}
			*dest[1].(*string) = args[0].(string)
			*dest[2].(*string) = string(ImportInProgress)
			return nil
		}}

	case strings.Contains(sql, "INSERT INTO economic_sectors"):
		sec := &storedSector{
			id:      int32(len(f.sectors) + 1),
			nombre:  args[1].(string),
			esTodos: args[2].(bool),
		}
		f.sectors[strings.ToLower(sec.nombre)] = sec
		return fakeRow{scan: func(dest ...any) error {
			*dest[0].(*int32) = sec.id
			*dest[2].(*string) = sec.nombre
			*dest[3].(*bool) = sec.esTodos
			return nil
		}}

	case strings.Contains(sql, "FROM economic_sectors"):
		sec, ok := f.sectors[strings.ToLower(args[0].(string))]
		if !ok {
			return errRow(pgx.ErrNoRows)
		}
		return fakeRow{scan: func(dest ...any) error {
			*dest[0].(*int32) = sec.id
			*dest[2].(*string) = sec.nombre
			*dest[3].(*bool) = sec.esTodos
			return nil
		}}

	case strings.Contains(sql, "lower(tipo)"):
		r := f.findReg(args[0].(string), args[1].(string), args[2].(pgtype.Text).String)
		if r == nil {
			return errRow(pgx.ErrNoRows)
		}
		return fakeRow{scan: func(dest ...any) error {
			return scanStoredReg(r, dest)
		}}

	case strings.Contains(sql, "INSERT INTO regulations"):
		p := database.InsertRegulationParams{
			AmbitoAplicacion:  args[0].(string),
			SectorID:          args[1].(pgtype.Int4),
			SectorTexto:       args[2].(pgtype.Text),
			Clasificacion:     args[3].(string),
			TemaGeneral:       args[4].(string),
			Subtema:           args[5].(pgtype.Text),
			Anio:              args[6].(int32),
			Tipo:              args[7].(string),
			Numero:            args[8].(string),
			FechaExpedicion:   args[9].(pgtype.Date),
			ExpedidaPor:       args[10].(pgtype.Text),
			Descripcion:       args[11].(pgtype.Text),
			Articulo:          args[12].(pgtype.Text),
			Estado:            args[13].(string),
			InfoAdicional:     args[14].(pgtype.Text),
			Exigencias:        args[15].(pgtype.Text),
			HazardFlags:       args[16].([]byte),
			AplicacionGeneral: args[17].(bool),
			ContentHash:       args[18].(string),
			ImportRunID:       args[19].(pgtype.UUID),
		}
		if f.findReg(p.Tipo, p.Numero, p.Articulo.String) != nil {
			return errRow(&pgconn.PgError{Code: uniqueViolation})
		}
		f.nextRegID++
		r := &storedReg{id: f.nextRegID, version: 1, params: p}
		f.regs = append(f.regs, r)
		return fakeRow{scan: func(dest ...any) error {
			*dest[0].(*int64) = r.id
			return nil
		}}
	}
	return errRow(fmt.Errorf("unexpected query: %s", sql))
}

func scanStoredReg(r *storedReg, dest []any) error {
	p := r.params
	*dest[0].(*int64) = r.id
	*dest[1].(*string) = p.AmbitoAplicacion
	*dest[2].(*pgtype.Int4) = p.SectorID
	*dest[3].(*pgtype.Text) = p.SectorTexto
	*dest[4].(*string) = p.Clasificacion
	*dest[5].(*string) = p.TemaGeneral
	*dest[6].(*pgtype.Text) = p.Subtema
	*dest[7].(*int32) = p.Anio
	*dest[8].(*string) = p.Tipo
	*dest[9].(*string) = p.Numero
	*dest[10].(*pgtype.Date) = p.FechaExpedicion
	*dest[11].(*pgtype.Text) = p.ExpedidaPor
	*dest[12].(*pgtype.Text) = p.Descripcion
	*dest[13].(*pgtype.Text) = p.Articulo
	*dest[14].(*string) = p.Estado
	*dest[15].(*pgtype.Text) = p.InfoAdicional
	*dest[16].(*pgtype.Text) = p.Exigencias
	*dest[17].(*[]byte) = p.HazardFlags
	*dest[18].(*bool) = p.AplicacionGeneral
	*dest[19].(*string) = p.ContentHash
	*dest[20].(*int32) = r.version
	*dest[21].(*pgtype.UUID) = p.ImportRunID
	*dest[22].(*bool) = true
	return nil
}

func lastWord(sql string) string {
	fields := strings.Fields(sql)
	return fields[len(fields)-1]
}

func (f *dbFake) exec(sql string, args []any) (pgconn.CommandTag, error) {
	switch {
	case strings.HasPrefix(sql, "ROLLBACK TO SAVEPOINT"):
		name := lastWord(sql)
		f.rolledBack = append(f.rolledBack, name)
		if n, ok := f.savepoints[name]; ok {
			f.regs = f.regs[:n]
		}
	case strings.HasPrefix(sql, "SAVEPOINT"):
		f.savepoints[lastWord(sql)] = len(f.regs)
	case strings.HasPrefix(sql, "RELEASE"):
	case strings.Contains(sql, "INSERT INTO regulation_versions"):
		f.versions = append(f.versions, storedVersion{
			regulationID: args[0].(int64),
			snapshot:     args[1].([]byte),
			contentHash:  args[2].(string),
		})
	case strings.Contains(sql, "UPDATE regulations SET"):
		f.applyUpdate(args)
	case strings.Contains(sql, "UPDATE import_runs"):
		f.finished = args[1].(string)
	default:
		return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", sql)
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (f *dbFake) applyUpdate(args []any) {
	id := args[0].(int64)
	for _, r := range f.regs {
		if r.id != id {
			continue
		}
		r.params.AmbitoAplicacion = args[1].(string)
		r.params.SectorID = args[2].(pgtype.Int4)
		r.params.SectorTexto = args[3].(pgtype.Text)
		r.params.Clasificacion = args[4].(string)
		r.params.TemaGeneral = args[5].(string)
		r.params.Subtema = args[6].(pgtype.Text)
		r.params.Anio = args[7].(int32)
		r.params.FechaExpedicion = args[8].(pgtype.Date)
		r.params.ExpedidaPor = args[9].(pgtype.Text)
		r.params.Descripcion = args[10].(pgtype.Text)
		r.params.Estado = args[11].(string)
		r.params.InfoAdicional = args[12].(pgtype.Text)
		r.params.Exigencias = args[13].(pgtype.Text)
		r.params.HazardFlags = args[14].([]byte)
		r.params.AplicacionGeneral = args[15].(bool)
		r.params.ContentHash = args[16].(string)
		r.params.ImportRunID = args[17].(pgtype.UUID)
		r.version++
	}
}

func (f *dbFake) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return f.exec(sql, args)
}

func (f *dbFake) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("query not supported")
}

func (f *dbFake) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	return f.queryRow(sql, args)
}

func (f *dbFake) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{f: f}, nil
}

// fakeTx forwards to the shared store. Methods outside the commit path are
// left to the embedded nil interface.
type fakeTx struct {
	pgx.Tx
	f *dbFake
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.f.exec(sql, args)
}

func (t *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	return t.f.queryRow(sql, args)
}

func (t *fakeTx) Commit(context.Context) error {
	t.f.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error { return nil }

const commitCSV = `AMBITO DE APLICACION,SECTOR ECONOMICO,CLASIFICACION DE LA NORMA,TEMA GENERAL,ANIO,TIPO/NUMERO,FECHA,ESTADO,DESCRIPCION DE LA NORMA
Nacional,Todos los sectores,SST,Estándares mínimos,2019,Resolución 0312,13/02/2019,Vigente,Estándares mínimos del SG-SST
`

func TestCommitImportChangeDetection(t *testing.T) {
	ctx := context.Background()
	f := newDBFake()
	s := NewService(f, DefaultTaxonomy(), Options{}, nil)

	res, err := s.CommitImport(ctx, []byte(commitCSV), "matriz.csv", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Counters.New != 1 || res.Status != ImportCompleted {
		t.Fatalf("first import: %+v, status %q", res.Counters, res.Status)
	}
	if !f.committed {
		t.Error("transaction not committed")
	}
	if len(f.regs) != 1 || f.regs[0].version != 1 {
		t.Fatalf("stored regs = %d", len(f.regs))
	}
	if got := f.regs[0].params.SectorTexto.String; got != "Todos los sectores" {
		t.Errorf("sector text = %q", got)
	}
	if !f.regs[0].params.ImportRunID.Valid {
		t.Error("import run id not stamped on insert")
	}
	if sec := f.sectors["todos los sectores"]; sec == nil || !sec.esTodos {
		t.Error("all-sectors sentinel not flagged")
	}

	changed := strings.Replace(commitCSV,
		"Estándares mínimos del SG-SST", "Texto actualizado de la norma", 1)

	// A changed row without overwrite is reported unchanged and writes
	// nothing.
	res, err = s.CommitImport(ctx, []byte(changed), "matriz.csv", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Counters.Unchanged != 1 || res.Counters.Updated != 0 {
		t.Fatalf("without overwrite: %+v", res.Counters)
	}
	if len(f.versions) != 0 || f.regs[0].version != 1 {
		t.Error("overwrite gating leaked a write")
	}

	// With overwrite the row updates in place: exactly one history row,
	// version bumped, new content stored.
	res, err = s.CommitImport(ctx, []byte(changed), "matriz.csv", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Counters.Updated != 1 {
		t.Fatalf("with overwrite: %+v", res.Counters)
	}
	if len(f.versions) != 1 {
		t.Fatalf("history rows = %d, want 1", len(f.versions))
	}
	if !strings.Contains(string(f.versions[0].snapshot), "Estándares mínimos del SG-SST") {
		t.Error("history snapshot must hold the prior content")
	}
	if f.regs[0].version != 2 {
		t.Errorf("version = %d, want 2", f.regs[0].version)
	}
	if got := f.regs[0].params.Descripcion.String; got != "Texto actualizado de la norma" {
		t.Errorf("stored description = %q", got)
	}

	// Re-importing the identical file is a no-op.
	res, err = s.CommitImport(ctx, []byte(changed), "matriz.csv", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Counters.Unchanged != 1 || len(f.versions) != 1 || f.regs[0].version != 2 {
		t.Errorf("re-import must not write: %+v, versions %d", res.Counters, len(f.versions))
	}
}

func TestConflictSafeInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newDBFake()
	s := NewService(f, DefaultTaxonomy(), Options{}, nil)

	seed := database.InsertRegulationParams{
		Tipo: "Decreto", Numero: "1072", Estado: string(NormInForce), ContentHash: "h1",
	}
	f.nextRegID++
	f.regs = append(f.regs, &storedReg{id: f.nextRegID, version: 1, params: seed})

	tx, err := f.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	dup := seed
	dup.ContentHash = "h2"
	outcome, err := s.conflictSafeInsert(ctx, tx, database.New(tx), 0, dup)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeUnchanged {
		t.Errorf("outcome = %q, want unchanged", outcome)
	}
	if len(f.regs) != 1 {
		t.Errorf("regs = %d, duplicate insert must roll back", len(f.regs))
	}
	if len(f.rolledBack) != 1 || f.rolledBack[0] != "sp_0" {
		t.Errorf("rolled back = %v, want the row's savepoint", f.rolledBack)
	}
}

func TestPreviewImportSamplesValidRowsOnly(t *testing.T) {
	ctx := context.Background()
	f := newDBFake()
	s := NewService(f, DefaultTaxonomy(), Options{}, nil)

	csv := `AMBITO DE APLICACION,SECTOR ECONOMICO,CLASIFICACION DE LA NORMA,TEMA GENERAL,ANIO,TIPO/NUMERO,FECHA,ESTADO
Nacional,Minas,,Riesgo,2019,Resolución 0312,13/02/2019,Vigente
Nacional,Minas,SST,Riesgo,2015,Decreto 1072,26/05/2015,Vigente
`

	res, err := s.PreviewImport(ctx, []byte(csv), "matriz.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Row != 2 {
		t.Fatalf("errors = %+v, want one on line 2", res.Errors)
	}
	if len(res.SampleRows) != 1 {
		t.Fatalf("samples = %d, want only the valid row", len(res.SampleRows))
	}
	if got := res.SampleRows[0][FieldTypeNumber]; got != "Decreto 1072" {
		t.Errorf("sampled row = %q, invalid rows must not be sampled", got)
	}
	if res.NewRows != 1 {
		t.Errorf("new rows = %d, want 1", res.NewRows)
	}
}
