package core

import (
	"strings"
	"testing"
)

func twoRowGrid() [][]string {
	return [][]string{
		{"MATRIZ LEGAL", "", "", "", "", "", ""},
		{"", "", "", "", "", "", ""},
		{"AMBITO DE APLICACION", "SECTOR ECONOMICO", "CLASIFICACION DE LA NORMA", "TEMA GENERAL", "LEGISLACION", "", ""},
		{"", "", "", "", "TIPO/NUMERO", "FECHA", "ESTADO"},
		{"Nacional", "Minas", "SST", "Alturas", "Resolución 1409", "23/07/2012", "Vigente"},
	}
}

func TestDetectTwoRowHeader(t *testing.T) {
	d := NewHeaderDetector(DefaultTaxonomy(), 0)

	res, err := d.Detect(twoRowGrid())
	if err != nil {
		t.Fatal(err)
	}
	if !res.TwoRow {
		t.Fatal("expected two-row header")
	}
	if res.DataStart != 4 {
		t.Errorf("data start = %d, want 4", res.DataStart)
	}

	// The grouping label must be replaced by the sub-labels, never kept.
	for _, h := range res.Headers {
		if NormalizeLabel(h) == "legislacion" {
			t.Errorf("grouping label leaked into headers: %v", res.Headers)
		}
	}
}

func TestTwoRowHeaderMapsCanonicalFields(t *testing.T) {
	tax := DefaultTaxonomy()
	d := NewHeaderDetector(tax, 0)

	res, err := d.Detect(twoRowGrid())
	if err != nil {
		t.Fatal(err)
	}

	idx, _ := NormalizeColumns(tax, res.Headers)
	for _, field := range []string{FieldScope, FieldClass, FieldTheme, FieldTypeNumber, FieldIssueDate, FieldStatus} {
		if _, ok := idx[field]; !ok {
			t.Errorf("field %s not mapped from headers %v", field, res.Headers)
		}
	}

	// No synthetic placeholder may end up bound to a canonical field.
	for field, pos := range idx {
		if strings.HasPrefix(res.Headers[pos], "col_") {
			t.Errorf("field %s bound to placeholder %q", field, res.Headers[pos])
		}
	}
}

func TestDetectSingleRowHeader(t *testing.T) {
	grid := [][]string{
		{"AMBITO", "SECTOR", "CLASIFICACION", "TEMA", "TIPO", "FECHA", "ESTADO"},
		{"Nacional", "Todos", "SST", "General", "Ley", "11/07/2012", "Vigente"},
	}

	res, err := NewHeaderDetector(DefaultTaxonomy(), 0).Detect(grid)
	if err != nil {
		t.Fatal(err)
	}
	if res.TwoRow {
		t.Error("expected single-row header")
	}
	if res.Fallback {
		t.Error("keyword-matched header flagged as fallback")
	}
	if res.DataStart != 1 {
		t.Errorf("data start = %d, want 1", res.DataStart)
	}
}

func TestDetectFallsBackToFirstRow(t *testing.T) {
	grid := [][]string{
		{"uno", "dos"},
		{"a", "b"},
	}

	res, err := NewHeaderDetector(DefaultTaxonomy(), 0).Detect(grid)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Fallback {
		t.Error("expected fallback")
	}
	if res.DataStart != 1 {
		t.Errorf("data start = %d, want 1", res.DataStart)
	}
}

func TestDetectEmptyGrid(t *testing.T) {
	if _, err := NewHeaderDetector(DefaultTaxonomy(), 0).Detect(nil); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]string{"", "  ", "nan"}) {
		t.Error("row of blanks and placeholders should be empty")
	}
	if IsEmptyRow([]string{"", "x"}) {
		t.Error("row with content should not be empty")
	}
}
