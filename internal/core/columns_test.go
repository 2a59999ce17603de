package core

import "testing"

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "TEMA GENERAL", "tema general"},
		{"diacritics stripped", "Clasificación de la Norma", "clasificacion de la norma"},
		{"newlines folded", "tipo/\nnumero", "tipo/numero"},
		{"whitespace collapsed", "  tema   general\t", "tema general"},
		{"empty", "", ""},
		{"enie", "Año", "ano"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLabel(tt.input); got != tt.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims", "  valor  ", "valor"},
		{"formula prefix", `="0312"`, "0312"},
		{"quotes", `"Resolución"`, "Resolución"},
		{"nan placeholder", "NaN", ""},
		{"none placeholder", "None", ""},
		{"null placeholder", "null", ""},
		{"plain", "vigente", "vigente"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeColumns(t *testing.T) {
	tax := DefaultTaxonomy()
	headers := []string{"Ámbito de Aplicación", "Clasificación de la Norma", "Columna Rara", "Tema General", "TEMA"}

	idx, diags := NormalizeColumns(tax, headers)

	if len(diags) != len(headers) {
		t.Fatalf("expected %d diagnostics, got %d", len(headers), len(diags))
	}
	if diags[2].Mapped != "" {
		t.Errorf("unknown column mapped to %q, want unmapped", diags[2].Mapped)
	}
	if got := idx[FieldScope]; got != 0 {
		t.Errorf("scope column = %d, want 0", got)
	}
	// Duplicate mapping: first occurrence wins.
	if got := idx[FieldTheme]; got != 3 {
		t.Errorf("theme column = %d, want 3", got)
	}
}

func TestRowValues(t *testing.T) {
	idx := ColumnIndex{FieldClass: 0, FieldTheme: 1, FieldYear: 5}
	values := idx.RowValues([]string{" General ", "", "x"})

	if values[FieldClass] != "General" {
		t.Errorf("class = %q, want %q", values[FieldClass], "General")
	}
	if _, ok := values[FieldTheme]; ok {
		t.Error("empty cell should be omitted")
	}
	if _, ok := values[FieldYear]; ok {
		t.Error("out-of-range column should be omitted")
	}
}
