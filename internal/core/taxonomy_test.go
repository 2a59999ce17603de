package core

import "testing"

func TestMapColumnVariants(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		label string
		want  string
	}{
		{"Ámbito de Aplicación", FieldScope},
		{"AMBITO DE APLICACION", FieldScope},
		{"Clasificación de la Norma", FieldClass},
		{"TIPO/NUMERO", FieldTypeNumber},
		{"tipo /\nnumero", FieldTypeNumber},
		{"Año", FieldYear},
		{"ANO", FieldYear},
		{"Descripción del artículo que aplica - Exigencias", FieldExigency},
		{"columna desconocida", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := tax.MapColumn(tt.label); got != tt.want {
				t.Errorf("MapColumn(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestIsAllSectors(t *testing.T) {
	tax := DefaultTaxonomy()

	tests := []struct {
		name string
		want bool
	}{
		{"Todos los sectores", true},
		{"TODOS LOS SECTORES ECONÓMICOS", true},
		{"Todos", false},
		{"Sector minero", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tax.IsAllSectors(tt.name); got != tt.want {
				t.Errorf("IsAllSectors(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestHazardKeysStable(t *testing.T) {
	tax := DefaultTaxonomy()
	keys := tax.HazardKeys()

	if len(keys) != 17 {
		t.Fatalf("hazard categories = %d, want 17", len(keys))
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			t.Errorf("duplicate category key %s", k)
		}
		seen[k] = true
	}
}
