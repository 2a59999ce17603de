package core

import "testing"

func strPtr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultTaxonomy())

	tests := []struct {
		name        string
		rec         Record
		wantFlags   []string
		wantGeneral bool
	}{
		{
			name:        "no keywords stays general",
			rec:         Record{Theme: "Obligaciones del empleador"},
			wantGeneral: true,
		},
		{
			name:        "alturas keyword",
			rec:         Record{Theme: "Trabajo en alturas", Description: strPtr("protección contra caídas")},
			wantFlags:   []string{"trabajo_alturas"},
			wantGeneral: false,
		},
		{
			name:        "accented keyword matches",
			rec:         Record{Theme: "Riesgo eléctrico en subestaciones"},
			wantFlags:   []string{"riesgo_electrico"},
			wantGeneral: false,
		},
		{
			name: "multiple categories",
			rec: Record{
				Theme:    "Teletrabajo",
				Exigency: strPtr("pausas activas y ergonomía en el puesto"),
			},
			wantFlags:   []string{"teletrabajo", "trabajo_administrativo"},
			wantGeneral: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, general := c.Classify(&tt.rec)

			if general != tt.wantGeneral {
				t.Errorf("general = %v, want %v", general, tt.wantGeneral)
			}

			want := make(map[string]bool, len(tt.wantFlags))
			for _, k := range tt.wantFlags {
				want[k] = true
			}
			for key, set := range flags {
				if set != want[key] {
					t.Errorf("flag %s = %v, want %v", key, set, want[key])
				}
			}
		})
	}
}

func TestClassifyCoversAllCategories(t *testing.T) {
	tax := DefaultTaxonomy()
	c := NewClassifier(tax)

	flags, _ := c.Classify(&Record{Theme: "x"})
	if len(flags) != len(tax.Hazards) {
		t.Errorf("flag count = %d, want %d", len(flags), len(tax.Hazards))
	}
	for _, key := range tax.HazardKeys() {
		if _, ok := flags[key]; !ok {
			t.Errorf("category %s missing from flags", key)
		}
	}
}
