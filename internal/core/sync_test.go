package core

import "testing"

func int32Ptr(n int32) *int32 { return &n }

func TestAppliesTo(t *testing.T) {
	org := OrganizationView{
		SectorID: int32Ptr(3),
		Characteristics: HazardFlags{
			"teletrabajo":     true,
			"trabajo_alturas": false,
		},
	}

	tests := []struct {
		name string
		reg  RegulationView
		want bool
	}{
		{
			name: "general applies unconditionally",
			reg:  RegulationView{General: true, SectorID: int32Ptr(9)},
			want: true,
		},
		{
			name: "matching hazard flag in matching sector",
			reg:  RegulationView{SectorID: int32Ptr(3), Hazards: HazardFlags{"teletrabajo": true}},
			want: true,
		},
		{
			name: "nil sector never qualifies when not general",
			reg:  RegulationView{Hazards: HazardFlags{"teletrabajo": true}},
			want: false,
		},
		{
			name: "unmet hazard flag",
			reg:  RegulationView{SectorID: int32Ptr(3), Hazards: HazardFlags{"trabajo_alturas": true}},
			want: false,
		},
		{
			name: "all hazard flags must be met",
			reg:  RegulationView{SectorID: int32Ptr(3), Hazards: HazardFlags{"teletrabajo": true, "trabajo_alturas": true}},
			want: false,
		},
		{
			name: "sector mismatch",
			reg:  RegulationView{SectorID: int32Ptr(9), Hazards: HazardFlags{"teletrabajo": true}},
			want: false,
		},
		{
			name: "all-sectors sentinel",
			reg:  RegulationView{SectorID: int32Ptr(9), SectorAll: true, Hazards: HazardFlags{"teletrabajo": true}},
			want: true,
		},
		{
			name: "sentinel with false flags only",
			reg:  RegulationView{SectorID: int32Ptr(9), SectorAll: true, Hazards: HazardFlags{"trabajo_alturas": false}},
			want: true,
		},
		{
			name: "organization without sector only matches the sentinel",
			reg:  RegulationView{SectorID: int32Ptr(3), Hazards: HazardFlags{"teletrabajo": true}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := org
			if tt.name == "organization without sector only matches the sentinel" {
				o.SectorID = nil
			}
			if got := AppliesTo(tt.reg, o); got != tt.want {
				t.Errorf("AppliesTo = %v, want %v", got, tt.want)
			}
		})
	}
}

// Adding a characteristic must never shrink the applicable set; removing one
// must never grow it.
func TestAppliesToMonotonic(t *testing.T) {
	regs := []RegulationView{
		{ID: 1, General: true},
		{ID: 2, SectorAll: true, Hazards: HazardFlags{"teletrabajo": true}},
		{ID: 3, SectorAll: true, Hazards: HazardFlags{"trabajo_alturas": true}},
		{ID: 4, SectorAll: true, Hazards: HazardFlags{"teletrabajo": true, "conductores": true}},
	}

	applicableSet := func(org OrganizationView) map[int64]bool {
		out := make(map[int64]bool)
		for _, r := range regs {
			if AppliesTo(r, org) {
				out[r.ID] = true
			}
		}
		return out
	}

	smaller := OrganizationView{Characteristics: HazardFlags{"teletrabajo": true}}
	larger := OrganizationView{Characteristics: HazardFlags{"teletrabajo": true, "conductores": true}}

	before := applicableSet(smaller)
	after := applicableSet(larger)

	for id := range before {
		if !after[id] {
			t.Errorf("regulation %d dropped after adding a characteristic", id)
		}
	}
	if len(after) <= len(before) {
		t.Errorf("expected the applicable set to grow, got %d -> %d", len(before), len(after))
	}
}

// Scenario from the compliance model: an organization with teletrabajo but
// not alturas.
func TestAppliesToScenario(t *testing.T) {
	org := OrganizationView{Characteristics: HazardFlags{"teletrabajo": true}}

	regA := RegulationView{SectorAll: true, Hazards: HazardFlags{"teletrabajo": true}}
	regB := RegulationView{SectorAll: true, Hazards: HazardFlags{"trabajo_alturas": true}}
	regC := RegulationView{General: true}

	if !AppliesTo(regA, org) {
		t.Error("teletrabajo regulation should apply")
	}
	if AppliesTo(regB, org) {
		t.Error("alturas regulation should not apply")
	}
	if !AppliesTo(regC, org) {
		t.Error("general regulation should always apply")
	}
}
