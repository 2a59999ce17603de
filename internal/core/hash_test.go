package core

import (
	"testing"
	"time"
)

func sampleRecord() Record {
	date := time.Date(2019, time.February, 13, 0, 0, 0, 0, time.UTC)
	return Record{
		Scope:          ScopeNational,
		Classification: "SST",
		Theme:          "Estándares mínimos",
		Year:           2019,
		NormType:       "Resolución",
		NormNumber:     "0312",
		IssueDate:      &date,
		Description:    strPtr("Estándares mínimos del SG-SST"),
		Status:         NormInForce,
	}
}

func TestContentHashDeterministic(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()

	if ContentHash(&a) != ContentHash(&b) {
		t.Error("identical records must hash identically")
	}
}

func TestContentHashRoundTrip(t *testing.T) {
	e := &RegulationExtractor{}
	values := map[string]string{
		FieldScope:       "Nacional",
		FieldClass:       "SST",
		FieldTheme:       "Estándares mínimos",
		FieldYear:        "2019",
		FieldTypeNumber:  "Resolución 0312",
		FieldIssueDate:   "13/02/2019",
		FieldStatus:      "Vigente",
		FieldDescription: "Estándares mínimos del SG-SST",
	}

	first := e.Extract(values)
	second := e.Extract(values)

	if ContentHash(&first) != ContentHash(&second) {
		t.Error("re-extracting identical row must reproduce the digest")
	}
}

func TestContentHashChangesWithContent(t *testing.T) {
	base := sampleRecord()
	baseHash := ContentHash(&base)

	changed := sampleRecord()
	changed.Description = strPtr("texto distinto")
	if ContentHash(&changed) == baseHash {
		t.Error("changed description must change the digest")
	}

	nulled := sampleRecord()
	nulled.Description = nil
	if ContentHash(&nulled) == baseHash {
		t.Error("nulled field must change the digest")
	}
}
