package core

import "strings"

// Classifier tags records with hazard-category flags by keyword matching
// over their descriptive text. It is a best-effort heuristic: a miss leaves
// the regulation generally applicable, a false hit narrows its scope, and
// both are reviewed by an operator before the import is committed.
type Classifier struct {
	tax *Taxonomy
}

// NewClassifier returns a classifier over the taxonomy's hazard categories.
func NewClassifier(tax *Taxonomy) *Classifier {
	return &Classifier{tax: tax}
}

// Classify returns the hazard flags for a record plus its "generally
// applicable" flag. General starts true and is forced false the moment any
// category matches; a regulation is either hazard-scoped or general, never
// both.
func (c *Classifier) Classify(rec *Record) (HazardFlags, bool) {
	text := classificationText(rec)

	flags := make(HazardFlags, len(c.tax.Hazards))
	general := true
	for _, cat := range c.tax.Hazards {
		hit := false
		for _, kw := range cat.Keywords {
			if strings.Contains(text, kw) {
				hit = true
				break
			}
		}
		flags[cat.Key] = hit
		if hit {
			general = false
		}
	}
	return flags, general
}

// classificationText concatenates the descriptive fields and normalizes them
// the same way the taxonomy keywords are stored.
func classificationText(rec *Record) string {
	parts := []string{rec.Theme}
	for _, p := range []*string{rec.Subtheme, rec.Description, rec.Exigency} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	return NormalizeLabel(strings.Join(parts, " "))
}
