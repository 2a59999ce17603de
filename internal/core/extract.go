package core

// extract.go turns a validated canonical row into a Record. Extraction is
// deliberately forgiving: dates and years that fail to parse degrade to a
// null or a fallback instead of failing the row, because the catalog mixes
// formats freely between releases.

import (
	"strconv"
	"strings"
	"time"
)

// RegulationExtractor builds canonical records from validated row values.
type RegulationExtractor struct {
	// Now supplies the clock for the year fallback. Nil means time.Now.
	Now func() time.Time
}

// dateLayouts are tried in order; first success wins.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"2-1-2006",
	"02/01/06",
	"2006/01/02",
}

// spanishMonths resolves the long-form month names of "2 de enero de 2006".
var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"setiembre": time.September, "octubre": time.October,
	"noviembre": time.November, "diciembre": time.December,
}

// Extract builds a Record from validated row values. It never fails; fields
// that cannot be interpreted fall back to nulls or conservative defaults.
func (e *RegulationExtractor) Extract(values map[string]string) Record {
	normType, normNumber := e.normIdentity(values)

	rec := Record{
		Scope:          ParseScope(values[FieldScope]),
		SectorText:     optional(values[FieldSectorText]),
		Classification: values[FieldClass],
		Theme:          values[FieldTheme],
		Subtheme:       optional(values[FieldSubtheme]),
		Year:           e.parseYear(values[FieldYear]),
		NormType:       normType,
		NormNumber:     normNumber,
		IssueDate:      ParseDate(values[FieldIssueDate]),
		IssuedBy:       optional(values[FieldIssuedBy]),
		Description:    optional(values[FieldDescription]),
		Article:        optional(values[FieldArticle]),
		Status:         ParseNormStatus(values[FieldStatus]),
		ExtraInfo:      optional(values[FieldExtraInfo]),
		Exigency:       optional(values[FieldExigency]),
	}
	return rec
}

// normIdentity prefers the separate type and number columns; otherwise it
// splits the combined column on the first whitespace boundary.
func (e *RegulationExtractor) normIdentity(values map[string]string) (string, string) {
	if t, n := values[FieldNormType], values[FieldNormNumber]; t != "" && n != "" {
		return t, n
	}
	return SplitTypeNumber(values[FieldTypeNumber])
}

// SplitTypeNumber splits a combined "Resolución 0312" value into type and
// number. Values with no whitespace boundary become {raw, ""}.
func SplitTypeNumber(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if i := strings.IndexAny(raw, " \t"); i > 0 {
		return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:])
	}
	return raw, ""
}

// ParseDate interprets a raw date cell. Numeric and ISO layouts are tried
// first, then the long Spanish form. Unparseable input yields nil.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// Timestamp suffixes from spreadsheet exports ("2019-02-13 00:00:00").
	if i := strings.IndexAny(raw, " T"); i > 0 {
		if t, err := time.Parse("2006-01-02", raw[:i]); err == nil {
			return &t
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	return parseSpanishDate(raw)
}

// parseSpanishDate handles "13 de febrero de 2019".
func parseSpanishDate(raw string) *time.Time {
	parts := strings.Fields(strings.ToLower(raw))
	if len(parts) != 5 || parts[1] != "de" || parts[3] != "de" {
		return nil
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	month, ok := spanishMonths[parts[2]]
	if !ok {
		return nil
	}
	year, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// parseYear coerces the year cell to an int. Spreadsheets deliver years as
// "2019", "2019.0", or garbage; garbage falls back to the current year so the
// row still imports.
func (e *RegulationExtractor) parseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '.'); i > 0 {
		raw = raw[:i]
	}
	if y, err := strconv.Atoi(raw); err == nil && y > 0 {
		return y
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return now().Year()
}

// ParseScope matches the territorial scope by substring; unmatched text
// defaults to national.
func ParseScope(raw string) Scope {
	s := NormalizeLabel(raw)
	switch {
	case strings.Contains(s, "internacional"):
		return ScopeInternational
	case strings.Contains(s, "departamental"):
		return ScopeDepartmental
	case strings.Contains(s, "municipal"), strings.Contains(s, "distrital"):
		return ScopeMunicipal
	default:
		return ScopeNational
	}
}

// ParseNormStatus matches the legal status by substring; unmatched text
// defaults to in-force.
func ParseNormStatus(raw string) NormStatus {
	s := NormalizeLabel(raw)
	switch {
	case strings.Contains(s, "derogad"):
		return NormRepealed
	case strings.Contains(s, "modificad"):
		return NormAmended
	default:
		return NormInForce
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
