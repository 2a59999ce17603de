package core

// columns.go normalizes raw header labels and maps them onto the canonical
// field vocabulary.
//
// Label wording shifts with every catalog release (accents come and go,
// columns get abbreviated, grouped labels leak prefixes), so matching happens
// on a normalized form: lower-case, no diacritics, single-spaced. The mapping
// table itself (Taxonomy.ColumnMapping) is keyed by normalized labels, which
// collapses the accented/unaccented variants into one entry each.

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// diacriticStripper decomposes to NFD, drops combining marks, and recomposes.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLabel canonicalizes a header label for lookup: lower-case,
// diacritics stripped, newlines folded into spaces, whitespace runs
// collapsed, non-printable runes dropped.
func NormalizeLabel(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(diacriticStripper, s); err == nil {
		s = out
	}
	s = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
	s = strings.Map(func(r rune) rune {
		if r == ' ' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ColumnIndex maps canonical field names to their column position in the
// detected header.
type ColumnIndex map[string]int

// NormalizeColumns resolves each detected header label against the taxonomy.
// It returns the canonical index (first occurrence wins on collisions) and
// the full diagnostic list, one entry per label, mapped or not. The
// diagnostic is always produced so operators can audit what a new catalog
// release renamed.
func NormalizeColumns(tax *Taxonomy, headers []string) (ColumnIndex, []ColumnMapping) {
	idx := make(ColumnIndex, len(headers))
	diags := make([]ColumnMapping, 0, len(headers))

	for i, label := range headers {
		field := tax.MapColumn(label)
		diags = append(diags, ColumnMapping{Original: label, Mapped: field})
		if field == "" {
			continue
		}
		if _, seen := idx[field]; !seen {
			idx[field] = i
		}
	}

	return idx, diags
}

// RowValues projects a raw data row onto canonical fields. Cells are
// trimmed; empty cells are omitted so presence checks stay simple.
func (c ColumnIndex) RowValues(row []string) map[string]string {
	values := make(map[string]string, len(c))
	for field, pos := range c {
		if pos >= len(row) {
			continue
		}
		v := CleanCell(row[pos])
		if v != "" {
			values[field] = v
		}
	}
	return values
}

// CleanCell trims a raw cell and strips spreadsheet-export artifacts:
// Excel formula prefixes (="value"), surrounding quotes, and the literal
// NaN/None placeholders pandas-style exports leave behind.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else {
		s = strings.TrimPrefix(s, "=")
	}
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}
