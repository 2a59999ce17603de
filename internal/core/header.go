package core

// header.go locates the header row(s) in an untrusted raw grid.
//
// Catalog releases arrive in two shapes: a plain single header row, or a
// two-row header where a grouping label ("LEGISLACION") spans several
// sub-columns on the following row. No row position is assumed; the first
// rows are scanned for two disjoint keyword sets and the best interpretation
// wins. Detection never fails hard — when nothing matches, row 0 is treated
// as the header and the downstream column mapping sorts out the rest.

import (
	"fmt"
	"strings"
)

// DefaultHeaderScanRows is how many leading rows are scanned for headers.
var DefaultHeaderScanRows = 15

// HeaderResult describes the detected header layout.
type HeaderResult struct {
	// Headers are the resolved labels, one per retained column.
	Headers []string
	// Columns holds the source column index of each retained header.
	Columns []int
	// DataStart is the index of the first data row in the grid.
	DataStart int
	// TwoRow is true when a grouped two-row header was merged.
	TwoRow bool
	// Fallback is true when no header structure was recognized and row 0
	// was used as-is.
	Fallback bool
}

// HeaderDetector scans raw grids for header structure using the taxonomy's
// keyword sets.
type HeaderDetector struct {
	tax      *Taxonomy
	scanRows int
}

// NewHeaderDetector returns a detector scanning up to scanRows leading rows
// (DefaultHeaderScanRows when <= 0).
func NewHeaderDetector(tax *Taxonomy, scanRows int) *HeaderDetector {
	if scanRows <= 0 {
		scanRows = DefaultHeaderScanRows
	}
	return &HeaderDetector{tax: tax, scanRows: scanRows}
}

// Detect locates the header in the grid. It degrades to row 0 when no
// structure is recognized and only returns an error for an empty grid.
func (d *HeaderDetector) Detect(grid [][]string) (*HeaderResult, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("empty grid")
	}

	limit := d.scanRows
	if len(grid) < limit {
		limit = len(grid)
	}

	mainRow, subRow := -1, -1
	for i := 0; i < limit; i++ {
		rowText := normalizedRowText(grid[i])
		primary := countMatches(rowText, d.tax.PrimaryHeaderKeywords)
		secondary := countMatches(rowText, d.tax.SecondaryHeaderKeywords)

		// Grouped layout: primary labels plus the grouping token, with
		// the sub-labels on the next row.
		if primary >= 2 && containsAny(rowText, d.tax.GroupingTokens) {
			mainRow = i
			if i+1 < len(grid) {
				nextText := normalizedRowText(grid[i+1])
				if countMatches(nextText, d.tax.SecondaryHeaderKeywords) >= 2 {
					subRow = i + 1
				}
			}
			break
		}

		// Flat layout: one row carrying both keyword families.
		if primary >= 3 && secondary >= 2 {
			mainRow = i
			break
		}
	}

	var res *HeaderResult
	switch {
	case mainRow >= 0 && subRow >= 0:
		res = d.mergeTwoRowHeader(grid[mainRow], grid[subRow], subRow+1)
	case mainRow >= 0:
		res = singleRowHeader(grid[mainRow], mainRow+1)
	default:
		res = singleRowHeader(grid[0], 1)
		res.Fallback = true
	}

	return res, nil
}

// mergeTwoRowHeader merges the grouping row with the sub-column row,
// preferring the top label unless it is blank, a placeholder, or the
// grouping label itself.
func (d *HeaderDetector) mergeTwoRowHeader(row1, row2 []string, dataStart int) *HeaderResult {
	width := len(row1)
	if len(row2) > width {
		width = len(row2)
	}

	res := &HeaderResult{DataStart: dataStart, TwoRow: true}
	for i := 0; i < width; i++ {
		top := CleanCell(cellAt(row1, i))
		sub := CleanCell(cellAt(row2, i))

		label := top
		if top == "" || containsAny(NormalizeLabel(top), d.tax.GroupingTokens) {
			label = sub
			if sub == "" {
				label = fmt.Sprintf("col_%d", i)
			}
		}
		res.Headers = append(res.Headers, label)
		res.Columns = append(res.Columns, i)
	}

	dropBlankColumns(res)
	return res
}

func singleRowHeader(row []string, dataStart int) *HeaderResult {
	res := &HeaderResult{DataStart: dataStart}
	for i, cell := range row {
		label := CleanCell(cell)
		if strings.Contains(label, "Unnamed") {
			label = ""
		}
		res.Headers = append(res.Headers, label)
		res.Columns = append(res.Columns, i)
	}
	dropBlankColumns(res)
	return res
}

// dropBlankColumns removes columns whose resolved label is empty.
func dropBlankColumns(res *HeaderResult) {
	headers := res.Headers[:0]
	cols := res.Columns[:0]
	for i, h := range res.Headers {
		if h == "" {
			continue
		}
		headers = append(headers, h)
		cols = append(cols, res.Columns[i])
	}
	res.Headers = headers
	res.Columns = cols
}

// IsEmptyRow reports whether every cell of a row is blank after cleanup.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if CleanCell(v) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func normalizedRowText(row []string) string {
	parts := make([]string, 0, len(row))
	for _, cell := range row {
		parts = append(parts, NormalizeLabel(cell))
	}
	return strings.Join(parts, " ")
}

func countMatches(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

func containsAny(text string, tokens []string) bool {
	for _, tok := range tokens {
		if tok != "" && strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
