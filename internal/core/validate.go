package core

import "fmt"

// RowValidator checks required-field presence on a canonical row. Failures
// are reported per row and never abort the batch.
type RowValidator struct{}

// requiredFields are always mandatory; the norm identity is checked
// separately because it can be satisfied two ways.
var requiredFields = []struct {
	field string
	label string
}{
	{FieldClass, "clasificación de la norma"},
	{FieldTheme, "tema general"},
	{FieldYear, "año"},
}

// Validate returns nil when the row carries every required field, or a
// RowError naming the first missing one. row is the 1-indexed source line.
func (RowValidator) Validate(row int, values map[string]string) *RowError {
	for _, req := range requiredFields {
		if values[req.field] == "" {
			return &RowError{Row: row, Message: fmt.Sprintf("campo requerido ausente: %s", req.label)}
		}
	}

	// Norm identity: either the combined type/number column, or both
	// separate columns.
	if values[FieldTypeNumber] == "" {
		if values[FieldNormType] == "" || values[FieldNormNumber] == "" {
			return &RowError{Row: row, Message: "campo requerido ausente: tipo/número de la norma"}
		}
	}

	return nil
}
