package core

// convert.go bridges canonical records and the pgtype parameter structs.

import (
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Bernah2o/legalmatrix/internal/database"
)

// ToPgText converts an optional string. Nil and empty both map to NULL.
func ToPgText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// ToPgDate converts an optional date.
func ToPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

// ToPgInt4 converts an optional int32.
func ToPgInt4(n *int32) pgtype.Int4 {
	if n == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *n, Valid: true}
}

// FromPgText converts back to an optional string.
func FromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// FromPgInt4 converts back to an optional int32.
func FromPgInt4(n pgtype.Int4) *int32 {
	if !n.Valid {
		return nil
	}
	v := n.Int32
	return &v
}

// marshalFlags serializes hazard flags for the JSONB column. Nil flags
// become an empty object, never SQL NULL.
func marshalFlags(flags HazardFlags) []byte {
	if flags == nil {
		flags = HazardFlags{}
	}
	data, _ := json.Marshal(flags)
	return data
}

// unmarshalFlags deserializes the JSONB column; malformed or empty input
// yields an empty map rather than an error.
func unmarshalFlags(data []byte) HazardFlags {
	flags := HazardFlags{}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &flags)
	}
	return flags
}

// recordFromRow rebuilds the canonical record from a stored regulation row,
// used for version-history snapshots.
func recordFromRow(r database.Regulation) Record {
	rec := Record{
		Scope:          Scope(r.AmbitoAplicacion),
		SectorText:     FromPgText(r.SectorTexto),
		Classification: r.Clasificacion,
		Theme:          r.TemaGeneral,
		Subtheme:       FromPgText(r.Subtema),
		Year:           int(r.Anio),
		NormType:       r.Tipo,
		NormNumber:     r.Numero,
		IssuedBy:       FromPgText(r.ExpedidaPor),
		Description:    FromPgText(r.Descripcion),
		Article:        FromPgText(r.Articulo),
		Status:         NormStatus(r.Estado),
		ExtraInfo:      FromPgText(r.InfoAdicional),
		Exigency:       FromPgText(r.Exigencias),
	}
	if r.FechaExpedicion.Valid {
		t := r.FechaExpedicion.Time
		rec.IssueDate = &t
	}
	return rec
}

// insertParams maps a classified record onto the insert statement.
func insertParams(rec *Record, sectorID pgtype.Int4, flags HazardFlags, general bool, hash string, runID pgtype.UUID) database.InsertRegulationParams {
	return database.InsertRegulationParams{
		AmbitoAplicacion:  string(rec.Scope),
		SectorID:          sectorID,
		SectorTexto:       ToPgText(rec.SectorText),
		Clasificacion:     rec.Classification,
		TemaGeneral:       rec.Theme,
		Subtema:           ToPgText(rec.Subtheme),
		Anio:              int32(rec.Year),
		Tipo:              rec.NormType,
		Numero:            rec.NormNumber,
		FechaExpedicion:   ToPgDate(rec.IssueDate),
		ExpedidaPor:       ToPgText(rec.IssuedBy),
		Descripcion:       ToPgText(rec.Description),
		Articulo:          ToPgText(rec.Article),
		Estado:            string(rec.Status),
		InfoAdicional:     ToPgText(rec.ExtraInfo),
		Exigencias:        ToPgText(rec.Exigency),
		HazardFlags:       marshalFlags(flags),
		AplicacionGeneral: general,
		ContentHash:       hash,
		ImportRunID:       runID,
	}
}

// updateParams maps a classified record onto the update statement for an
// existing regulation.
func updateParams(id int64, rec *Record, sectorID pgtype.Int4, flags HazardFlags, general bool, hash string, runID pgtype.UUID) database.UpdateRegulationParams {
	return database.UpdateRegulationParams{
		ID:                id,
		AmbitoAplicacion:  string(rec.Scope),
		SectorID:          sectorID,
		SectorTexto:       ToPgText(rec.SectorText),
		Clasificacion:     rec.Classification,
		TemaGeneral:       rec.Theme,
		Subtema:           ToPgText(rec.Subtheme),
		Anio:              int32(rec.Year),
		FechaExpedicion:   ToPgDate(rec.IssueDate),
		ExpedidaPor:       ToPgText(rec.IssuedBy),
		Descripcion:       ToPgText(rec.Description),
		Estado:            string(rec.Status),
		InfoAdicional:     ToPgText(rec.ExtraInfo),
		Exigencias:        ToPgText(rec.Exigency),
		HazardFlags:       marshalFlags(flags),
		AplicacionGeneral: general,
		ContentHash:       hash,
		ImportRunID:       runID,
	}
}
