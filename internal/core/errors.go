package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Sentinel errors for callers that branch on failure class.
var (
	// ErrInvalidInput marks a request the caller can correct.
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound reports whether err is a missing-row failure.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// UserMessage is operator-facing error information with a support code and
// a suggested action.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive, substring) to
// operator messages. First match wins, so specific patterns come before
// general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "Ya existe una norma con ese tipo, número y artículo",
			Action:  "Revise el archivo en busca de filas duplicadas",
			Code:    "DB001",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "El registro hace referencia a datos que no existen",
			Action:  "Sincronice los catálogos antes de importar",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "No fue posible conectar con la base de datos",
			Action:  "Intente de nuevo en unos minutos",
			Code:    "DB003",
		},
	},
	{
		pattern: "campo requerido",
		msg: UserMessage{
			Message: "Faltan campos obligatorios en una o más filas",
			Action:  "Complete las columnas requeridas y vuelva a importar",
			Code:    "VAL001",
		},
	},
	{
		pattern: "no recognizable columns",
		msg: UserMessage{
			Message: "No se reconoció ninguna columna del archivo",
			Action:  "Verifique que los encabezados correspondan a la matriz legal",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "El archivo está vacío",
			Action:  "Cargue un archivo con filas de datos",
			Code:    "FILE002",
		},
	},
	{
		pattern: "parse",
		msg: UserMessage{
			Message: "El archivo no es un CSV válido",
			Action:  "Exporte la matriz como CSV y vuelva a intentarlo",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no rows in result set",
		msg: UserMessage{
			Message: "El registro solicitado no existe",
			Action:  "Verifique el identificador",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid input",
		msg: UserMessage{
			Message: "La solicitud contiene valores no válidos",
			Action:  "Corrija los datos enviados",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "La operación fue cancelada",
			Action:  "Intente de nuevo",
			Code:    "REQ003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "La operación excedió el tiempo límite",
			Action:  "Intente con un archivo más pequeño",
			Code:    "REQ004",
		},
	},
}

// MapError resolves an error to its operator message. Unmatched errors get
// the generic ERR000 message; the technical detail stays in the logs.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.pattern) {
			return p.msg
		}
	}
	return UserMessage{
		Message: "Ocurrió un error inesperado",
		Action:  "Intente de nuevo o contacte al soporte",
		Code:    "ERR000",
	}
}

// parseUUID converts a string id to its pgtype form.
func parseUUID(s string) (pgtype.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return pgtype.UUID{Bytes: id, Valid: true}, nil
}
