package core

import "strings"

// Canonical field names. Column labels from the spreadsheet are normalized
// and mapped onto these; extraction reads rows keyed by them.
const (
	FieldScope       = "ambito_aplicacion"
	FieldSectorText  = "sector_economico_texto"
	FieldClass       = "clasificacion_norma"
	FieldTheme       = "tema_general"
	FieldSubtheme    = "subtema_riesgo_especifico"
	FieldYear        = "anio"
	FieldTypeNumber  = "tipo_numero_raw"
	FieldNormType    = "tipo_norma"
	FieldNormNumber  = "numero_norma"
	FieldIssueDate   = "fecha_expedicion"
	FieldIssuedBy    = "expedida_por"
	FieldDescription = "descripcion_norma"
	FieldArticle     = "articulo"
	FieldStatus      = "estado"
	FieldExtraInfo   = "info_adicional"
	FieldExigency    = "descripcion_articulo_exigencias"
)

// HazardCategory is one workplace-hazard category: a stable key plus the
// keywords whose presence in a regulation's descriptive text sets its flag.
type HazardCategory struct {
	Key      string
	Keywords []string
}

// Taxonomy holds every keyword table the engine matches against. It is
// injected into Service so tests can swap in smaller vocabularies. All
// entries must already be in normalized form (lower-case, no diacritics);
// NormalizeLabel is applied to the inputs before comparison, never to the
// taxonomy itself.
type Taxonomy struct {
	// PrimaryHeaderKeywords are typical of the first canonical columns
	// (scope, sector, classification).
	PrimaryHeaderKeywords []string

	// SecondaryHeaderKeywords are typical of columns nested under the
	// grouping label in two-row headers.
	SecondaryHeaderKeywords []string

	// GroupingTokens mark the grouping label of a two-row header. Matched
	// as substrings so truncated variants ("legislacion"/"legislación")
	// both hit.
	GroupingTokens []string

	// ColumnMapping maps normalized header labels onto canonical fields.
	ColumnMapping map[string]string

	// Hazards are the hazard categories in classification order.
	Hazards []HazardCategory

	// AllSectorsTokens must all be present in a sector name for it to be
	// auto-flagged as the "all sectors" sentinel.
	AllSectorsTokens []string
}

// HazardKeys returns the category keys in taxonomy order.
func (t *Taxonomy) HazardKeys() []string {
	keys := make([]string, len(t.Hazards))
	for i, h := range t.Hazards {
		keys[i] = h.Key
	}
	return keys
}

// MapColumn resolves a raw header label to its canonical field name.
// Returns "" when the label has no mapping.
func (t *Taxonomy) MapColumn(label string) string {
	return t.ColumnMapping[NormalizeLabel(label)]
}

// IsAllSectors reports whether a raw sector name is the "all sectors"
// sentinel: every configured token must appear in the normalized text.
func (t *Taxonomy) IsAllSectors(name string) bool {
	if len(t.AllSectorsTokens) == 0 {
		return false
	}
	norm := NormalizeLabel(name)
	for _, tok := range t.AllSectorsTokens {
		if !strings.Contains(norm, tok) {
			return false
		}
	}
	return true
}

// DefaultTaxonomy returns the vocabulary for the ARL legal-matrix spreadsheet
// family. Mapping keys are in normalized form, so accented label variants
// collapse onto the same entry before lookup.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		PrimaryHeaderKeywords: []string{
			"ambito", "sector", "clasificacion", "tema",
		},
		SecondaryHeaderKeywords: []string{
			"tipo/numero", "tipo", "fecha", "expedida", "articulo", "estado",
		},
		GroupingTokens: []string{"legislaci"},
		ColumnMapping: map[string]string{
			// Scope
			"ambito de aplicacion": FieldScope,
			"ambito":               FieldScope,
			// Economic sector
			"sector economico": FieldSectorText,
			"sector":           FieldSectorText,
			// Classification
			"clasificacion de la norma": FieldClass,
			"clasificacion":             FieldClass,
			// Theme
			"tema general": FieldTheme,
			"tema":         FieldTheme,
			// Subtheme
			"sub tema o riesgo especifico": FieldSubtheme,
			"subtema o riesgo especifico":  FieldSubtheme,
			"subtema riesgo especifico":    FieldSubtheme,
			"subtema":                      FieldSubtheme,
			// Year
			"ano":  FieldYear,
			"anio": FieldYear,
			// Combined type/number column
			"tipo/numero":             FieldTypeNumber,
			"tipo / numero":           FieldTypeNumber,
			"legislacion tipo/numero": FieldTypeNumber,
			// Separate type and number columns
			"tipo":         FieldNormType,
			"tipo norma":   FieldNormType,
			"numero":       FieldNormNumber,
			"numero norma": FieldNormNumber,
			// Issue date
			"fecha":             FieldIssueDate,
			"legislacion fecha": FieldIssueDate,
			"fecha expedicion":  FieldIssueDate,
			// Issuing authority
			"expedida por":             FieldIssuedBy,
			"legislacion expedida por": FieldIssuedBy,
			// Description
			"descripcion de la norma":             FieldDescription,
			"legislacion descripcion de la norma": FieldDescription,
			"descripcion norma":                   FieldDescription,
			// Article
			"articulo":             FieldArticle,
			"legislacion articulo": FieldArticle,
			// Status
			"estado":             FieldStatus,
			"legislacion estado": FieldStatus,
			// Additional info
			"info":                  FieldExtraInfo,
			"legislacion info":      FieldExtraInfo,
			"informacion adicional": FieldExtraInfo,
			// Exigencies / applicable-article description
			"descripcion del articulo que aplica - exigencias": FieldExigency,
			"descripcion del articulo que aplica":              FieldExigency,
			"descripcion articulo exigencias":                  FieldExigency,
			"exigencias":                                       FieldExigency,
		},
		Hazards: []HazardCategory{
			{Key: "trabajadores_independientes", Keywords: []string{
				"independiente", "contratista", "prestador de servicio",
				"trabajador independiente", "contrato de prestacion",
			}},
			{Key: "teletrabajo", Keywords: []string{
				"teletrabajo", "trabajo remoto", "trabajo en casa",
				"trabajo a distancia", "home office",
			}},
			{Key: "trabajo_alturas", Keywords: []string{
				"altura", "alturas", "trabajo en altura", "caida",
				"andamios", "escaleras", "plataformas elevadas",
			}},
			{Key: "espacios_confinados", Keywords: []string{
				"espacio confinado", "espacios confinados",
				"atmosfera peligrosa", "tanque", "silo",
			}},
			{Key: "trabajo_caliente", Keywords: []string{
				"trabajo caliente", "soldadura", "corte con llama",
				"esmerilado", "oxicorte",
			}},
			{Key: "sustancias_quimicas", Keywords: []string{
				"quimico", "sustancia quimica", "sustancia peligrosa",
				"toxico", "corrosivo", "inflamable", "sga", "fds",
			}},
			{Key: "radiaciones", Keywords: []string{
				"radiacion", "ionizante", "no ionizante",
				"rayos x", "ultravioleta", "laser",
			}},
			{Key: "trabajo_nocturno", Keywords: []string{
				"nocturno", "jornada nocturna", "turno de noche",
			}},
			{Key: "menores_edad", Keywords: []string{
				"menor de edad", "menores", "adolescente",
				"trabajo infantil", "menor trabajador",
			}},
			{Key: "mujeres_embarazadas", Keywords: []string{
				"embarazada", "embarazo", "maternidad", "lactancia",
				"gestante", "licencia de maternidad",
			}},
			{Key: "conductores", Keywords: []string{
				"conductor", "vehiculo", "transporte",
				"conduccion", "seguridad vial", "pesv",
			}},
			{Key: "manipulacion_alimentos", Keywords: []string{
				"alimento", "manipulacion de alimentos", "inocuidad",
				"bpm", "haccp", "manipulador",
			}},
			{Key: "maquinaria_pesada", Keywords: []string{
				"maquinaria pesada", "montacargas", "grua",
				"retroexcavadora", "equipos moviles",
			}},
			{Key: "riesgo_electrico", Keywords: []string{
				"electrico", "electricidad", "tension",
				"alta tension", "baja tension", "retie",
			}},
			{Key: "riesgo_biologico", Keywords: []string{
				"biologico", "bioseguridad", "microorganismo",
				"patogeno", "infeccioso", "sangre", "fluidos corporales",
			}},
			{Key: "trabajo_excavaciones", Keywords: []string{
				"excavacion", "zanja", "tunel",
				"movimiento de tierra", "demolicion",
			}},
			{Key: "trabajo_administrativo", Keywords: []string{
				"administrativo", "oficina", "pantalla de visualizacion",
				"videoterminales", "ergonomia", "sedentarismo", "postura",
				"escritorio", "computador", "trabajo de oficina",
			}},
		},
		AllSectorsTokens: []string{"todos", "sector"},
	}
}
