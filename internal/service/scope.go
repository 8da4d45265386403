package service

import "strings"

// scopeKeywords is the academic vocabulary a request must touch before any paid generation call.
var scopeKeywords = []string{
	"universidad", "campus", "investig", "tesis", "curso", "clase",
	"docente", "profesor", "estudiante", "académ", "investigación",
	"seminario", "congreso", "publicación", "artículo", "facultad",
	"departamento", "aniversario", "celebración", "retiro", "admisión",
	"inscripción", "matrícula", "convocatoria", "examen", "grado", "ficct",
}

const outOfScopeMessage = "Este asistente solo genera contenido académico/universitario."

// AdmitScope reports whether text mentions at least one academic keyword, ignoring case.
func AdmitScope(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, k := range scopeKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
