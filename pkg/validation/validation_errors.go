package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly Spanish labels
var FieldLabels = map[string]string{
	// Company fields
	"Name":        "Nombre",
	"Slug":        "Identificador",
	"Description": "Descripción",
	"Industry":    "Industria",
	"Size":        "Tamaño de empresa",
	"Country":     "País",
	"Website":     "Sitio web",

	// Profile fields
	"FullName":    "Nombre completo",
	"JobTitle":    "Cargo",
	"Email":       "Email",
	"Role":        "Rol",
	"Preferences": "Preferencias",

	// Objective / Initiative / Activity fields
	"Title":         "Título",
	"Quarter":       "Trimestre",
	"Status":        "Estado",
	"SuccessMetric": "Métrica de éxito",
	"Tags":          "Etiquetas",
	"ObjectiveID":   "Objetivo",
	"InitiativeID":  "Iniciativa",
	"AssigneeID":    "Responsable",
	"DueDate":       "Fecha límite",
	"Done":          "Completada",
	"Version":       "Versión",

	// Onboarding fields
	"SessionID":   "Sesión",
	"StepNumber":  "Número de paso",
	"StepData":    "Datos del paso",
	"TotalSteps":  "Total de pasos",
	"Completed":   "Completado",
	"Skipped":     "Omitido",
	"AutoAdvance": "Avance automático",

	// Invitation fields
	"CompanyID": "Empresa",
	"Token":     "Token",

	// AI fields
	"Text":    "Texto",
	"Tone":    "Tono",
	"Context": "Contexto",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var messages []string

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Not a validation error, return generic message
		return []string{err.Error()}
	}

	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}

	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: Es obligatorio", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: Mínimo %s caracteres", label, param)
		}
		return fmt.Sprintf("%s: Mínimo %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: Máximo %s caracteres", label, param)
		}
		return fmt.Sprintf("%s: Máximo %s", label, param)

	case "oneof":
		options := strings.ReplaceAll(param, " ", ", ")
		return fmt.Sprintf("%s: Debe ser uno de: %s", label, options)

	case "email":
		return fmt.Sprintf("%s: Formato de email inválido", label)

	case "url":
		return fmt.Sprintf("%s: Formato de URL inválido", label)

	case "uuid":
		return fmt.Sprintf("%s: Identificador inválido", label)

	case "valid_name":
		return fmt.Sprintf("%s: Solo se permiten letras, espacios y puntuación común (. ' - /)", label)

	case "valid_slug":
		return fmt.Sprintf("%s: Solo minúsculas, números y guiones", label)

	case "valid_quarter":
		return fmt.Sprintf("%s: Formato esperado AAAA-Qn (ej. 2026-Q1)", label)

	case "no_emoji":
		return fmt.Sprintf("%s: No puede contener emojis ni símbolos especiales", label)

	default:
		// Fallback for unknown tags
		return fmt.Sprintf("%s: Validación fallida (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return field
}
