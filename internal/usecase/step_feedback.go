package usecase

import "github.com/Montinou/stratixV2-sub007/internal/domain"

// Canned feedback per step, chosen by branching on one discriminant field.
// Presentation glue only: the wizard shows these verbatim after a valid
// submission.

// feedbackTable maps (step, discriminant value) to a message
type feedbackTable struct {
	Discriminant string
	Messages     map[string]string
	Default      string
}

var stepFeedback = map[int]feedbackTable{
	1: {
		Discriminant: "experience_with_okr",
		Messages: map[string]string{
			"none":         "¡Perfecto para empezar! Los OKRs te ayudarán a enfocar tu equipo en lo que de verdad importa.",
			"basic":        "Buen punto de partida. Vamos a reforzar lo que ya sabés con una estructura clara.",
			"intermediate": "Con tu experiencia, vas a aprovechar las funciones avanzadas desde el primer día.",
			"advanced":     "Excelente. Configuremos el espacio para que refleje tu práctica actual de OKRs.",
		},
		Default: "Gracias por contarnos sobre vos. Sigamos con tu empresa.",
	},
	2: {
		Discriminant: "company_size",
		Messages: map[string]string{
			"1-10":    "En equipos chicos los OKRs alinean rápido: pocos objetivos, mucho foco.",
			"11-50":   "Tu empresa está en el tamaño ideal para instalar OKRs sin burocracia.",
			"51-200":  "Con esta escala, los OKRs en cascada por equipo van a ser clave.",
			"201-500": "Para una organización de este tamaño, recomendamos OKRs por área con revisión trimestral.",
			"500+":    "En empresas grandes, la visibilidad cruzada de OKRs es el mayor beneficio.",
		},
		Default: "Registramos los datos de tu empresa. Ahora definamos tu primer objetivo.",
	},
	3: {
		Default: "¡Tu primer objetivo quedó registrado! Después vas a poder sumar iniciativas y actividades.",
	},
	4: {
		Discriminant: "ai_assistance_level",
		Messages: map[string]string{
			"minimal":  "Entendido: la IA solo va a sugerir cuando la invoques explícitamente.",
			"moderate": "Buen balance: la IA va a proponer mejoras sin interrumpir tu flujo.",
			"full":     "Activamos la asistencia completa: redacción, sugerencias y análisis automáticos.",
		},
		Default: "Preferencias guardadas. Un paso más y terminamos.",
	},
	5: {
		Default: "¡Listo! Tu espacio de trabajo quedó configurado.",
	},
}

const invalidSubmissionFeedback = "Revisá los campos marcados y volvé a enviar el paso."

// FeedbackFor picks the canned message for a step submission. Invalid
// submissions always get the fix-your-fields message.
func FeedbackFor(stepNumber int, data domain.StepData, validation domain.ValidationResult) string {
	if !validation.IsValid {
		return invalidSubmissionFeedback
	}

	table, ok := stepFeedback[stepNumber]
	if !ok {
		return ""
	}

	if table.Discriminant != "" {
		if msg, ok := table.Messages[stringField(data, table.Discriminant)]; ok {
			return msg
		}
	}
	return table.Default
}
