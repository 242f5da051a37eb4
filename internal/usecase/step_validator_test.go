package usecase_test

import (
	"testing"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func validStepData(step int) domain.StepData {
	switch step {
	case 1:
		return domain.StepData{
			"full_name":           "Ana García",
			"job_title":           "Head of Product",
			"experience_with_okr": "basic",
			"primary_goal":        "Alinear los equipos de producto",
			"urgency_level":       "high",
		}
	case 2:
		return domain.StepData{
			"company_name": "Acme SA",
			"company_size": "11-50",
			"description":  "Plataforma de logística",
			"country":      "Argentina",
			"website":      "https://acme.example",
		}
	case 3:
		return domain.StepData{
			"objective_title":       "Reducir el churn mensual",
			"objective_description": "Bajar el churn del 5% al 3%",
			"target_quarter":        "2026-Q4",
			"success_metric":        "Churn mensual <= 3%",
		}
	case 4:
		return domain.StepData{
			"ai_assistance_level":    "moderate",
			"notification_frequency": "weekly",
		}
	case 5:
		return domain.StepData{
			"confirmed": "true",
		}
	}
	return domain.StepData{}
}

func TestValidateStepAcceptsCompletePayloads(t *testing.T) {
	for step := 1; step <= 5; step++ {
		result := usecase.ValidateStep(step, validStepData(step))
		assert.True(t, result.IsValid, "step %d should validate", step)
		assert.Empty(t, result.Errors, "step %d should carry no errors", step)
	}
}

func TestValidateStepIsDeterministic(t *testing.T) {
	data := validStepData(1)
	delete(data, "full_name")
	delete(data, "urgency_level")

	first := usecase.ValidateStep(1, data)
	second := usecase.ValidateStep(1, data)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		"El campo full_name es obligatorio",
		"El campo urgency_level es obligatorio",
	}, first.Errors)
}

func TestValidateStepFlagsEachMissingField(t *testing.T) {
	required := map[int][]string{
		1: {"full_name", "job_title", "experience_with_okr", "primary_goal", "urgency_level"},
		2: {"company_name", "company_size", "description", "country"},
		3: {"objective_title", "objective_description", "target_quarter", "success_metric"},
		4: {"ai_assistance_level", "notification_frequency"},
		5: {"confirmed"},
	}

	for step, fields := range required {
		for _, field := range fields {
			data := validStepData(step)
			delete(data, field)

			result := usecase.ValidateStep(step, data)
			assert.False(t, result.IsValid, "step %d without %s should fail", step, field)
			assert.Len(t, result.Errors, 1)
			assert.Equal(t, "El campo "+field+" es obligatorio", result.Errors[0])
		}
	}
}

func TestValidateStepRejectsBadEnumValues(t *testing.T) {
	data := validStepData(1)
	data["experience_with_okr"] = "expert"

	result := usecase.ValidateStep(1, data)
	assert.False(t, result.IsValid)
	assert.Equal(t,
		[]string{"experience_with_okr debe ser uno de: none, basic, intermediate, advanced"},
		result.Errors)
}

func TestValidateStepTreatsWhitespaceAsMissing(t *testing.T) {
	data := validStepData(2)
	data["company_name"] = "   "

	result := usecase.ValidateStep(2, data)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "El campo company_name es obligatorio")
}

func TestValidateStepTreatsNonStringAsMissing(t *testing.T) {
	data := validStepData(1)
	data["full_name"] = 42

	result := usecase.ValidateStep(1, data)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "El campo full_name es obligatorio")
}

func TestValidateStepWebsiteSchemeIsWarningOnly(t *testing.T) {
	data := validStepData(2)
	data["website"] = "acme.example"

	result := usecase.ValidateStep(2, data)
	assert.True(t, result.IsValid)
	assert.Equal(t, []string{"El sitio web debe comenzar con http:// o https://"}, result.Warnings)
}

func TestValidateStepUnknownStep(t *testing.T) {
	result := usecase.ValidateStep(9, domain.StepData{})
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"No existe un esquema de validación para el paso 9"}, result.Errors)
}

func TestValidateStepFinalConfirmation(t *testing.T) {
	result := usecase.ValidateStep(5, domain.StepData{"confirmed": "false"})
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"Debe confirmar que la información es correcta"}, result.Errors)

	result = usecase.ValidateStep(5, domain.StepData{"confirmed": "true"})
	assert.True(t, result.IsValid)
}

func TestFeedbackForBranchesOnDiscriminant(t *testing.T) {
	ok := domain.ValidationResult{IsValid: true, Errors: []string{}, Warnings: []string{}}

	beginner := usecase.FeedbackFor(1, domain.StepData{"experience_with_okr": "none"}, ok)
	assert.Equal(t,
		"¡Perfecto para empezar! Los OKRs te ayudarán a enfocar tu equipo en lo que de verdad importa.",
		beginner)

	advanced := usecase.FeedbackFor(1, domain.StepData{"experience_with_okr": "advanced"}, ok)
	assert.NotEqual(t, beginner, advanced)

	unknown := usecase.FeedbackFor(1, domain.StepData{"experience_with_okr": "other"}, ok)
	assert.Equal(t, "Gracias por contarnos sobre vos. Sigamos con tu empresa.", unknown)
}

func TestFeedbackForInvalidSubmission(t *testing.T) {
	bad := domain.ValidationResult{IsValid: false, Errors: []string{"x"}, Warnings: []string{}}
	msg := usecase.FeedbackFor(1, domain.StepData{"experience_with_okr": "none"}, bad)
	assert.Equal(t, "Revisá los campos marcados y volvé a enviar el paso.", msg)
}
