package usecase

import (
	"fmt"
	"strings"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
)

// Step validation is a single declarative table keyed by step number. Every
// user-facing message is Spanish; handlers return them verbatim so the
// wording here is canonical.

// stepSchema declares what one wizard step requires
type stepSchema struct {
	Name     string
	Required []string
	Enums    map[string][]string
	// Checks run after the required/enum pass and may append warnings
	Checks []func(data domain.StepData, result *domain.ValidationResult)
}

var stepSchemas = map[int]stepSchema{
	1: {
		Name:     "personal_info",
		Required: []string{"full_name", "job_title", "experience_with_okr", "primary_goal", "urgency_level"},
		Enums: map[string][]string{
			"experience_with_okr": {"none", "basic", "intermediate", "advanced"},
			"urgency_level":       {"low", "medium", "high"},
		},
	},
	2: {
		Name:     "company_info",
		Required: []string{"company_name", "company_size", "description", "country"},
		Enums: map[string][]string{
			"company_size": {"1-10", "11-50", "51-200", "201-500", "500+"},
		},
		Checks: []func(domain.StepData, *domain.ValidationResult){checkWebsiteScheme},
	},
	3: {
		Name:     "first_objective",
		Required: []string{"objective_title", "objective_description", "target_quarter", "success_metric"},
	},
	4: {
		Name:     "preferences",
		Required: []string{"ai_assistance_level", "notification_frequency"},
		Enums: map[string][]string{
			"ai_assistance_level":    {"minimal", "moderate", "full"},
			"notification_frequency": {"daily", "weekly", "monthly"},
		},
	},
	5: {
		Name:     "review",
		Required: []string{"confirmed"},
		Checks:   []func(domain.StepData, *domain.ValidationResult){checkReviewConfirmed},
	},
}

// StepName returns the canonical name for a step number, or "" if unknown
func StepName(stepNumber int) string {
	return stepSchemas[stepNumber].Name
}

// ValidateStep checks a free-form step payload against the declared schema.
// Pure function: no side effects, deterministic output ordering (required
// fields first, in declaration order, then enum checks, then extra checks).
func ValidateStep(stepNumber int, data domain.StepData) domain.ValidationResult {
	result := domain.ValidationResult{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	schema, ok := stepSchemas[stepNumber]
	if !ok {
		result.IsValid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("No existe un esquema de validación para el paso %d", stepNumber))
		return result
	}

	for _, field := range schema.Required {
		if stringField(data, field) == "" {
			result.IsValid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("El campo %s es obligatorio", field))
		}
	}

	for _, field := range schema.Required {
		options, hasEnum := schema.Enums[field]
		if !hasEnum {
			continue
		}
		value := stringField(data, field)
		if value == "" {
			continue // already reported as missing
		}
		if !contains(options, value) {
			result.IsValid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s debe ser uno de: %s", field, strings.Join(options, ", ")))
		}
	}

	for _, check := range schema.Checks {
		check(data, &result)
	}

	return result
}

// checkWebsiteScheme flags a website without an http(s) scheme. Warning only:
// the submission still passes.
func checkWebsiteScheme(data domain.StepData, result *domain.ValidationResult) {
	website := stringField(data, "website")
	if website == "" {
		return
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		result.Warnings = append(result.Warnings,
			"El sitio web debe comenzar con http:// o https://")
	}
}

// checkReviewConfirmed requires the literal string "true" on the final step
func checkReviewConfirmed(data domain.StepData, result *domain.ValidationResult) {
	confirmed := stringField(data, "confirmed")
	if confirmed == "" {
		return // already reported as missing
	}
	if confirmed != "true" {
		result.IsValid = false
		result.Errors = append(result.Errors,
			"Debe confirmar que la información es correcta")
	}
}

// stringField extracts a trimmed string value; non-string values read as empty
func stringField(data domain.StepData, field string) string {
	if data == nil {
		return ""
	}
	value, ok := data[field].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
