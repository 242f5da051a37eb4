package domain

import "context"

// AITone adjusts how the enhancement rewrites text
type AITone string

const (
	ToneProfessional AITone = "professional"
	ToneConcise      AITone = "concise"
	ToneInspiring    AITone = "inspiring"
)

// ValidAITones returns all valid tones
func ValidAITones() []AITone {
	return []AITone{ToneProfessional, ToneConcise, ToneInspiring}
}

// IsValid checks if the tone is valid
func (t AITone) IsValid() bool {
	for _, valid := range ValidAITones() {
		if t == valid {
			return true
		}
	}
	return false
}

type EnhanceTextRequest struct {
	Text    string `json:"text" validate:"required,min=3,max=4000"`
	Tone    string `json:"tone" validate:"omitempty"`
	Context string `json:"context" validate:"omitempty,max=2000"`
}

// EnhanceTextResult reports the improved text and whether the AI service
// contributed or the deterministic path answered alone
type EnhanceTextResult struct {
	Original string `json:"original"`
	Enhanced string `json:"enhanced"`
	AIUsed   bool   `json:"ai_used"`
}

type SuggestObjectiveRequest struct {
	Topic   string `json:"topic" validate:"required,min=3,max=500"`
	Quarter string `json:"quarter" validate:"omitempty,valid_quarter"`
}

// ObjectiveSuggestion is a draft objective the user can edit before saving
type ObjectiveSuggestion struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	SuccessMetric string `json:"success_metric"`
	AIUsed        bool   `json:"ai_used"`
}

type AIUsecase interface {
	EnhanceText(ctx context.Context, userID string, req *EnhanceTextRequest) (*EnhanceTextResult, error)
	SuggestObjective(ctx context.Context, userID string, req *SuggestObjectiveRequest) (*ObjectiveSuggestion, error)
	Health(ctx context.Context) error
}
