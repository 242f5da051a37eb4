package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/ai"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
)

// The deterministic template path is the primary implementation; the model is
// a strict enhancement on top. An upstream failure silently degrades to the
// template output, so the wizard keeps working when Gemini is down.

type aiUsecase struct {
	generator  ai.TextGenerator // nil when no API key is configured
	redis      *redis.Client    // nil disables rate limiting
	validate   *validator.Validate
	windowSecs int
	threshold  int
}

func NewAIUsecase(
	generator ai.TextGenerator,
	redisClient *redis.Client,
	validate *validator.Validate,
	windowSecs, threshold int,
) domain.AIUsecase {
	if windowSecs <= 0 {
		windowSecs = 60
	}
	if threshold <= 0 {
		threshold = 20
	}
	return &aiUsecase{
		generator:  generator,
		redis:      redisClient,
		validate:   validate,
		windowSecs: windowSecs,
		threshold:  threshold,
	}
}

// ============================================================================
// Enhance Text
// ============================================================================

func (u *aiUsecase) EnhanceText(ctx context.Context, userID string, req *domain.EnhanceTextRequest) (*domain.EnhanceTextResult, error) {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return nil, apperror.Unauthorized("Usuario no autenticado")
	}
	if ctxUserID != userID {
		return nil, apperror.Forbidden("Solo podés usar el asistente con tu propio usuario")
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	tone := domain.AITone(req.Tone)
	if req.Tone != "" && !tone.IsValid() {
		return nil, apperror.BadRequest("Tono inválido: " + req.Tone)
	}
	if tone == "" {
		tone = domain.ToneProfessional
	}

	if err := u.allowRequest(ctx, userID); err != nil {
		return nil, err
	}

	result := &domain.EnhanceTextResult{
		Original: req.Text,
		Enhanced: templateEnhance(req.Text, tone),
	}

	if u.generator != nil {
		prompt := fmt.Sprintf(
			"Mejorá el siguiente texto de un objetivo OKR. Tono: %s. Respondé solo con el texto mejorado, en español.\n\nTexto: %s",
			toneInstruction(tone), req.Text)
		if req.Context != "" {
			prompt += "\n\nContexto adicional: " + req.Context
		}

		enhanced, err := u.generator.Generate(ctx, enhanceSystemPrompt, prompt)
		if err != nil || strings.TrimSpace(enhanced) == "" {
			slog.Debug("ai enhancement degraded to template", "error", err)
		} else {
			result.Enhanced = strings.TrimSpace(enhanced)
			result.AIUsed = true
		}
	}

	return result, nil
}

// ============================================================================
// Suggest Objective
// ============================================================================

func (u *aiUsecase) SuggestObjective(ctx context.Context, userID string, req *domain.SuggestObjectiveRequest) (*domain.ObjectiveSuggestion, error) {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return nil, apperror.Unauthorized("Usuario no autenticado")
	}
	if ctxUserID != userID {
		return nil, apperror.Forbidden("Solo podés usar el asistente con tu propio usuario")
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	if err := u.allowRequest(ctx, userID); err != nil {
		return nil, err
	}

	quarter := req.Quarter
	if quarter == "" {
		quarter = currentQuarter(time.Now())
	}

	topic := strings.TrimSpace(req.Topic)
	suggestion := &domain.ObjectiveSuggestion{
		Title:         "Mejorar " + topic,
		Description:   fmt.Sprintf("Durante %s el equipo se enfoca en %s, con revisión semanal de avances.", quarter, topic),
		SuccessMetric: fmt.Sprintf("Indicador medible de %s definido y mejorado al cierre de %s", topic, quarter),
	}

	if u.generator != nil {
		prompt := fmt.Sprintf(
			"Proponé un objetivo OKR para el tema %q en el trimestre %s. Respondé en tres líneas: título, descripción y métrica de éxito, en español, sin rótulos.",
			topic, quarter)
		raw, err := u.generator.Generate(ctx, suggestSystemPrompt, prompt)
		if err != nil {
			slog.Debug("ai suggestion degraded to template", "error", err)
		} else if lines := nonEmptyLines(raw); len(lines) >= 3 {
			suggestion.Title = lines[0]
			suggestion.Description = lines[1]
			suggestion.SuccessMetric = lines[2]
			suggestion.AIUsed = true
		}
	}

	return suggestion, nil
}

// Health probes the upstream model. This is the only path that surfaces an
// upstream outage as an error.
func (u *aiUsecase) Health(ctx context.Context) error {
	if u.generator == nil {
		return apperror.New(502, "Servicio de IA no configurado", nil)
	}
	if err := u.generator.Health(ctx); err != nil {
		return apperror.New(502, "Servicio de IA no disponible", err)
	}
	return nil
}

// ============================================================================
// Rate Limiting
// ============================================================================

// allowRequest enforces the per-user fixed window. A missing or failing Redis
// never blocks the request.
func (u *aiUsecase) allowRequest(ctx context.Context, userID string) error {
	if u.redis == nil {
		return nil
	}

	key := "ratelimit:ai:" + userID
	count, err := u.redis.Incr(ctx, key).Result()
	if err != nil {
		slog.Debug("ai rate limit check skipped", "error", err)
		return nil
	}
	if count == 1 {
		u.redis.Expire(ctx, key, time.Duration(u.windowSecs)*time.Second)
	}
	if count > int64(u.threshold) {
		return apperror.New(429, "Demasiadas solicitudes al asistente; esperá un momento", nil)
	}
	return nil
}

// ============================================================================
// Deterministic templates
// ============================================================================

const (
	enhanceSystemPrompt = "Sos un coach de OKRs. Mejorás redacción de objetivos manteniendo el significado original."
	suggestSystemPrompt = "Sos un coach de OKRs. Proponés objetivos concretos, medibles y acotados a un trimestre."
)

func toneInstruction(tone domain.AITone) string {
	switch tone {
	case domain.ToneConcise:
		return "conciso y directo"
	case domain.ToneInspiring:
		return "inspirador y motivador"
	default:
		return "profesional y claro"
	}
}

// templateEnhance is the deterministic fallback rewrite
func templateEnhance(text string, tone domain.AITone) string {
	text = strings.TrimSpace(text)
	switch tone {
	case domain.ToneConcise:
		return text
	case domain.ToneInspiring:
		return text + " — un desafío que va a llevar al equipo al siguiente nivel."
	default:
		return text + " (con responsables y plazos definidos)."
	}
}

func nonEmptyLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
