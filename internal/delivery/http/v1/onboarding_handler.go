package v1

import (
	"net/http"
	"strconv"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type OnboardingHandler struct {
	onboardingUC domain.OnboardingUsecase
}

func NewOnboardingHandler(r *gin.RouterGroup, onboardingUC domain.OnboardingUsecase) {
	handler := &OnboardingHandler{onboardingUC: onboardingUC}

	onboarding := r.Group("/onboarding")
	{
		onboarding.POST("/session", handler.StartSession)
		onboarding.PUT("/progress", handler.SubmitStep)
		onboarding.GET("/progress", handler.GetProgress)
		onboarding.GET("/status", handler.GetStatus)
		onboarding.DELETE("/session/:id", handler.AbandonSession)
		onboarding.POST("/session/:id/reactivate", handler.ReactivateSession)
		onboarding.GET("/suggestions", handler.GetSuggestions)
	}
}

// StartSession godoc
// @Summary      Start or resume an onboarding session
// @Description  Returns the user's active session, or creates one with a 7-day TTL
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request  body      domain.StartSessionRequest  false  "Session options"
// @Success      200      {object}  response.Response{data=domain.OnboardingSession}
// @Failure      401      {object}  response.Response
// @Router       /onboarding/session [post]
// @Security     BearerAuth
func (h *OnboardingHandler) StartSession(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.StartSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
			return
		}
	}

	session, err := h.onboardingUC.StartSession(principalContext(c), userID, req.TotalSteps)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Sesión de onboarding lista", session)
}

// SubmitStep godoc
// @Summary      Submit one wizard step
// @Description  Validates and records a step. Invalid payloads return the validation errors without touching the session.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SubmitStepRequest  true  "Step submission"
// @Success      200      {object}  response.Response{data=domain.SubmitStepResult}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /onboarding/progress [put]
// @Security     BearerAuth
func (h *OnboardingHandler) SubmitStep(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.SubmitStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	result, err := h.onboardingUC.SubmitStep(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	if !result.Validation.IsValid {
		response.Success(c, http.StatusOK, "El paso tiene errores de validación", result)
		return
	}
	response.Success(c, http.StatusOK, "Paso registrado", result)
}

// GetProgress godoc
// @Summary      Get session progress
// @Tags         onboarding
// @Produce      json
// @Param        session_id  query     string  true  "Session ID"
// @Success      200         {object}  response.Response{data=domain.SessionWithProgress}
// @Failure      401         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Router       /onboarding/progress [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetProgress(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, "El parámetro session_id es obligatorio", nil)
		return
	}

	progress, err := h.onboardingUC.GetProgress(principalContext(c), userID, sessionID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Progreso de onboarding", progress)
}

// GetStatus godoc
// @Summary      Get onboarding status
// @Description  Derived status projection for the user's latest session
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.OnboardingStatus}
// @Failure      401  {object}  response.Response
// @Router       /onboarding/status [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetStatus(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	status, err := h.onboardingUC.GetStatus(principalContext(c), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Estado de onboarding", status)
}

// AbandonSession godoc
// @Summary      Abandon a session
// @Tags         onboarding
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /onboarding/session/{id} [delete]
// @Security     BearerAuth
func (h *OnboardingHandler) AbandonSession(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.onboardingUC.AbandonSession(principalContext(c), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Sesión abandonada", nil)
}

// ReactivateSession godoc
// @Summary      Reactivate an abandoned session
// @Tags         onboarding
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.OnboardingSession}
// @Failure      401  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /onboarding/session/{id}/reactivate [post]
// @Security     BearerAuth
func (h *OnboardingHandler) ReactivateSession(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	session, err := h.onboardingUC.ReactivateSession(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Sesión reactivada", session)
}

// GetSuggestions godoc
// @Summary      Smart suggestions for a step
// @Description  Heuristic prefill derived from earlier answers, AI-enhanced when available
// @Tags         onboarding
// @Produce      json
// @Param        session_id   query     string  true  "Session ID"
// @Param        step_number  query     int     true  "Step number"
// @Success      200          {object}  response.Response{data=domain.StepSuggestion}
// @Failure      401          {object}  response.Response
// @Router       /onboarding/suggestions [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetSuggestions(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, "El parámetro session_id es obligatorio", nil)
		return
	}
	stepNumber, err := strconv.Atoi(c.Query("step_number"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "El parámetro step_number debe ser numérico", nil)
		return
	}

	suggestion, err := h.onboardingUC.SuggestStepData(principalContext(c), userID, sessionID, stepNumber)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Sugerencias para el paso", suggestion)
}
