package v1

import (
	"net/http"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type AIHandler struct {
	aiUC domain.AIUsecase
}

func NewAIHandler(r *gin.RouterGroup, aiUC domain.AIUsecase, rateLimit gin.HandlerFunc) {
	handler := &AIHandler{aiUC: aiUC}

	ai := r.Group("/ai")
	if rateLimit != nil {
		ai.Use(rateLimit)
	}
	{
		ai.POST("/enhance-text", handler.EnhanceText)
		ai.POST("/suggest-objective", handler.SuggestObjective)
		ai.GET("/health", handler.Health)
	}
}

// EnhanceText godoc
// @Summary      Improve free text with the writing assistant
// @Description  Rewrites the text in the requested tone. Always answers, even when the AI provider is down.
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request  body      domain.EnhanceTextRequest  true  "Text and tone"
// @Success      200      {object}  response.Response{data=domain.EnhanceTextResult}
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /ai/enhance-text [post]
// @Security     BearerAuth
func (h *AIHandler) EnhanceText(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.EnhanceTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	result, err := h.aiUC.EnhanceText(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Texto mejorado", result)
}

// SuggestObjective godoc
// @Summary      Draft an objective from a topic
// @Tags         ai
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SuggestObjectiveRequest  true  "Topic and quarter"
// @Success      200      {object}  response.Response{data=domain.ObjectiveSuggestion}
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /ai/suggest-objective [post]
// @Security     BearerAuth
func (h *AIHandler) SuggestObjective(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.SuggestObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	suggestion, err := h.aiUC.SuggestObjective(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Sugerencia de objetivo", suggestion)
}

func (h *AIHandler) Health(c *gin.Context) {
	if err := h.aiUC.Health(principalContext(c)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Asistente disponible", nil)
}
