package v1

import (
	"net/http"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityUC domain.ActivityUsecase
}

func NewActivityHandler(r *gin.RouterGroup, activityUC domain.ActivityUsecase) {
	handler := &ActivityHandler{activityUC: activityUC}

	activities := r.Group("/activities")
	{
		activities.POST("", handler.Create)
		activities.PUT("/:id", handler.Update)
		activities.DELETE("/:id", handler.Delete)
	}
}

func (h *ActivityHandler) Create(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	activity, err := h.activityUC.CreateActivity(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Actividad creada", activity)
}

func (h *ActivityHandler) Update(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	activity, err := h.activityUC.UpdateActivity(principalContext(c), userID, c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Actividad actualizada", activity)
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.activityUC.DeleteActivity(principalContext(c), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Actividad eliminada", nil)
}
