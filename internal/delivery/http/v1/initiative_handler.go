package v1

import (
	"net/http"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type InitiativeHandler struct {
	initiativeUC domain.InitiativeUsecase
	activityUC   domain.ActivityUsecase
}

func NewInitiativeHandler(r *gin.RouterGroup, initiativeUC domain.InitiativeUsecase, activityUC domain.ActivityUsecase) {
	handler := &InitiativeHandler{initiativeUC: initiativeUC, activityUC: activityUC}

	initiatives := r.Group("/initiatives")
	{
		initiatives.POST("", handler.Create)
		initiatives.GET("/:id", handler.Get)
		initiatives.PUT("/:id", handler.Update)
		initiatives.DELETE("/:id", handler.Delete)
		initiatives.GET("/:id/activities", handler.ListActivities)
	}
}

func (h *InitiativeHandler) Create(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.CreateInitiativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	initiative, err := h.initiativeUC.CreateInitiative(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Iniciativa creada", initiative)
}

func (h *InitiativeHandler) Get(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	initiative, err := h.initiativeUC.GetInitiative(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Iniciativa", initiative)
}

func (h *InitiativeHandler) Update(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.UpdateInitiativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	initiative, err := h.initiativeUC.UpdateInitiative(principalContext(c), userID, c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Iniciativa actualizada", initiative)
}

func (h *InitiativeHandler) Delete(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.initiativeUC.DeleteInitiative(principalContext(c), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Iniciativa eliminada", nil)
}

func (h *InitiativeHandler) ListActivities(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	activities, err := h.activityUC.ListByInitiative(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Actividades de la iniciativa", activities)
}
