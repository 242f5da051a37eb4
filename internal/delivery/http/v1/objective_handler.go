package v1

import (
	"net/http"
	"strconv"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type ObjectiveHandler struct {
	objectiveUC  domain.ObjectiveUsecase
	initiativeUC domain.InitiativeUsecase
}

func NewObjectiveHandler(r *gin.RouterGroup, objectiveUC domain.ObjectiveUsecase, initiativeUC domain.InitiativeUsecase) {
	handler := &ObjectiveHandler{objectiveUC: objectiveUC, initiativeUC: initiativeUC}

	objectives := r.Group("/objectives")
	{
		objectives.POST("", handler.Create)
		objectives.GET("", handler.ListMine)
		objectives.GET("/:id", handler.Get)
		objectives.PUT("/:id", handler.Update)
		objectives.DELETE("/:id", handler.Delete)
		objectives.GET("/:id/initiatives", handler.ListInitiatives)
	}

	r.GET("/companies/:id/objectives", handler.ListByCompany)
}

// Create godoc
// @Summary      Create an objective
// @Tags         objectives
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateObjectiveRequest  true  "Objective data"
// @Success      201      {object}  response.Response{data=domain.Objective}
// @Failure      400      {object}  response.Response
// @Router       /objectives [post]
// @Security     BearerAuth
func (h *ObjectiveHandler) Create(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.CreateObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	objective, err := h.objectiveUC.CreateObjective(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Objetivo creado", objective)
}

func (h *ObjectiveHandler) ListMine(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	page, pageSize := pagination(c)

	objectives, total, err := h.objectiveUC.ListMyObjectives(principalContext(c), userID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Objetivos", gin.H{
		"items": objectives,
		"total": total,
		"page":  page,
	})
}

func (h *ObjectiveHandler) ListByCompany(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	page, pageSize := pagination(c)

	objectives, total, err := h.objectiveUC.ListCompanyObjectives(principalContext(c), userID, c.Param("id"), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Objetivos de la empresa", gin.H{
		"items": objectives,
		"total": total,
		"page":  page,
	})
}

func (h *ObjectiveHandler) Get(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	objective, err := h.objectiveUC.GetObjective(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Objetivo", objective)
}

func (h *ObjectiveHandler) Update(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.UpdateObjectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	objective, err := h.objectiveUC.UpdateObjective(principalContext(c), userID, c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Objetivo actualizado", objective)
}

func (h *ObjectiveHandler) Delete(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.objectiveUC.DeleteObjective(principalContext(c), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Objetivo eliminado", nil)
}

func (h *ObjectiveHandler) ListInitiatives(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	initiatives, err := h.initiativeUC.ListByObjective(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Iniciativas del objetivo", initiatives)
}

// pagination reads page/page_size query params with defaults
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}
