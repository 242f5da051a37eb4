package v1

import (
	"net/http"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(r *gin.RouterGroup, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	profiles := r.Group("/profiles")
	{
		profiles.GET("/me", handler.GetMe)
		profiles.PUT("/me", handler.UpdateMe)
		profiles.GET("/:id", handler.Get)
		profiles.PUT("/:id/role", handler.AssignRole)
	}
}

// GetMe godoc
// @Summary      Get the authenticated user's profile
// @Tags         profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      401  {object}  response.Response
// @Router       /profiles/me [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	profile, err := h.profileUC.GetProfile(principalContext(c), userID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Perfil", profile)
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	profile, err := h.profileUC.UpdateProfile(principalContext(c), userID, userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Perfil actualizado", profile)
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	profile, err := h.profileUC.GetProfile(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Perfil", profile)
}

// AssignRole godoc
// @Summary      Change a member's role
// @Description  Corporativo only; target must belong to the same company
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Profile ID"
// @Param        request  body      object{role=string}  true  "New role"
// @Success      200      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /profiles/{id}/role [put]
// @Security     BearerAuth
func (h *ProfileHandler) AssignRole(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	if err := h.profileUC.AssignRole(principalContext(c), userID, c.Param("id"), domain.ProfileRole(req.Role)); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Rol asignado", nil)
}
