package v1

import (
	"net/http"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type InvitationHandler struct {
	invitationUC domain.InvitationUsecase
}

func NewInvitationHandler(r *gin.RouterGroup, invitationUC domain.InvitationUsecase) {
	handler := &InvitationHandler{invitationUC: invitationUC}

	invitations := r.Group("/invitations")
	{
		invitations.POST("", handler.Create)
		invitations.POST("/accept", handler.Accept)
		invitations.DELETE("/:id", handler.Revoke)
	}
}

// Create godoc
// @Summary      Invite a member by email
// @Description  Sends a 72h single-use invitation link. Email delivery is fire-and-forget.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateInvitationRequest  true  "Invitation data"
// @Success      201      {object}  response.Response{data=domain.Invitation}
// @Failure      403      {object}  response.Response
// @Router       /invitations [post]
// @Security     BearerAuth
func (h *InvitationHandler) Create(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	invitation, err := h.invitationUC.CreateInvitation(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Invitación enviada", invitation)
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	invitation, err := h.invitationUC.AcceptInvitation(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Invitación aceptada", invitation)
}

func (h *InvitationHandler) Revoke(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	if err := h.invitationUC.RevokeInvitation(principalContext(c), userID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Invitación revocada", nil)
}
