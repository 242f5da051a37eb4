package v1

import (
	"io"
	"net/http"

	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyUC    domain.CompanyUsecase
	invitationUC domain.InvitationUsecase
}

func NewCompanyHandler(r *gin.RouterGroup, companyUC domain.CompanyUsecase, invitationUC domain.InvitationUsecase) {
	handler := &CompanyHandler{companyUC: companyUC, invitationUC: invitationUC}

	companies := r.Group("/companies")
	{
		companies.POST("", handler.Create)
		companies.GET("/:id", handler.Get)
		companies.PUT("/:id", handler.Update)
		companies.POST("/:id/logo", handler.UploadLogo)
		companies.GET("/:id/members", handler.ListMembers)
		companies.GET("/:id/invitations", handler.ListInvitations)
	}
}

// Create godoc
// @Summary      Create a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreateCompanyRequest  true  "Company data"
// @Success      201      {object}  response.Response{data=domain.Company}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /companies [post]
// @Security     BearerAuth
func (h *CompanyHandler) Create(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	company, err := h.companyUC.CreateCompany(principalContext(c), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Empresa creada", company)
}

func (h *CompanyHandler) Get(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	company, err := h.companyUC.GetCompany(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Empresa", company)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido: "+err.Error(), nil)
		return
	}

	company, err := h.companyUC.UpdateCompany(principalContext(c), userID, c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Empresa actualizada", company)
}

// UploadLogo godoc
// @Summary      Upload the company logo
// @Description  Accepts a JPEG/PNG up to 2MB, stores it resized to max 512px
// @Tags         companies
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Company ID"
// @Param        logo  formData  file    true  "Logo image"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /companies/{id}/logo [post]
// @Security     BearerAuth
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "El archivo logo es obligatorio", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No se pudo leer el archivo", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 4<<20))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No se pudo leer el archivo", nil)
		return
	}

	logoURL, err := h.companyUC.UploadLogo(principalContext(c), userID, c.Param("id"), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Logo actualizado", gin.H{"logo_url": logoURL})
}

func (h *CompanyHandler) ListMembers(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	members, err := h.companyUC.ListMembers(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Miembros de la empresa", members)
}

func (h *CompanyHandler) ListInvitations(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	invitations, err := h.invitationUC.ListCompanyInvitations(principalContext(c), userID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Invitaciones de la empresa", invitations)
}
