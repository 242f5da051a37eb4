package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // logo uploads may be PNG

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"golang.org/x/image/draw"
)

const (
	maxLogoBytes  = 2 << 20 // 2MB upload cap
	maxLogoPixels = 512     // longest edge after resize
	logoQuality   = 85
)

type companyUsecase struct {
	companies domain.CompanyRepository
	profiles  domain.ProfileRepository
	validate  *validator.Validate
}

func NewCompanyUsecase(
	companies domain.CompanyRepository,
	profiles domain.ProfileRepository,
	validate *validator.Validate,
) domain.CompanyUsecase {
	return &companyUsecase{
		companies: companies,
		profiles:  profiles,
		validate:  validate,
	}
}

func (u *companyUsecase) CreateCompany(ctx context.Context, userID string, req *domain.CreateCompanyRequest) (*domain.Company, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	company := &domain.Company{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Industry:    req.Industry,
		Country:     req.Country,
		Website:     req.Website,
		CreatedBy:   userID,
	}
	if req.Size != nil {
		size := domain.CompanySize(*req.Size)
		if !size.IsValid() {
			return nil, apperror.BadRequest("Tamaño de empresa inválido: " + *req.Size)
		}
		company.Size = &size
	}

	if err := u.companies.Create(ctx, userID, company); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, apperror.Conflict("Ya existe una empresa con ese slug")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to create company: %w", err))
	}

	// The creator becomes the first corporativo member
	if err := u.profiles.SetCompany(ctx, userID, userID, company.ID, domain.RoleCorporativo); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to attach creator: %w", err))
	}

	return company, nil
}

func (u *companyUsecase) GetCompany(ctx context.Context, userID, id string) (*domain.Company, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	company, err := u.companies.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Empresa no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get company: %w", err))
	}
	return company, nil
}

func (u *companyUsecase) UpdateCompany(ctx context.Context, userID, id string, req *domain.UpdateCompanyRequest) (*domain.Company, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	if err := u.requireCorporativo(ctx, userID, id); err != nil {
		return nil, err
	}

	company, err := u.companies.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Empresa no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get company: %w", err))
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Description != nil {
		company.Description = req.Description
	}
	if req.Industry != nil {
		company.Industry = req.Industry
	}
	if req.Size != nil {
		size := domain.CompanySize(*req.Size)
		if !size.IsValid() {
			return nil, apperror.BadRequest("Tamaño de empresa inválido: " + *req.Size)
		}
		company.Size = &size
	}
	if req.Country != nil {
		company.Country = req.Country
	}
	if req.Website != nil {
		company.Website = req.Website
	}
	if req.Settings != nil {
		company.Settings = req.Settings
	}
	company.Version = req.Version

	if err := u.companies.Update(ctx, userID, company); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Conflict("La empresa fue modificada por otra solicitud; recargá y volvé a intentar")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Empresa no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to update company: %w", err))
	}
	return company, nil
}

// UploadLogo validates, downscales and stores the company logo. The image is
// re-encoded as JPEG with the longest edge capped at 512px, then persisted as
// a data URL so no blob storage is needed.
func (u *companyUsecase) UploadLogo(ctx context.Context, userID, id string, data []byte, contentType string) (string, error) {
	if err := requireUser(ctx, userID); err != nil {
		return "", err
	}
	if err := u.requireCorporativo(ctx, userID, id); err != nil {
		return "", err
	}

	if len(data) == 0 {
		return "", apperror.BadRequest("El archivo está vacío")
	}
	if len(data) > maxLogoBytes {
		return "", apperror.BadRequest("El logo no puede superar los 2MB")
	}
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", apperror.BadRequest("Formato no soportado: usá JPEG o PNG")
	}

	resized, err := resizeLogo(data)
	if err != nil {
		return "", apperror.BadRequest("No se pudo procesar la imagen: " + err.Error())
	}

	logoURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resized)
	if err := u.companies.UpdateLogoURL(ctx, userID, id, logoURL); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", apperror.NotFound("Empresa no encontrada")
		}
		return "", apperror.Internal(fmt.Errorf("failed to store logo: %w", err))
	}
	return logoURL, nil
}

func (u *companyUsecase) ListMembers(ctx context.Context, userID, companyID string) ([]domain.CompanyMember, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := u.requireMembership(ctx, userID, companyID); err != nil {
		return nil, err
	}

	members, err := u.companies.ListMembers(ctx, userID, companyID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list members: %w", err))
	}
	return members, nil
}

// requireMembership checks the caller belongs to the company
func (u *companyUsecase) requireMembership(ctx context.Context, userID, companyID string) error {
	profile, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if profile.CompanyID == nil || *profile.CompanyID != companyID {
		return apperror.Forbidden("No pertenecés a esta empresa")
	}
	return nil
}

// requireCorporativo checks the caller is a corporativo member of the company
func (u *companyUsecase) requireCorporativo(ctx context.Context, userID, companyID string) error {
	profile, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if profile.CompanyID == nil || *profile.CompanyID != companyID {
		return apperror.Forbidden("No pertenecés a esta empresa")
	}
	if profile.Role != domain.RoleCorporativo {
		return apperror.Forbidden("Solo un rol corporativo puede hacer esta operación")
	}
	return nil
}

// resizeLogo decodes, downscales with Catmull-Rom and re-encodes as JPEG
func resizeLogo(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxLogoPixels && height <= maxLogoPixels {
		// Already small enough; still re-encode to normalize the format
		return encodeJPEG(src)
	}

	// Preserve aspect ratio, cap the longest edge
	if width > height {
		height = height * maxLogoPixels / width
		width = maxLogoPixels
	} else {
		width = width * maxLogoPixels / height
		height = maxLogoPixels
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return encodeJPEG(dst)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: logoQuality}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
