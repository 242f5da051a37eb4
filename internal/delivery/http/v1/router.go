package v1

import (
	"net/http"
	"time"

	"github.com/Montinou/stratixV2-sub007/config"
	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/middleware"
	"github.com/Montinou/stratixV2-sub007/internal/delivery/http/response"
	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/internal/usecase"
	"github.com/Montinou/stratixV2-sub007/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	OnboardingUC domain.OnboardingUsecase
	ProfileUC    domain.ProfileUsecase
	CompanyUC    domain.CompanyUsecase
	ObjectiveUC  domain.ObjectiveUsecase
	InitiativeUC domain.InitiativeUsecase
	ActivityUC   domain.ActivityUsecase
	InvitationUC domain.InvitationUsecase
	AnalyticsUC  domain.AnalyticsUsecase
	AIUC         domain.AIUsecase
	HealthUC     usecase.HealthUsecase
	JWKSProvider *auth.Provider
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, window)))

	v1 := r.Group("/api/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		result := deps.HealthUC.Check(c.Request.Context())
		if result["status"] != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "Servicio degradado", result)
			return
		}
		response.Success(c, http.StatusOK, "Estado del servicio", result)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.ProfileUC))
	{
		NewOnboardingHandler(protected, deps.OnboardingUC)
		NewProfileHandler(protected, deps.ProfileUC)
		NewCompanyHandler(protected, deps.CompanyUC, deps.InvitationUC)
		NewObjectiveHandler(protected, deps.ObjectiveUC, deps.InitiativeUC)
		NewInitiativeHandler(protected, deps.InitiativeUC, deps.ActivityUC)
		NewActivityHandler(protected, deps.ActivityUC)
		NewInvitationHandler(protected, deps.InvitationUC)
		NewAnalyticsHandler(protected, deps.AnalyticsUC)

		aiLimit := middleware.RateLimitMiddleware(middleware.AIRateLimitConfig(deps.Config.RateLimitAIThreshold, window))
		NewAIHandler(protected, deps.AIUC, aiLimit)
	}

	return r
}
