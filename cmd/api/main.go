package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Montinou/stratixV2-sub007/config"
	_ "github.com/Montinou/stratixV2-sub007/docs" // Important for Swagger
	v1 "github.com/Montinou/stratixV2-sub007/internal/delivery/http/v1"
	"github.com/Montinou/stratixV2-sub007/internal/repository/postgres"
	"github.com/Montinou/stratixV2-sub007/internal/usecase"
	aiclient "github.com/Montinou/stratixV2-sub007/pkg/ai"
	"github.com/Montinou/stratixV2-sub007/pkg/auth"
	"github.com/Montinou/stratixV2-sub007/pkg/database"
	"github.com/Montinou/stratixV2-sub007/pkg/email"
	"github.com/Montinou/stratixV2-sub007/pkg/logger"
	"github.com/Montinou/stratixV2-sub007/pkg/redis"
	"github.com/Montinou/stratixV2-sub007/pkg/telemetry"
	"github.com/Montinou/stratixV2-sub007/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// @title           Stratix OKR API
// @version         1.0
// @description     Multi-tenant OKR platform with guided onboarding, built with Clean Architecture.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting stratix backend", "port", cfg.Port, "env", cfg.Environment)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	rlsPool := database.NewRLSPool(dbPool)

	// 4. Setup Redis (optional; rate limiting falls back to in-memory)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, continuing without it", "error", err)
		}
		defer redis.Close()
	}

	// 5. Setup Telemetry
	events, err := telemetry.New(telemetry.Options{
		ServiceName: "stratix-api",
		RedisClient: redis.Client(),
		Stream:      cfg.TelemetryStream,
		StreamMax:   cfg.TelemetryStreamMaxLen,
	})
	if err != nil {
		logger.Log.Warn("Telemetry init failed, events disabled", "error", err)
		events = telemetry.Nop()
	}

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - invitation emails will be skipped")
	}

	// 7. Setup AI Client (nil generator keeps the deterministic path working)
	var generator aiclient.TextGenerator
	if cfg.GeminiAPIKey != "" {
		client, err := aiclient.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Log.Warn("Gemini client init failed, using heuristic fallback", "error", err)
		} else {
			generator = client
			defer client.Close()
		}
	}

	// 8. Setup Repositories
	onboardingRepo := postgres.NewOnboardingRepository(rlsPool)
	profileRepo := postgres.NewProfileRepository(rlsPool)
	companyRepo := postgres.NewCompanyRepository(rlsPool)
	objectiveRepo := postgres.NewObjectiveRepository(rlsPool)
	initiativeRepo := postgres.NewInitiativeRepository(rlsPool)
	activityRepo := postgres.NewActivityRepository(rlsPool)
	invitationRepo := postgres.NewInvitationRepository(rlsPool)
	analyticsRepo := postgres.NewAnalyticsRepository(rlsPool)

	// 9. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)

	aiUC := usecase.NewAIUsecase(generator, redis.Client(), validate, cfg.RateLimitWindowSeconds, cfg.RateLimitAIThreshold)
	onboardingUC := usecase.NewOnboardingUsecase(onboardingRepo, profileRepo, companyRepo, objectiveRepo, aiUC, events, validate)
	profileUC := usecase.NewProfileUsecase(profileRepo, validate)
	companyUC := usecase.NewCompanyUsecase(companyRepo, profileRepo, validate)
	objectiveUC := usecase.NewObjectiveUsecase(objectiveRepo, profileRepo, validate)
	initiativeUC := usecase.NewInitiativeUsecase(initiativeRepo, objectiveRepo, profileRepo, validate)
	activityUC := usecase.NewActivityUsecase(activityRepo, initiativeRepo, objectiveRepo, validate)
	invitationUC := usecase.NewInvitationUsecase(invitationRepo, profileRepo, companyRepo, emailService, validate)
	analyticsUC := usecase.NewAnalyticsUsecase(analyticsRepo, profileRepo)
	healthUC := usecase.NewHealthUsecase(dbPool, redis.Client())

	// 10. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.AuthJWKSUrl)

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		OnboardingUC: onboardingUC,
		ProfileUC:    profileUC,
		CompanyUC:    companyUC,
		ObjectiveUC:  objectiveUC,
		InitiativeUC: initiativeUC,
		ActivityUC:   activityUC,
		InvitationUC: invitationUC,
		AnalyticsUC:  analyticsUC,
		AIUC:         aiUC,
		HealthUC:     healthUC,
		JWKSProvider: jwksProvider,
		Config:       cfg,
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
