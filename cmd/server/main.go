package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"promptvault/internal/auth"
	"promptvault/internal/config"
	"promptvault/internal/domain/services"
	"promptvault/internal/handler"
	"promptvault/internal/middleware"
	"promptvault/internal/repository/postgres"
	postgresVault "promptvault/internal/repository/postgres/vault"
	"promptvault/internal/service"
	serviceAuth "promptvault/internal/service/auth"
	serviceVault "promptvault/internal/service/vault"
	"promptvault/internal/telemetry"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the OTel log bridge has a provider to write to
	providers, err := telemetry.Setup(ctx, cfg.OTel)
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := telemetry.NewLogger(cfg, logOutput)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"otel", cfg.OTel.Enabled(),
	)

	// Session tokens are optional; without a JWKS URL only API keys work
	var verifier auth.TokenVerifier
	if cfg.Auth.JWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(ctx, cfg.Auth.JWKSURL, cfg.Auth.Issuer, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
	} else {
		logger.Warn("AUTH_JWKS_URL not set, session tokens will be rejected")
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if cfg.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("schema ensured")
	}

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	orgRepo := postgres.NewOrganizationRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	collectionRepo := postgresVault.NewCollectionRepository(repoConfig)
	promptRepo := postgresVault.NewPromptRepository(repoConfig)
	versionRepo := postgresVault.NewVersionRepository(repoConfig)
	commentRepo := postgresVault.NewCommentRepository(repoConfig)
	favoriteRepo := postgresVault.NewFavoriteRepository(repoConfig)
	tagRepo := postgresVault.NewTagRepository(repoConfig)
	categoryRepo := postgresVault.NewCategoryRepository(repoConfig)
	apiKeyRepo := postgresVault.NewAPIKeyRepository(repoConfig)
	activityRepo := postgresVault.NewActivityRepository(repoConfig)

	// Services
	var directory services.OrganizationDirectory = auth.StaticDirectory{}
	if cfg.WorkOS.Enabled() {
		directory = auth.NewWorkOSDirectory(cfg.WorkOS.APIKey, logger)
	}
	tenantService := service.NewTenantService(userRepo, orgRepo, directory, txManager, logger)

	authorizer := serviceAuth.NewTenantAuthorizer(collectionRepo, promptRepo, categoryRepo, tagRepo, apiKeyRepo)
	activity := serviceVault.NewActivityRecorder(activityRepo, logger)

	tagService := serviceVault.NewTagService(tagRepo, txManager, authorizer, activity, logger)
	categoryService := serviceVault.NewCategoryService(categoryRepo, txManager, authorizer, activity, logger)
	collectionService := serviceVault.NewCollectionService(collectionRepo, txManager, authorizer, activity, logger)
	promptService := serviceVault.NewPromptService(
		promptRepo, versionRepo, commentRepo, tagRepo, tagService, txManager, authorizer, activity, logger,
	)
	commentService := serviceVault.NewCommentService(commentRepo, userRepo, txManager, authorizer, activity, logger)
	favoriteService := serviceVault.NewFavoriteService(promptRepo, favoriteRepo, tagRepo, txManager, authorizer, activity, logger)
	apiKeyService := serviceVault.NewAPIKeyService(apiKeyRepo, orgRepo, txManager, authorizer, activity, cfg.Auth.APIKeyPrefix, logger)

	mux := handler.NewRouter(handler.Services{
		Tenants:     tenantService,
		Categories:  categoryService,
		Collections: collectionService,
		Tags:        tagService,
		Prompts:     promptService,
		Comments:    commentService,
		Favorites:   favoriteService,
		APIKeys:     apiKeyService,
	}, logger, cfg.IsDevelopment())

	authenticator := middleware.NewAuthenticator(verifier, tenantService, apiKeyService, cfg.Auth.APIKeyPrefix, logger)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Tracing → Logging → Auth → Routes
	h = authenticator.Middleware(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Tracing(mux)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("server failed", "error", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
