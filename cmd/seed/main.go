package main

import (
	"context"
	"flag"
	"log"
	"os"

	"promptvault/internal/auth"
	"promptvault/internal/config"
	"promptvault/internal/domain/models"
	"promptvault/internal/repository/postgres"
	postgresVault "promptvault/internal/repository/postgres/vault"
	"promptvault/internal/seed"
	"promptvault/internal/service"
	serviceAuth "promptvault/internal/service/auth"
	serviceVault "promptvault/internal/service/vault"
	"promptvault/internal/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	file := flag.String("file", "", "YAML seed document (defaults to the built-in starter content)")
	orgID := flag.String("org", "", "External organization id to seed; omit to seed the user's personal workspace")
	userID := flag.String("user", "seed-admin", "External user id the seeded content is attributed to")
	email := flag.String("email", "", "Email recorded for the seed user")
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed content")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProduction() && *dropTables {
		log.Fatalf("BLOCKED: -drop-tables is not allowed in the production environment")
	}

	logger := telemetry.NewLogger(cfg, os.Stdout)

	if *schemaOnly {
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		return
	}

	doc, err := loadDocument(*file)
	if err != nil {
		log.Fatalf("Failed to load seed document: %v", err)
	}

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
	tagRepo := postgresVault.NewTagRepository(repoConfig)
	categoryRepo := postgresVault.NewCategoryRepository(repoConfig)
	apiKeyRepo := postgresVault.NewAPIKeyRepository(repoConfig)

	authorizer := serviceAuth.NewTenantAuthorizer(collectionRepo, promptRepo, categoryRepo, tagRepo, apiKeyRepo)
	activity := serviceVault.NewActivityRecorder(postgresVault.NewActivityRepository(repoConfig), logger)
	tagService := serviceVault.NewTagService(tagRepo, txManager, authorizer, activity, logger)

	seeder := seed.NewSeeder(
		serviceVault.NewCategoryService(categoryRepo, txManager, authorizer, activity, logger),
		tagService,
		serviceVault.NewCollectionService(collectionRepo, txManager, authorizer, activity, logger),
		serviceVault.NewPromptService(
			promptRepo, versionRepo, commentRepo, tagRepo, tagService, txManager, authorizer, activity, logger,
		),
		logger,
	)

	// Resolve the tenant the same way a session request would
	tenants := service.NewTenantService(userRepo, orgRepo, auth.StaticDirectory{}, txManager, logger)
	claims := &models.Claims{OrgID: *orgID, Email: *email, Name: "Seed Admin"}
	claims.Subject = *userID
	identity, err := tenants.ResolveSession(ctx, claims)
	if err != nil {
		log.Fatalf("Failed to resolve tenant: %v", err)
	}
	log.Printf("Seeding organization %s (%s) as user %s", identity.OrganizationID, identity.Tenant, identity.UserID)

	result, err := seeder.Seed(ctx, identity.OrganizationID, identity.UserID, doc)
	if err != nil {
		log.Fatalf("Seeding failed after %d created, %d skipped: %v", result.Created, result.Skipped, err)
	}

	log.Printf("Seeding complete: %d created, %d already present", result.Created, result.Skipped)
}

func loadDocument(path string) (*seed.Document, error) {
	if path == "" {
		return seed.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return seed.Parse(f)
}
