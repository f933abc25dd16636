// Package bootstrap builds the application's dependency graph from config,
// with in-memory fallbacks for dev so the service runs without external
// infrastructure.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"qaplan-backend/internal/customize"
	"qaplan-backend/internal/lock"
	"qaplan-backend/internal/plans"
	"qaplan-backend/internal/platform"
	"qaplan-backend/internal/queue"
	"qaplan-backend/internal/runs"
	"qaplan-backend/internal/shared/config"
	"qaplan-backend/internal/shared/server"
	"qaplan-backend/internal/shared/storage/db"
	"qaplan-backend/internal/sheets"
	"qaplan-backend/internal/ticket"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Tickets ticket.Source
	Store   sheets.Store
	Locker  lock.Locker
	Queue   queue.Client

	RunsRepo     runs.Repo
	PlansService *plans.Service
	PlansHandler *plans.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	locker, err := buildLocker(cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Tickets: ticket.NewJiraClient(cfg.JiraBaseURL, cfg.JiraUsername, cfg.JiraAPIToken),
		Store:   store,
		Locker:  locker,
		Queue:   queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		PlansHandler: app.PlansHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory run history")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory run history: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory run history: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (sheets.Store, error) {
	if _, err := os.Stat(cfg.GoogleCredentialsFile); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: google credentials unavailable; using in-memory sheet store")
			return sheets.NewMemoryStore(defaultTemplateTabs()), nil
		}
		return nil, fmt.Errorf("google credentials file %q: %w", cfg.GoogleCredentialsFile, err)
	}
	if strings.TrimSpace(cfg.TemplateSheetID) == "" {
		return nil, fmt.Errorf("QA_TEMPLATE_SHEET_ID is required")
	}
	return sheets.NewGoogleStore(ctx, cfg.GoogleCredentialsFile, cfg.DestinationFolderID)
}

func buildLocker(cfg config.Config) (lock.Locker, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: QA_REDIS_URL empty; using in-process locks")
			return lock.NewMemoryLocker(), nil
		}
		return nil, fmt.Errorf("QA_REDIS_URL is required")
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse QA_REDIS_URL: %w", err)
	}
	return lock.NewRedisLocker(redis.NewClient(opts)), nil
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("QA_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildServices(app *App) error {
	var runsRepo runs.Repo
	if app.DB != nil {
		runsRepo = &runs.PGRepo{DB: app.DB}
	} else {
		runsRepo = runs.NewMemoryRepo()
	}

	defaultPlatform, ok := platform.Parse(app.Config.DefaultPlatform)
	if !ok {
		log.Printf("bootstrap: unknown QA_DEFAULT_PLATFORM %q; using %s", app.Config.DefaultPlatform, defaultPlatform)
	}

	svc := &plans.Service{
		Tickets:    app.Tickets,
		Store:      app.Store,
		Customizer: customize.New(app.Store),
		Runs:       runsRepo,
		Locker:     app.Locker,
		Resolver:   platform.Resolver{Default: defaultPlatform},
		TemplateID: app.Config.TemplateSheetID,
		FolderID:   app.Config.DestinationFolderID,
	}

	handler := plans.NewHandler(svc)
	handler.Queue = app.Queue
	handler.WebhookSecret = app.Config.WebhookSecret

	app.RunsRepo = runsRepo
	app.PlansService = svc
	app.PlansHandler = handler
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// defaultTemplateTabs mirrors the template document's tab set for the
// in-memory store.
func defaultTemplateTabs() []string {
	tabs := make([]string, 0, len(platform.All)+len(platform.UtilityTabs))
	for _, p := range platform.All {
		tabs = append(tabs, p.Tab())
	}
	tabs = append(tabs, platform.UtilityTabs...)
	return tabs
}
