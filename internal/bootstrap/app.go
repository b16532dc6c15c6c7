package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"telehealth-backend/internal/llm"
	"telehealth-backend/internal/llm/gemini"
	"telehealth-backend/internal/llm/openai"
	"telehealth-backend/internal/presence"
	"telehealth-backend/internal/shared/config"
	"telehealth-backend/internal/shared/server"
	"telehealth-backend/internal/shared/storage/db"
	"telehealth-backend/internal/shared/telemetry"
	"telehealth-backend/internal/triage"
)

// App bundles the wired application.
type App struct {
	Config config.Config
	Engine *gin.Engine
	DB     *sql.DB // nil when running against the in-memory repo
}

// Build wires config, storage, providers, and routes into a runnable app.
// The primary provider is mandatory; the alternate and the database degrade
// gracefully outside production.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	primary, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}

	var alternate llm.Provider
	if cfg.OpenAIAPIKey != "" {
		alt, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("alternate provider: %w", err)
		}
		alternate = alt
	} else {
		telemetry.Info("alternate provider not configured", nil)
	}

	var database *sql.DB
	var blocked triage.BlockedRepo
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			if cfg.Env == "production" {
				return nil, fmt.Errorf("connect database: %w", err)
			}
			telemetry.Warn("database unavailable, using in-memory audit log", map[string]any{
				"error": err.Error(),
			})
			database = nil
		}
	}
	if database != nil {
		if err := db.RunMigrations(ctx, database); err != nil {
			database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		blocked = triage.NewPGBlockedRepo(database)
	} else {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		blocked = triage.NewMemoryBlockedRepo()
	}

	analyzer := triage.NewAnalyzer(primary, alternate, blocked, cfg.TriageTimeout)
	triageHandler := triage.NewHandler(analyzer, blocked)
	presenceHandler := presence.NewHandler(presence.NewCache(cfg.PresenceTTL))

	engine := server.New(cfg, triageHandler, presenceHandler)

	return &App{
		Config: cfg,
		Engine: engine,
		DB:     database,
	}, nil
}

// Close releases resources held by the app.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
