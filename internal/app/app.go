package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/reviewdesk/internal/config"
	"github.com/markdave123-py/reviewdesk/internal/core"
	db "github.com/markdave123-py/reviewdesk/internal/core/database"
	"github.com/markdave123-py/reviewdesk/internal/core/generator"
	"github.com/markdave123-py/reviewdesk/internal/core/llm"
	objectclient "github.com/markdave123-py/reviewdesk/internal/core/object-client"
	"github.com/markdave123-py/reviewdesk/internal/core/prompts"
	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/services"
)

type App struct {
	DBClient *db.DatabaseClient
	Reviews  *services.ReviewService
	Server   *Server

	closers []io.Closer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logging.Init(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{}

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBClient = dbClient
	a.closers = append(a.closers, dbClient)
	logging.Info("database initialized and ready", nil)

	provider, err := a.newProvider(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	gateway := llm.NewGateway(provider, cfg.LLMProvider)
	gateway.Timeout = cfg.LLMTimeout

	builder := prompts.NewBuilder(brandFromConfig(cfg))
	gen := generator.New(gateway, builder)

	opts := services.Options{
		Workers:       cfg.RegenerateWorkers,
		StatsCacheTTL: cfg.StatsCacheTTL,
	}
	if cfg.ExportEnabled() {
		objClient, err := objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the object client: %w", err)
		}
		opts.Objects = objClient
		opts.Bucket = cfg.BucketName
		logging.Info("object client initialized and ready", logrus.Fields{"bucket": cfg.BucketName})
	}

	a.Reviews = services.NewReviewService(dbClient, gen, opts)
	auth := services.NewAuthService(cfg.JWTSecret, cfg.AdminPasswordHash)

	a.Server = NewServer(cfg.Port, NewRouter(cfg, Routes{
		Reviews: a.Reviews,
		Auth:    auth,
		Health:  dbClient,
	}))

	return a, nil
}

func (a *App) newProvider(ctx context.Context, cfg *config.Config) (core.LLMProvider, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		g, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel, cfg.LLMTemperature, cfg.LLMMaxTokens)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the gemini client: %w", err)
		}
		a.closers = append(a.closers, g)
		logging.Info("llm provider ready", logrus.Fields{"provider": cfg.LLMProvider, "model": cfg.GenModel})
		return g, nil
	default:
		o, err := llm.NewOpenRouterLLM(llm.OpenRouterOptions{
			APIKey:      cfg.OpenRouterAPIKey,
			BaseURL:     cfg.OpenRouterBaseURL,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			MaxTokens:   cfg.LLMMaxTokens,
			Timeout:     cfg.LLMTimeout,
			SiteURL:     cfg.SiteURL,
			SiteName:    cfg.SiteName,
		})
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the openrouter client: %w", err)
		}
		logging.Info("llm provider ready", logrus.Fields{"provider": cfg.LLMProvider, "model": cfg.LLMModel})
		return o, nil
	}
}

func brandFromConfig(cfg *config.Config) prompts.Brand {
	b := prompts.Brand{
		Name:       cfg.BrandName,
		Phone:      cfg.SupportPhone,
		Email:      cfg.SupportEmail,
		WhatsApp:   cfg.SupportWhatsApp,
		HelpCenter: cfg.SupportHelpURL,
	}
	return b.WithDefaults()
}

// Close releases held clients in reverse order of acquisition, then flushes
// the log queue.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logging.Warn("close failed", logrus.Fields{"error": err.Error()})
		}
	}
	a.closers = nil
	logging.Close()
}
