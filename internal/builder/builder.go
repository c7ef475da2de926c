// Package builder wires configuration, logging, the backend connector
// and the usecases into runnable applications.
package builder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/config"
	"github.com/offlinellm/client-go/internal/integration/backend"
	"github.com/offlinellm/client-go/internal/pkg/logger"
	"github.com/offlinellm/client-go/internal/telegram"
	"github.com/offlinellm/client-go/internal/usecase/admin"
	"github.com/offlinellm/client-go/internal/usecase/chat"
	"github.com/offlinellm/client-go/internal/usecase/docqa"
	"github.com/offlinellm/client-go/internal/usecase/rewrite"
)

// BackendConnector is the full method set of the OfflineLLM API client,
// implemented by both the real and the mock connector.
type BackendConnector interface {
	chat.Connector
	docqa.Connector
	rewrite.Connector
	admin.Connector
	telegram.Transcriber

	Ping(ctx context.Context) error
}

// Deps holds the wired application dependencies. Chat and DocQA form
// one conversation session; a fresh session requires a fresh Deps pair
// built with NewSession.
type Deps struct {
	Cfg       *config.Config
	Logger    *zap.Logger
	Connector BackendConnector

	Chat    *chat.ChatUsecase
	DocQA   *docqa.DocQAUsecase
	Rewrite *rewrite.RewriteUsecase
	Admin   *admin.AdminUsecase
}

// NewSession replaces the chat and document QA usecases with a fresh
// session against the same backend.
func (d *Deps) NewSession() {
	d.Chat = chat.NewUsecase(d.Connector, d.Cfg.ModelListRetry, d.Cfg.DefaultModel, d.Logger)
	d.DocQA = docqa.NewUsecase(d.Connector, d.Chat, d.Logger)
}

// Build loads configuration and wires the dependency graph for the CLI.
func Build() (*Deps, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("building application",
		zap.String("environment", cfg.Environment),
		zap.String("backend_url", cfg.Backend.BaseURL),
	)

	connector := buildConnector(cfg, log)

	deps := &Deps{
		Cfg:       cfg,
		Logger:    log,
		Connector: connector,
		Rewrite:   rewrite.NewUsecase(connector, log),
		Admin:     admin.NewUsecase(connector, log),
	}
	deps.NewSession()

	log.Info("application built successfully")
	return deps, nil
}

// BuildTelegramBot wires the Telegram front end. Sessions are created
// per chat id and expired by TTL.
func BuildTelegramBot() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN must be set")
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("building telegram bot",
		zap.String("environment", cfg.Environment),
		zap.String("backend_url", cfg.Backend.BaseURL),
	)

	connector := buildConnector(cfg, log)

	sessions := telegram.NewSessions(cfg.Telegram.SessionTTL, func() *telegram.Session {
		chatUC := chat.NewUsecase(connector, cfg.ModelListRetry, cfg.DefaultModel, log)
		return &telegram.Session{
			Chat:  chatUC,
			DocQA: docqa.NewUsecase(connector, chatUC, log),
		}
	}, log)

	bot, err := telegram.New(&cfg.Telegram, sessions, rewrite.NewUsecase(connector, log), connector, log)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	log.Info("telegram bot built successfully")
	return &App{bot: bot, logger: log}, nil
}

func buildConnector(cfg *config.Config, log *zap.Logger) BackendConnector {
	if cfg.EnableMocks {
		log.Info("using mock backend connector")
		return backend.NewMockConnector(log)
	}
	return backend.NewConnector(cfg.Backend, log)
}
