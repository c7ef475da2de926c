package builder

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/telegram"
)

// App runs the Telegram bot until a shutdown signal arrives.
type App struct {
	bot    *telegram.Bot
	logger *zap.Logger
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.bot.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	cancel()
	if err := a.bot.Stop(); err != nil {
		a.logger.Error("bot shutdown error", zap.Error(err))
		return err
	}

	a.logger.Info("application stopped gracefully")
	return nil
}
