package chat

import (
	"context"

	"github.com/offlinellm/client-go/internal/entity"
)

type Connector interface {
	ListModels(ctx context.Context) ([]entity.ModelInfo, error)
	Chat(ctx context.Context, sessionID, userMsg, model string) (*entity.ChatResponse, error)
	EndSession(ctx context.Context, sessionID string) error
}
