package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/entity"
	pkgretry "github.com/offlinellm/client-go/internal/pkg/retry"
	"github.com/offlinellm/client-go/internal/usecase/conversation"
)

// chatTurn is one user message and, once resolved, the assistant's
// answer. A failed exchange leaves the turn with answered=false; the
// user message is never rolled back.
type chatTurn struct {
	user     string
	answer   string
	answered bool
}

// ChatUsecase drives one chat session against the backend. The session
// identifier is generated at construction and scopes the backend's
// conversation memory; it is never persisted.
type ChatUsecase struct {
	connector Connector
	retryCfg  pkgretry.RetryConfig
	logger    *zap.Logger

	sessionID string
	log       *conversation.Log[chatTurn]

	mu     sync.Mutex
	model  string
	models []entity.ModelInfo
}

// NewUsecase creates a chat session with a fresh session id.
// defaultModel may be empty, in which case the backend's default model
// answers until SetModel is called.
func NewUsecase(connector Connector, retryCfg pkgretry.RetryConfig, defaultModel string, logger *zap.Logger) *ChatUsecase {
	return &ChatUsecase{
		connector: connector,
		retryCfg:  retryCfg,
		logger:    logger,
		sessionID: uuid.NewString(),
		model:     defaultModel,
		log:       conversation.New[chatTurn](conversation.Config{SingleFlight: true}),
	}
}

func (uc *ChatUsecase) SessionID() string {
	return uc.sessionID
}

func (uc *ChatUsecase) Model() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.model
}

func (uc *ChatUsecase) SetModel(model string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.model = model
}

// Models returns the last successfully fetched model list. An empty
// list means selection is unavailable, not that no models exist.
func (uc *ChatUsecase) Models() []entity.ModelInfo {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.models
}

// AwaitingResponse reports whether an exchange is outstanding.
func (uc *ChatUsecase) AwaitingResponse() bool {
	return uc.log.InFlight()
}

// LoadModels fetches the model list with the configured bounded linear
// backoff. On final failure the stored list stays empty and the last
// error is returned.
func (uc *ChatUsecase) LoadModels(ctx context.Context) ([]entity.ModelInfo, error) {
	opts := append(uc.retryCfg.ToRetryOptions(), retry.Context(ctx))

	models, err := retry.DoWithData(func() ([]entity.ModelInfo, error) {
		return uc.connector.ListModels(ctx)
	}, opts...)
	if err != nil {
		ctxzap.Warn(ctx, "model list unavailable", zap.Error(err))
		return nil, err
	}

	uc.mu.Lock()
	uc.models = models
	uc.mu.Unlock()

	return models, nil
}

// SendMessage runs one exchange: the user message is appended before
// the network call (and stays in the log even if the call fails), the
// assistant answer is appended on success. At most one exchange may be
// outstanding; a second concurrent send fails with
// entity.ErrExchangeInFlight.
func (uc *ChatUsecase) SendMessage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", entity.ErrEmptyMessage
	}

	pending, err := uc.log.Begin(&chatTurn{user: text})
	if err != nil {
		return "", err
	}

	resp, err := uc.connector.Chat(ctx, uc.sessionID, text, uc.Model())
	if err != nil {
		pending.Fail()
		return "", err
	}

	pending.Succeed(func(t *chatTurn) {
		t.answer = resp.Answer
		t.answered = true
	})

	return resp.Answer, nil
}

// Messages flattens the exchange log into display order: each user
// message followed by its assistant answer when one arrived.
func (uc *ChatUsecase) Messages() []entity.Message {
	turns := uc.log.Snapshot()

	messages := make([]entity.Message, 0, 2*len(turns))
	for _, t := range turns {
		messages = append(messages, entity.Message{Origin: entity.OriginUser, Text: t.user})
		if t.answered {
			messages = append(messages, entity.Message{Origin: entity.OriginAssistant, Text: t.answer})
		}
	}
	return messages
}

// Transcript snapshots the session for export.
func (uc *ChatUsecase) Transcript(title string) entity.Transcript {
	return entity.Transcript{
		Title:    title,
		Messages: uc.Messages(),
	}
}

// End purges the session's backend state. The usecase remains usable;
// the backend will lazily recreate the session on the next send.
func (uc *ChatUsecase) End(ctx context.Context) error {
	return uc.connector.EndSession(ctx, uc.sessionID)
}
