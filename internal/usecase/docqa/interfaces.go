package docqa

import (
	"context"

	"github.com/offlinellm/client-go/internal/entity"
)

type Connector interface {
	DocQA(ctx context.Context, question, sessionID, model string) (*entity.QAResponse, error)
	SessionQA(ctx context.Context, question, sessionID, model string, persistent bool) (*entity.QAResponse, error)
	UploadPDF(ctx context.Context, sessionID, filename string, content []byte) (*entity.UploadPDFResponse, error)
}

// Session supplies the identifier and model selection this usecase
// shares with the chat session it belongs to.
type Session interface {
	SessionID() string
	Model() string
}
