package docqa_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/usecase/docqa"
)

type call struct {
	endpoint  string
	sessionID string
}

type stubConnector struct {
	calls     []call
	qaErr     error
	uploadErr error
	chunks    int
}

func (s *stubConnector) DocQA(ctx context.Context, question, sessionID, model string) (*entity.QAResponse, error) {
	s.calls = append(s.calls, call{endpoint: "doc_qa", sessionID: sessionID})
	if s.qaErr != nil {
		return nil, s.qaErr
	}
	return &entity.QAResponse{
		Answer:  "kb answer",
		Sources: []entity.SourceChunk{{PageNumber: 2, Snippet: "from the kb"}},
	}, nil
}

func (s *stubConnector) SessionQA(ctx context.Context, question, sessionID, model string, persistent bool) (*entity.QAResponse, error) {
	s.calls = append(s.calls, call{endpoint: "session_qa", sessionID: sessionID})
	if s.qaErr != nil {
		return nil, s.qaErr
	}
	return &entity.QAResponse{Answer: "session answer"}, nil
}

func (s *stubConnector) UploadPDF(ctx context.Context, sessionID, filename string, content []byte) (*entity.UploadPDFResponse, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &entity.UploadPDFResponse{Status: "ok", SessionID: sessionID, ChunksIndexed: s.chunks}, nil
}

var _ docqa.Connector = (*stubConnector)(nil)

type stubSession struct{}

func (stubSession) SessionID() string { return "session-1" }
func (stubSession) Model() string     { return "llama3:8b" }

func newUsecase(stub *stubConnector) *docqa.DocQAUsecase {
	return docqa.NewUsecase(stub, stubSession{}, zap.NewNop())
}

func TestAskWithoutDocumentGoesToKnowledgeBase(t *testing.T) {
	stub := &stubConnector{}
	uc := newUsecase(stub)

	turn, err := uc.Ask(context.Background(), "what is this?")
	require.NoError(t, err)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, "doc_qa", stub.calls[0].endpoint)
	// no document uploaded: the call must not be session scoped
	assert.Empty(t, stub.calls[0].sessionID)

	assert.Equal(t, "kb answer", turn.Answer)
	assert.False(t, turn.Pending)
	assert.False(t, turn.SourcesVisible)
}

func TestAskAfterUploadUsesSessionQA(t *testing.T) {
	stub := &stubConnector{chunks: 7}
	uc := newUsecase(stub)

	_, err := uc.UploadFile(context.Background(), "report.pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.True(t, uc.HasUploadedDocument())

	_, err = uc.Ask(context.Background(), "summarize the report")
	require.NoError(t, err)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, "session_qa", stub.calls[0].endpoint)
	assert.Equal(t, "session-1", stub.calls[0].sessionID)
}

func TestAskDocumentOnlyScopesDocQAToSession(t *testing.T) {
	stub := &stubConnector{}
	uc := newUsecase(stub)

	_, err := uc.UploadFile(context.Background(), "report.pdf", []byte("%PDF"))
	require.NoError(t, err)
	uc.SetDocumentOnly(true)

	_, err = uc.Ask(context.Background(), "only from the document")
	require.NoError(t, err)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, "doc_qa", stub.calls[0].endpoint)
	assert.Equal(t, "session-1", stub.calls[0].sessionID)
}

func TestDocumentOnlyToggleIgnoredWithoutUpload(t *testing.T) {
	stub := &stubConnector{}
	uc := newUsecase(stub)
	uc.SetDocumentOnly(true)

	_, err := uc.Ask(context.Background(), "anything")
	require.NoError(t, err)

	require.Len(t, stub.calls, 1)
	assert.Equal(t, "doc_qa", stub.calls[0].endpoint)
	assert.Empty(t, stub.calls[0].sessionID)
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	stub := &stubConnector{}
	uc := newUsecase(stub)

	_, err := uc.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, entity.ErrEmptyQuestion)
	assert.Empty(t, stub.calls)
	assert.Zero(t, len(uc.Turns()))
}

func TestFailedAskRemovesPendingTurn(t *testing.T) {
	stub := &stubConnector{}
	uc := newUsecase(stub)

	_, err := uc.Ask(context.Background(), "first")
	require.NoError(t, err)
	require.Len(t, uc.Turns(), 1)

	stub.qaErr = errors.New("retrieval failed")
	_, err = uc.Ask(context.Background(), "second")
	require.Error(t, err)

	turns := uc.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "first", turns[0].Question)
}

func TestUploadDeduplicatesFilenames(t *testing.T) {
	stub := &stubConnector{chunks: 12}
	uc := newUsecase(stub)

	resp, err := uc.UploadFile(context.Background(), "report.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 12, resp.ChunksIndexed)

	_, err = uc.UploadFile(context.Background(), "report.pdf", []byte("%PDF"))
	require.NoError(t, err)

	assert.True(t, uc.HasUploadedDocument())
	assert.Equal(t, []string{"report.pdf"}, uc.UploadedFiles())
}

func TestFailedUploadLeavesStateUntouched(t *testing.T) {
	stub := &stubConnector{chunks: 3}
	uc := newUsecase(stub)

	_, err := uc.UploadFile(context.Background(), "kept.pdf", []byte("%PDF"))
	require.NoError(t, err)

	stub.uploadErr = errors.New("ingestion failed")
	_, err = uc.UploadFile(context.Background(), "broken.pdf", []byte("%PDF"))
	require.Error(t, err)

	assert.True(t, uc.HasUploadedDocument())
	assert.Equal(t, []string{"kept.pdf"}, uc.UploadedFiles())
	assert.False(t, uc.Uploading())
}

func TestToggleSources(t *testing.T) {
	stub := &stubConnector{}
	uc := newUsecase(stub)

	_, err := uc.Ask(context.Background(), "cite me")
	require.NoError(t, err)

	require.True(t, uc.ToggleSources(0))
	assert.True(t, uc.Turns()[0].SourcesVisible)

	require.True(t, uc.ToggleSources(0))
	assert.False(t, uc.Turns()[0].SourcesVisible)

	assert.False(t, uc.ToggleSources(5))
}
