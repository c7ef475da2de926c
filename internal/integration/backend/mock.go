package backend

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/entity"
)

// MockConnector returns canned responses for offline development and
// demos (ENABLE_MOCKS=true).
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) ListModels(ctx context.Context) ([]entity.ModelInfo, error) {
	ctxzap.Info(ctx, "[MOCK] listing models")
	return []entity.ModelInfo{
		{Name: "llama3:8b-instruct-q4_K_M", Description: "default instruct model"},
		{Name: "deepseek-r1:8b", Description: "reasoning model with think tags"},
	}, nil
}

func (m *MockConnector) Ping(ctx context.Context) error {
	return nil
}

func (m *MockConnector) Chat(ctx context.Context, sessionID, userMsg, model string) (*entity.ChatResponse, error) {
	ctxzap.Info(ctx, "[MOCK] chat turn", zap.String("session_id", sessionID))
	return &entity.ChatResponse{
		SessionID: sessionID,
		Answer:    fmt.Sprintf("<think>echoing the user</think>You said: %s", userMsg),
	}, nil
}

func (m *MockConnector) DocQA(ctx context.Context, question, sessionID, model string) (*entity.QAResponse, error) {
	ctxzap.Info(ctx, "[MOCK] doc qa", zap.String("session_id", sessionID))
	return &entity.QAResponse{
		Answer: "The knowledge base has no opinion on that.",
		Sources: []entity.SourceChunk{
			{PageNumber: 1, Snippet: "mock snippet"},
		},
	}, nil
}

func (m *MockConnector) SessionQA(ctx context.Context, question, sessionID, model string, persistent bool) (*entity.QAResponse, error) {
	ctxzap.Info(ctx, "[MOCK] session qa",
		zap.String("session_id", sessionID),
		zap.Bool("persistent", persistent),
	)
	return &entity.QAResponse{
		Answer: "The uploaded document has no opinion on that.",
		Sources: []entity.SourceChunk{
			{PageNumber: 3, Snippet: "mock session snippet"},
		},
	}, nil
}

func (m *MockConnector) UploadPDF(ctx context.Context, sessionID, filename string, content []byte) (*entity.UploadPDFResponse, error) {
	if len(content) == 0 {
		return nil, entity.ErrEmptyFile
	}
	ctxzap.Info(ctx, "[MOCK] session upload", zap.String("filename", filename))
	return &entity.UploadPDFResponse{
		Status:        "ok",
		SessionID:     sessionID,
		ChunksIndexed: 12,
	}, nil
}

func (m *MockConnector) EndSession(ctx context.Context, sessionID string) error {
	ctxzap.Info(ctx, "[MOCK] end session", zap.String("session_id", sessionID))
	return nil
}

func (m *MockConnector) AdminUploadPDF(ctx context.Context, filename string, content []byte, password string, onProgress func(int)) (*entity.AdminUploadResponse, error) {
	if len(content) == 0 {
		return nil, entity.ErrEmptyFile
	}
	if onProgress != nil {
		onProgress(100)
	}
	return &entity.AdminUploadResponse{Status: "ok", Filename: filename}, nil
}

func (m *MockConnector) AdminListFiles(ctx context.Context, password string) (*entity.AdminFilesResponse, error) {
	return &entity.AdminFilesResponse{
		Ingested: []string{"handbook.pdf"},
		Failed:   []string{},
	}, nil
}

func (m *MockConnector) AdminDeleteFile(ctx context.Context, filename, password string) (*entity.AdminDeleteResponse, error) {
	return &entity.AdminDeleteResponse{Status: "deleted", Filename: filename}, nil
}

func (m *MockConnector) Proofread(ctx context.Context, text string) (*entity.RewriteResponse, error) {
	return &entity.RewriteResponse{Corrected: text}, nil
}

func (m *MockConnector) Redraft(ctx context.Context, text string) (*entity.RewriteResponse, error) {
	return &entity.RewriteResponse{Corrected: text}, nil
}

func (m *MockConnector) SpeechToText(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", entity.ErrEmptyFile
	}
	return "mock transcription", nil
}
