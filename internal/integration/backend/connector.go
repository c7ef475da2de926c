package backend

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/config"
	"github.com/offlinellm/client-go/internal/entity"
	pkghttp "github.com/offlinellm/client-go/pkg/http"
)

// adminUsername is the fixed Basic auth user the backend checks admin
// calls against. The password is always caller-supplied and never
// retained by the connector.
const adminUsername = "admin"

// Connector is the typed client for the OfflineLLM backend. It maps
// method calls onto the REST endpoints and surfaces failures as
// pkghttp.NetworkError / pkghttp.HTTPError. It never retries.
type Connector struct {
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.BackendConfig, logger *zap.Logger) *Connector {
	connCfg := &pkghttp.ConnectorConfig{
		BaseURL: cfg.BaseURL,
		Logger:  logger,
	}

	return &Connector{
		connector: pkghttp.NewConnector(
			connCfg,
			pkghttp.WithRequestTimeout(cfg.RequestTimeout),
			pkghttp.WithDialTimeout(cfg.ConnTimeout),
			pkghttp.WithKeepAlive(cfg.KeepAlive),
			pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
			pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
			pkghttp.WithRequestLogging(),
		),
		logger: logger,
	}
}

// ListModels fetches the models available on the backend.
// GET /models
func (c *Connector) ListModels(ctx context.Context) ([]entity.ModelInfo, error) {
	var models []entity.ModelInfo
	if err := c.connector.DoRequest(ctx, http.MethodGet, "/models", nil, &models); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	ctxzap.Debug(ctx, "model list fetched", zap.Int("count", len(models)))
	return models, nil
}

// Ping is a lightweight health probe.
// GET /ping
func (c *Connector) Ping(ctx context.Context) error {
	var resp entity.PingResponse
	if err := c.connector.DoRequest(ctx, http.MethodGet, "/ping", nil, &resp); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Chat sends one chat turn with session memory. An empty model is
// omitted from the payload so the backend default applies.
// POST /chat
func (c *Connector) Chat(ctx context.Context, sessionID, userMsg, model string) (*entity.ChatResponse, error) {
	req := &entity.ChatRequest{
		SessionID: sessionID,
		UserMsg:   userMsg,
		Model:     model,
	}

	var resp entity.ChatResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	return &resp, nil
}

// DocQA answers from the persistent knowledge base. When sessionID is
// non-empty, retrieval is additionally scoped to that session's
// uploaded documents per backend policy.
// POST /doc_qa
func (c *Connector) DocQA(ctx context.Context, question, sessionID, model string) (*entity.QAResponse, error) {
	req := &entity.QARequest{
		Question:  question,
		SessionID: sessionID,
		Model:     model,
	}

	var resp entity.QAResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "/doc_qa", req, &resp); err != nil {
		return nil, fmt.Errorf("doc qa: %w", err)
	}

	return &resp, nil
}

// SessionQA answers from the session's uploaded document, also
// consulting the durable knowledge base when persistent is set.
// POST /session_qa
func (c *Connector) SessionQA(ctx context.Context, question, sessionID, model string, persistent bool) (*entity.QAResponse, error) {
	req := &entity.SessionQARequest{
		Question:   question,
		SessionID:  sessionID,
		Persistent: persistent,
		Model:      model,
	}

	var resp entity.QAResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, "/session_qa", req, &resp); err != nil {
		return nil, fmt.Errorf("session qa: %w", err)
	}

	return &resp, nil
}

// UploadPDF indexes a PDF into the session's vector store.
// POST /upload_pdf?session_id=ID
func (c *Connector) UploadPDF(ctx context.Context, sessionID, filename string, content []byte) (*entity.UploadPDFResponse, error) {
	if len(content) == 0 {
		return nil, entity.ErrEmptyFile
	}

	endpoint := "/upload_pdf?session_id=" + url.QueryEscape(sessionID)

	ctxzap.Info(ctx, "uploading session PDF",
		zap.String("filename", filename),
		zap.Int("size", len(content)),
	)

	var resp entity.UploadPDFResponse
	err := c.connector.DoMultipartRequest(ctx, http.MethodPost, endpoint, fileBody(filename, content), &resp)
	if err != nil {
		return nil, fmt.Errorf("upload pdf: %w", err)
	}

	ctxzap.Info(ctx, "session PDF indexed", zap.Int("chunks_indexed", resp.ChunksIndexed))
	return &resp, nil
}

// EndSession purges the session's vector store on the backend.
// DELETE /session/{id}
func (c *Connector) EndSession(ctx context.Context, sessionID string) error {
	endpoint := "/session/" + url.PathEscape(sessionID)
	if err := c.connector.DoRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// AdminUploadPDF ingests a PDF into the persistent knowledge base.
// onProgress, when non-nil, receives integer percent in [0,100]
// computed from bytes uploaded over total bytes.
// POST /admin/upload_pdf, Basic auth
func (c *Connector) AdminUploadPDF(ctx context.Context, filename string, content []byte, password string, onProgress func(percent int)) (*entity.AdminUploadResponse, error) {
	if len(content) == 0 {
		return nil, entity.ErrEmptyFile
	}

	ctxzap.Info(ctx, "uploading PDF to knowledge base",
		zap.String("filename", filename),
		zap.Int("size", len(content)),
	)

	var resp entity.AdminUploadResponse
	err := c.connector.DoMultipartRequestWithProgress(
		ctx, http.MethodPost, "/admin/upload_pdf",
		fileBody(filename, content), &resp, onProgress,
		pkghttp.WithBasicAuth(adminUsername, password),
	)
	if err != nil {
		return nil, fmt.Errorf("admin upload pdf: %w", err)
	}

	return &resp, nil
}

// AdminListFiles lists knowledge base files by ingestion outcome.
// GET /admin/files, Basic auth
func (c *Connector) AdminListFiles(ctx context.Context, password string) (*entity.AdminFilesResponse, error) {
	var resp entity.AdminFilesResponse
	err := c.connector.DoRequest(ctx, http.MethodGet, "/admin/files", nil, &resp,
		pkghttp.WithBasicAuth(adminUsername, password))
	if err != nil {
		return nil, fmt.Errorf("admin list files: %w", err)
	}

	return &resp, nil
}

// AdminDeleteFile removes a file from the persistent knowledge base.
// DELETE /admin/file/{filename}, Basic auth
func (c *Connector) AdminDeleteFile(ctx context.Context, filename, password string) (*entity.AdminDeleteResponse, error) {
	endpoint := "/admin/file/" + url.PathEscape(filename)

	var resp entity.AdminDeleteResponse
	err := c.connector.DoRequest(ctx, http.MethodDelete, endpoint, nil, &resp,
		pkghttp.WithBasicAuth(adminUsername, password))
	if err != nil {
		return nil, fmt.Errorf("admin delete file: %w", err)
	}

	return &resp, nil
}

// Proofread runs the grammar-check transform.
// POST /proofread
func (c *Connector) Proofread(ctx context.Context, text string) (*entity.RewriteResponse, error) {
	return c.rewrite(ctx, "/proofread", text)
}

// Redraft rewrites the text in a cleaner register.
// POST /redraft
func (c *Connector) Redraft(ctx context.Context, text string) (*entity.RewriteResponse, error) {
	return c.rewrite(ctx, "/redraft", text)
}

func (c *Connector) rewrite(ctx context.Context, endpoint, text string) (*entity.RewriteResponse, error) {
	req := &entity.RewriteRequest{Text: text}

	var resp entity.RewriteResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("rewrite %s: %w", endpoint, err)
	}

	return &resp, nil
}

// SpeechToText transcribes a recorded audio blob.
// POST /speech_to_text
func (c *Connector) SpeechToText(ctx context.Context, filename string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", entity.ErrEmptyFile
	}

	var resp entity.TranscriptionResponse
	err := c.connector.DoMultipartRequest(ctx, http.MethodPost, "/speech_to_text", fileBody(filename, audio), &resp)
	if err != nil {
		return "", fmt.Errorf("speech to text: %w", err)
	}

	return resp.Text, nil
}

func fileBody(filename string, content []byte) func(*multipart.Writer) error {
	return func(writer *multipart.Writer) error {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(content); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}
		return nil
	}
}
