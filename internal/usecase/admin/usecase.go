package admin

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/entity"
)

// AdminUsecase manages the persistent knowledge base. The knowledge
// base is shared across sessions, so nothing here is updated
// optimistically: local state changes only after the backend confirms.
// The admin password is passed through per call and never stored.
type AdminUsecase struct {
	connector Connector
	logger    *zap.Logger

	mu        sync.Mutex
	ingested  []string
	failed    []string
	progress  int
	uploading bool
}

func NewUsecase(connector Connector, logger *zap.Logger) *AdminUsecase {
	return &AdminUsecase{
		connector: connector,
		logger:    logger,
	}
}

// Upload ingests a PDF into the knowledge base, reporting progress as
// integer percent through Progress and the optional callback.
func (uc *AdminUsecase) Upload(ctx context.Context, filename string, content []byte, password string, onProgress func(percent int)) (*entity.AdminUploadResponse, error) {
	if strings.TrimSpace(password) == "" {
		return nil, entity.ErrEmptyPassword
	}

	uc.mu.Lock()
	uc.uploading = true
	uc.progress = 0
	uc.mu.Unlock()

	defer func() {
		uc.mu.Lock()
		uc.uploading = false
		uc.mu.Unlock()
	}()

	resp, err := uc.connector.AdminUploadPDF(ctx, filename, content, password, func(percent int) {
		uc.mu.Lock()
		uc.progress = percent
		uc.mu.Unlock()
		if onProgress != nil {
			onProgress(percent)
		}
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("knowledge base file ingested", zap.String("filename", resp.Filename))
	return resp, nil
}

// Refresh fetches the knowledge base file listing.
func (uc *AdminUsecase) Refresh(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return entity.ErrEmptyPassword
	}

	resp, err := uc.connector.AdminListFiles(ctx, password)
	if err != nil {
		return err
	}

	uc.mu.Lock()
	uc.ingested = resp.Ingested
	uc.failed = resp.Failed
	uc.mu.Unlock()

	return nil
}

// DeleteFile removes a file from the knowledge base and refreshes the
// listing afterwards.
func (uc *AdminUsecase) DeleteFile(ctx context.Context, filename, password string) error {
	if strings.TrimSpace(password) == "" {
		return entity.ErrEmptyPassword
	}

	if _, err := uc.connector.AdminDeleteFile(ctx, filename, password); err != nil {
		return err
	}

	uc.logger.Info("knowledge base file deleted", zap.String("filename", filename))
	return uc.Refresh(ctx, password)
}

// Files returns the last fetched listing split by ingestion outcome.
func (uc *AdminUsecase) Files() (ingested, failed []string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return append([]string(nil), uc.ingested...), append([]string(nil), uc.failed...)
}

// Progress returns the last reported upload percent.
func (uc *AdminUsecase) Progress() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.progress
}

func (uc *AdminUsecase) Uploading() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.uploading
}
