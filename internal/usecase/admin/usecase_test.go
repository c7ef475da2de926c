package admin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/usecase/admin"
)

type stubConnector struct {
	files     entity.AdminFilesResponse
	listCalls int
	deleteErr error
	uploadErr error
	deleted   []string
}

func (s *stubConnector) AdminUploadPDF(ctx context.Context, filename string, content []byte, password string, onProgress func(int)) (*entity.AdminUploadResponse, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	if onProgress != nil {
		onProgress(40)
		onProgress(100)
	}
	return &entity.AdminUploadResponse{Status: "ok", Filename: filename}, nil
}

func (s *stubConnector) AdminListFiles(ctx context.Context, password string) (*entity.AdminFilesResponse, error) {
	s.listCalls++
	resp := s.files
	return &resp, nil
}

func (s *stubConnector) AdminDeleteFile(ctx context.Context, filename, password string) (*entity.AdminDeleteResponse, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	s.deleted = append(s.deleted, filename)
	return &entity.AdminDeleteResponse{Status: "deleted", Filename: filename}, nil
}

var _ admin.Connector = (*stubConnector)(nil)

func TestUploadReportsProgress(t *testing.T) {
	uc := admin.NewUsecase(&stubConnector{}, zap.NewNop())

	var seen []int
	resp, err := uc.Upload(context.Background(), "kb.pdf", []byte("%PDF"), "secret", func(p int) {
		seen = append(seen, p)
	})
	require.NoError(t, err)

	assert.Equal(t, "kb.pdf", resp.Filename)
	assert.Equal(t, []int{40, 100}, seen)
	assert.Equal(t, 100, uc.Progress())
	assert.False(t, uc.Uploading())
}

func TestUploadRequiresPassword(t *testing.T) {
	uc := admin.NewUsecase(&stubConnector{}, zap.NewNop())

	_, err := uc.Upload(context.Background(), "kb.pdf", []byte("%PDF"), "  ", nil)
	assert.ErrorIs(t, err, entity.ErrEmptyPassword)
}

func TestRefreshStoresListing(t *testing.T) {
	stub := &stubConnector{files: entity.AdminFilesResponse{
		Ingested: []string{"a.pdf", "b.pdf"},
		Failed:   []string{"broken.pdf"},
	}}
	uc := admin.NewUsecase(stub, zap.NewNop())

	require.NoError(t, uc.Refresh(context.Background(), "secret"))

	ingested, failed := uc.Files()
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ingested)
	assert.Equal(t, []string{"broken.pdf"}, failed)
}

func TestDeleteRefreshesAfterwards(t *testing.T) {
	stub := &stubConnector{files: entity.AdminFilesResponse{Ingested: []string{"kept.pdf"}}}
	uc := admin.NewUsecase(stub, zap.NewNop())

	require.NoError(t, uc.DeleteFile(context.Background(), "old.pdf", "secret"))

	assert.Equal(t, []string{"old.pdf"}, stub.deleted)
	assert.Equal(t, 1, stub.listCalls)

	ingested, _ := uc.Files()
	assert.Equal(t, []string{"kept.pdf"}, ingested)
}

func TestDeleteFailureSkipsRefresh(t *testing.T) {
	stub := &stubConnector{deleteErr: errors.New("forbidden")}
	uc := admin.NewUsecase(stub, zap.NewNop())

	err := uc.DeleteFile(context.Background(), "old.pdf", "secret")
	require.Error(t, err)
	assert.Zero(t, stub.listCalls)
}
