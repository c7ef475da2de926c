package admin

import (
	"context"

	"github.com/offlinellm/client-go/internal/entity"
)

type Connector interface {
	AdminUploadPDF(ctx context.Context, filename string, content []byte, password string, onProgress func(percent int)) (*entity.AdminUploadResponse, error)
	AdminListFiles(ctx context.Context, password string) (*entity.AdminFilesResponse, error)
	AdminDeleteFile(ctx context.Context, filename, password string) (*entity.AdminDeleteResponse, error)
}
