// Package rewrite runs the stateless text transforms (grammar check
// and re-drafting) through one usecase parameterized by the transform,
// instead of a separate state container per panel.
package rewrite

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/entity"
)

type Connector interface {
	Proofread(ctx context.Context, text string) (*entity.RewriteResponse, error)
	Redraft(ctx context.Context, text string) (*entity.RewriteResponse, error)
}

type Transform string

const (
	TransformProofread Transform = "proofread"
	TransformRedraft   Transform = "redraft"
)

type RewriteUsecase struct {
	connector Connector
	logger    *zap.Logger

	mu     sync.Mutex
	result string
}

func NewUsecase(connector Connector, logger *zap.Logger) *RewriteUsecase {
	return &RewriteUsecase{
		connector: connector,
		logger:    logger,
	}
}

// Run applies the transform to the text and stores the result. Blank
// input is rejected locally; on failure the previous result is kept.
func (uc *RewriteUsecase) Run(ctx context.Context, transform Transform, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", entity.ErrEmptyText
	}

	var (
		resp *entity.RewriteResponse
		err  error
	)
	switch transform {
	case TransformProofread:
		resp, err = uc.connector.Proofread(ctx, text)
	case TransformRedraft:
		resp, err = uc.connector.Redraft(ctx, text)
	default:
		return "", fmt.Errorf("unknown transform: %s", transform)
	}
	if err != nil {
		return "", err
	}

	uc.mu.Lock()
	uc.result = resp.Corrected
	uc.mu.Unlock()

	return resp.Corrected, nil
}

// Result returns the last successful transform output.
func (uc *RewriteUsecase) Result() string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.result
}
