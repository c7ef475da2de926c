package rewrite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/usecase/rewrite"
)

type stubConnector struct {
	proofreads int
	redrafts   int
	err        error
}

func (s *stubConnector) Proofread(ctx context.Context, text string) (*entity.RewriteResponse, error) {
	s.proofreads++
	if s.err != nil {
		return nil, s.err
	}
	return &entity.RewriteResponse{Corrected: "proofread: " + text}, nil
}

func (s *stubConnector) Redraft(ctx context.Context, text string) (*entity.RewriteResponse, error) {
	s.redrafts++
	if s.err != nil {
		return nil, s.err
	}
	return &entity.RewriteResponse{Corrected: "redrafted: " + text}, nil
}

var _ rewrite.Connector = (*stubConnector)(nil)

func TestRunDispatchesByTransform(t *testing.T) {
	stub := &stubConnector{}
	uc := rewrite.NewUsecase(stub, zap.NewNop())

	out, err := uc.Run(context.Background(), rewrite.TransformProofread, "sum text")
	require.NoError(t, err)
	assert.Equal(t, "proofread: sum text", out)

	out, err = uc.Run(context.Background(), rewrite.TransformRedraft, "sum text")
	require.NoError(t, err)
	assert.Equal(t, "redrafted: sum text", out)

	assert.Equal(t, 1, stub.proofreads)
	assert.Equal(t, 1, stub.redrafts)
	assert.Equal(t, "redrafted: sum text", uc.Result())
}

func TestRunTrimsAndRejectsBlank(t *testing.T) {
	stub := &stubConnector{}
	uc := rewrite.NewUsecase(stub, zap.NewNop())

	_, err := uc.Run(context.Background(), rewrite.TransformProofread, "  \n ")
	assert.ErrorIs(t, err, entity.ErrEmptyText)
	assert.Zero(t, stub.proofreads)

	out, err := uc.Run(context.Background(), rewrite.TransformProofread, "  padded  ")
	require.NoError(t, err)
	assert.Equal(t, "proofread: padded", out)
}

func TestRunKeepsPreviousResultOnFailure(t *testing.T) {
	stub := &stubConnector{}
	uc := rewrite.NewUsecase(stub, zap.NewNop())

	_, err := uc.Run(context.Background(), rewrite.TransformRedraft, "good")
	require.NoError(t, err)

	stub.err = errors.New("model busy")
	_, err = uc.Run(context.Background(), rewrite.TransformRedraft, "bad")
	require.Error(t, err)

	assert.Equal(t, "redrafted: good", uc.Result())
}

func TestRunUnknownTransform(t *testing.T) {
	uc := rewrite.NewUsecase(&stubConnector{}, zap.NewNop())

	_, err := uc.Run(context.Background(), rewrite.Transform("summarize"), "text")
	assert.Error(t, err)
}
