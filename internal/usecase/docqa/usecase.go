package docqa

import (
	"context"
	"strings"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/entity"
	"github.com/offlinellm/client-go/internal/usecase/conversation"
)

// DocQAUsecase tracks question/answer turns against either the
// session's uploaded document, the persistent knowledge base, or both.
// Unlike chat, neither questions nor uploads are single-flighted: the
// backend serializes per-session writes, and each answer lands in the
// turn it was asked for.
type DocQAUsecase struct {
	connector Connector
	session   Session
	logger    *zap.Logger

	log *conversation.Log[entity.QaTurn]

	mu            sync.Mutex
	documentOnly  bool
	hasDocument   bool
	uploadedFiles []string
	uploads       int
}

func NewUsecase(connector Connector, session Session, logger *zap.Logger) *DocQAUsecase {
	return &DocQAUsecase{
		connector: connector,
		session:   session,
		logger:    logger,
		log:       conversation.New[entity.QaTurn](conversation.Config{DropOnError: true}),
	}
}

// SetDocumentOnly switches answers to come solely from the uploaded
// document instead of also consulting the persistent knowledge base.
func (uc *DocQAUsecase) SetDocumentOnly(on bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.documentOnly = on
}

func (uc *DocQAUsecase) DocumentOnly() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.documentOnly
}

func (uc *DocQAUsecase) HasUploadedDocument() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.hasDocument
}

// UploadedFiles returns the de-duplicated filenames indexed this
// session, in first-upload order.
func (uc *DocQAUsecase) UploadedFiles() []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]string, len(uc.uploadedFiles))
	copy(out, uc.uploadedFiles)
	return out
}

// Uploading reports whether any upload is in flight.
func (uc *DocQAUsecase) Uploading() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.uploads > 0
}

// Turns returns the current turn list in insertion order.
func (uc *DocQAUsecase) Turns() []entity.QaTurn {
	return uc.log.Snapshot()
}

// ToggleSources flips the citation visibility of an answered turn.
func (uc *DocQAUsecase) ToggleSources(index int) bool {
	return uc.log.Mutate(index, func(t *entity.QaTurn) {
		if !t.Pending {
			t.SourcesVisible = !t.SourcesVisible
		}
	})
}

// Ask submits a question. The turn appears pending immediately; on
// success it is filled in place, on failure it is removed entirely and
// the error returned.
//
// Retrieval routing:
//   - document-only toggle on and a document uploaded this session:
//     knowledge-base query scoped to the session id
//   - a document uploaded this session: session query that also
//     consults the persistent knowledge base
//   - otherwise: persistent knowledge base only
func (uc *DocQAUsecase) Ask(ctx context.Context, question string) (*entity.QaTurn, error) {
	if strings.TrimSpace(question) == "" {
		return nil, entity.ErrEmptyQuestion
	}

	pending, err := uc.log.Begin(&entity.QaTurn{Question: question, Pending: true})
	if err != nil {
		return nil, err
	}

	resp, err := uc.route(ctx, question)
	if err != nil {
		pending.Fail()
		ctxzap.Warn(ctx, "question failed", zap.Error(err))
		return nil, err
	}

	var answered entity.QaTurn
	pending.Succeed(func(t *entity.QaTurn) {
		t.Answer = resp.Answer
		t.Sources = resp.Sources
		t.Pending = false
		t.SourcesVisible = false
		answered = *t
	})

	return &answered, nil
}

func (uc *DocQAUsecase) route(ctx context.Context, question string) (*entity.QAResponse, error) {
	uc.mu.Lock()
	documentOnly := uc.documentOnly
	hasDocument := uc.hasDocument
	uc.mu.Unlock()

	sessionID := uc.session.SessionID()
	model := uc.session.Model()

	switch {
	case documentOnly && hasDocument:
		return uc.connector.DocQA(ctx, question, sessionID, model)
	case hasDocument:
		return uc.connector.SessionQA(ctx, question, sessionID, model, true)
	default:
		return uc.connector.DocQA(ctx, question, "", model)
	}
}

// UploadFile indexes a PDF for this session. On success the filename
// joins the de-duplicated set and subsequent questions consult the
// document; on failure prior upload state is untouched. Concurrent
// uploads are permitted.
func (uc *DocQAUsecase) UploadFile(ctx context.Context, filename string, content []byte) (*entity.UploadPDFResponse, error) {
	uc.mu.Lock()
	uc.uploads++
	uc.mu.Unlock()

	resp, err := uc.connector.UploadPDF(ctx, uc.session.SessionID(), filename, content)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.uploads--

	if err != nil {
		return nil, err
	}

	uc.hasDocument = true
	if !contains(uc.uploadedFiles, filename) {
		uc.uploadedFiles = append(uc.uploadedFiles, filename)
	}

	return resp, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
