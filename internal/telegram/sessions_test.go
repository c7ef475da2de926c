package telegram_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/integration/backend"
	"github.com/offlinellm/client-go/internal/pkg/retry"
	"github.com/offlinellm/client-go/internal/telegram"
	"github.com/offlinellm/client-go/internal/usecase/chat"
	"github.com/offlinellm/client-go/internal/usecase/docqa"
)

func newTestSessions(t *testing.T) *telegram.Sessions {
	t.Helper()
	logger := zap.NewNop()
	connector := backend.NewMockConnector(logger)

	return telegram.NewSessions(time.Hour, func() *telegram.Session {
		chatUC := chat.NewUsecase(connector, retry.RetryConfig{Attempts: 1, Delay: time.Millisecond}, "", logger)
		return &telegram.Session{
			Chat:  chatUC,
			DocQA: docqa.NewUsecase(connector, chatUC, logger),
		}
	}, logger)
}

func TestGetReturnsSameSessionPerChat(t *testing.T) {
	sessions := newTestSessions(t)

	first := sessions.Get(42)
	second := sessions.Get(42)
	assert.Same(t, first, second)
	assert.Equal(t, first.Chat.SessionID(), second.Chat.SessionID())
}

func TestSessionsAreIsolatedPerChat(t *testing.T) {
	sessions := newTestSessions(t)

	a := sessions.Get(1)
	b := sessions.Get(2)
	assert.NotEqual(t, a.Chat.SessionID(), b.Chat.SessionID())
}

func TestConcurrentFirstContactCreatesOneSession(t *testing.T) {
	sessions := newTestSessions(t)

	const callers = 16
	got := make([]*telegram.Session, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = sessions.Get(99)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, got[0], got[i])
	}
}

func TestResetStartsFreshSession(t *testing.T) {
	sessions := newTestSessions(t)

	before := sessions.Get(7).Chat.SessionID()
	sessions.Reset(7)
	after := sessions.Get(7).Chat.SessionID()
	assert.NotEqual(t, before, after)
}
