package telegram

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/offlinellm/client-go/internal/usecase/chat"
	"github.com/offlinellm/client-go/internal/usecase/docqa"
)

// endSessionTimeout bounds the backend purge fired from cache eviction,
// which runs outside any request context.
const endSessionTimeout = 10 * time.Second

// Session bundles the per-chat conversation state: one chat session and
// the document QA panel bound to it.
type Session struct {
	Chat  *chat.ChatUsecase
	DocQA *docqa.DocQAUsecase
}

// SessionFactory builds a fresh Session with a new backend session id.
type SessionFactory func() *Session

// Sessions maps Telegram chat ids to Sessions with a TTL. An expired or
// deleted entry has its backend session purged on eviction.
type Sessions struct {
	// mu serializes get-or-create: handlers run in per-message
	// goroutines, and a losing duplicate session would never have its
	// backend state purged (cache overwrites do not fire OnEvicted).
	mu      sync.Mutex
	cache   *cache.Cache
	factory SessionFactory
	logger  *zap.Logger
}

func NewSessions(ttl time.Duration, factory SessionFactory, logger *zap.Logger) *Sessions {
	c := cache.New(ttl, ttl/2)
	s := &Sessions{cache: c, factory: factory, logger: logger}

	c.OnEvicted(func(key string, value interface{}) {
		sess, ok := value.(*Session)
		if !ok {
			return
		}

		// async: eviction fires under the sessions lock
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), endSessionTimeout)
			defer cancel()

			if err := sess.Chat.End(ctx); err != nil {
				logger.Warn("failed to purge backend session on eviction",
					zap.String("chat", key),
					zap.Error(err),
				)
			}
		}()
	})

	return s
}

// Get returns the chat's session, creating one on first contact. Each
// access refreshes the TTL so active conversations never expire.
func (s *Sessions) Get(chatID int64) *Session {
	key := strconv.FormatInt(chatID, 10)

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(key); ok {
		sess := v.(*Session)
		s.cache.SetDefault(key, sess)
		return sess
	}

	sess := s.factory()
	s.cache.SetDefault(key, sess)
	s.logger.Info("new telegram session",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", sess.Chat.SessionID()),
	)
	return sess
}

// Reset drops the chat's session; the eviction hook purges the backend
// state. The next message starts a fresh session.
func (s *Sessions) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(strconv.FormatInt(chatID, 10))
}
