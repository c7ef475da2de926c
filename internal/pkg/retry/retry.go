package retry

import (
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = time.Second
)

// RetryConfig describes a bounded retry with linear backoff. Attempts
// counts retries after the initial call, each waiting n*Delay (1s, 2s,
// 3s with the defaults).
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"1s"`
}

func (rc *RetryConfig) ToRetryOptions() []retry.Option {
	delay := rc.Delay
	return []retry.Option{
		// retry-go counts total calls, not retries
		retry.Attempts(rc.Attempts + 1),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n+1) * delay
		}),
		retry.LastErrorOnly(true),
	}
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
	}
}
