package store

import (
	"strings"
	"time"

	"github.com/niksmo/shopcore/pkg/retry"
)

const (
	defaultWriteAttempts = 3
	defaultWriteBackoff  = 50 * time.Millisecond
)

type Option func(*options)

type options struct {
	async    bool
	retryCfg retry.Config
}

func defaultOptions() options {
	return options{
		retryCfg: retry.Config{
			MaxAttempts: defaultWriteAttempts,
			Backoff:     retry.ExponentialBackoff(defaultWriteBackoff),
			ShouldRetry: retry.NotCanceled,
		},
	}
}

// AsyncPersistenceOpt makes mutations return before their snapshot is
// written. Close flushes the latest snapshot.
func AsyncPersistenceOpt() Option {
	return func(o *options) {
		o.async = true
	}
}

func RetryOpt(cfg retry.Config) Option {
	return func(o *options) {
		o.retryCfg = cfg
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}
