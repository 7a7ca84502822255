package router

import "github.com/capkv/capkv/internal/capkvlog"

type options struct {
	logger *capkvlog.Logger
}

func defaultOptions() *options {
	return &options{logger: capkvlog.New("router")}
}

// Option configures a NamespaceRouter at construction time.
type Option func(*options)

// WithLogger overrides the default router logger.
func WithLogger(log *capkvlog.Logger) Option {
	return func(o *options) { o.logger = log }
}
