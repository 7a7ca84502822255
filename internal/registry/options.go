package registry

import (
	"github.com/capkv/capkv/internal/capkvlog"
	"github.com/capkv/capkv/internal/resolver"
)

type options struct {
	logger       *capkvlog.Logger
	resolverOpts []resolver.Option
}

func defaultOptions() *options {
	return &options{
		logger: capkvlog.New("registry"),
	}
}

// Option configures a CredentialRegistry at construction time.
type Option func(*options)

// WithLogger overrides the default registry logger.
func WithLogger(log *capkvlog.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithResolverOptions forwards options to the underlying CallerResolver,
// e.g. resolver.WithFilesystem for tests that use an in-memory afero.Fs.
func WithResolverOptions(opts ...resolver.Option) Option {
	return func(o *options) {
		o.resolverOpts = append(o.resolverOpts, opts...)
	}
}
