// Package alpha exists only so capkv's tests can exercise a second
// source-file identity distinct from the test file itself: every
// exported function here runs one frame deeper than the calling test,
// so CallerResolver.Resolve sees this package's own file as the
// innermost frame under a configured zone root and reports Name
// "alpha".
package alpha

import (
	"github.com/capkv/capkv/internal/credential"
	"github.com/capkv/capkv/internal/registry"
	"github.com/capkv/capkv/internal/router"
)

func Register(reg *registry.CredentialRegistry, level credential.Level) (credential.Credential, error) {
	return reg.Register(level)
}

func Validate(reg *registry.CredentialRegistry, op credential.Operation) bool {
	return reg.Validate(op)
}

func Fetch(reg *registry.CredentialRegistry, op credential.Operation) (credential.Credential, error) {
	return reg.Fetch(op)
}

func TokenOf(reg *registry.CredentialRegistry) (string, error) {
	return reg.TokenOf()
}

func Set(r *router.NamespaceRouter, key, value string) error { return r.Set(key, value) }

func Get(r *router.NamespaceRouter, key, def string) (string, error) { return r.Get(key, def) }

func Has(r *router.NamespaceRouter, key string) (bool, error) { return r.Has(key) }

func SharedSet(r *router.NamespaceRouter, key, value string) error { return r.SharedSet(key, value) }

func SharedGet(r *router.NamespaceRouter, key, def string) (string, error) { return r.SharedGet(key, def) }

func ReadonlySet(r *router.NamespaceRouter, key, value string) error {
	return r.ReadonlySet(key, value)
}

func ReadonlyGet(r *router.NamespaceRouter, key, def string) (string, error) {
	return r.ReadonlyGet(key, def)
}
