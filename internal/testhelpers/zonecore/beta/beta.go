// Package beta is alpha's twin, giving capkv's tests a second distinct
// caller identity under the same zone root (see package alpha's doc
// comment).
package beta

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

func Set(r *router.NamespaceRouter, key, value string) error { return r.Set(key, value) }

func Get(r *router.NamespaceRouter, key, def string) (string, error) { return r.Get(key, def) }

func SharedSet(r *router.NamespaceRouter, key, value string) error { return r.SharedSet(key, value) }

func SharedGet(r *router.NamespaceRouter, key, def string) (string, error) { return r.SharedGet(key, def) }

func ReadonlySet(r *router.NamespaceRouter, key, value string) error {
	return r.ReadonlySet(key, value)
}

func ReadonlyGet(r *router.NamespaceRouter, key, def string) (string, error) {
	return r.ReadonlyGet(key, def)
}
