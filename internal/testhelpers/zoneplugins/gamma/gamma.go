// Package gamma lives under a zone root whose basename contains
// "plugin", so tests configuring that root can exercise the
// CanEscalateToAdmin denial path.
package gamma

import (
	"github.com/capkv/capkv/internal/credential"
	"github.com/capkv/capkv/internal/registry"
)

func Register(reg *registry.CredentialRegistry, level credential.Level) (credential.Credential, error) {
	return reg.Register(level)
}
