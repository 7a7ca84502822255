// Package router implements NamespaceRouter: the credential-gated
// facade over three namespaces — a private
// per-caller cell, a shared read-write cell, and a shared
// admin-writable read-only cell.
//
// Grounded on original_source/src/services/KVStore.py, translated
// method-for-method (private get/set/has/delete/clear/keys/values,
// shared_*, readonly_*) into Go, with every namespace backed by a
// cell.ProtectedCell[string,string] whose sole authorized accessor is
// NamespaceRouter itself (cell.Type[*NamespaceRouter]()) — mirroring
// KVStore's ProtectedStore(allowed_accessor=KVStore). Per-operation
// authorization is enforced one layer up, against the registry.
package router

import (
	"github.com/capkv/capkv/internal/capkverr"
	"github.com/capkv/capkv/internal/capkvlog"
	"github.com/capkv/capkv/internal/cell"
	"github.com/capkv/capkv/internal/credential"
	"github.com/capkv/capkv/internal/registry"
)

// NamespaceRouter is the credential-gated key-value facade.
type NamespaceRouter struct {
	registry    *registry.CredentialRegistry
	callerCells *cell.ProtectedCell[string, *cell.ProtectedCell[string, string]]
	sharedRW    *cell.ProtectedCell[string, string]
	sharedAdmin *cell.ProtectedCell[string, string]
	log         *capkvlog.Logger
}

// New builds a NamespaceRouter over reg and registers its
// per-caller-cell provisioning callback: a fresh private namespace is
// created the instant a credential is registered, before the caller
// can have issued a single operation.
func New(reg *registry.CredentialRegistry, opts ...Option) (*NamespaceRouter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	callerCells, err := cell.New[string, *cell.ProtectedCell[string, string]](cell.Type[*NamespaceRouter]())
	if err != nil {
		return nil, err
	}
	sharedRW, err := cell.New[string, string](cell.Type[*NamespaceRouter]())
	if err != nil {
		return nil, err
	}
	sharedAdmin, err := cell.New[string, string](cell.Type[*NamespaceRouter]())
	if err != nil {
		return nil, err
	}

	n := &NamespaceRouter{
		registry:    reg,
		callerCells: callerCells,
		sharedRW:    sharedRW,
		sharedAdmin: sharedAdmin,
		log:         o.logger,
	}
	reg.RegisterCallback(n.onCredentialRegistered)
	return n, nil
}

// onCredentialRegistered provisions a fresh private cell for a newly
// registered caller. Failure here is logged, not propagated — the
// registry treats register-callback failure as non-fatal to
// registration.
func (n *NamespaceRouter) onCredentialRegistered(cred credential.Credential) {
	private, err := cell.New[string, string](cell.Type[*NamespaceRouter]())
	if err != nil {
		n.log.Errorf("failed to build private namespace for caller %q: %v", cred.Name, err)
		return
	}
	if err := n.callerCells.Set(n, cred.Name, private); err != nil {
		n.log.Errorf("failed to install private namespace for caller %q: %v", cred.Name, err)
	}
}

// callerCell returns the resolved caller's private namespace.
func (n *NamespaceRouter) callerCell() (*cell.ProtectedCell[string, string], error) {
	identity, err := n.registry.Resolve()
	if err != nil {
		return nil, err
	}
	private, ok, err := n.callerCells.Get(n, identity.Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, capkverr.NotRegistered("no private namespace for caller %q: register a credential first", identity.Name)
	}
	return private, nil
}

// --- private namespace ---

// Set stores value under key in the resolved caller's private namespace.
func (n *NamespaceRouter) Set(key, value string) error {
	if _, err := n.registry.Fetch(credential.OpWrite); err != nil {
		return err
	}
	private, err := n.callerCell()
	if err != nil {
		return err
	}
	return private.Set(n, key, value)
}

// Get returns the value under key in the caller's private namespace, or
// def if absent.
func (n *NamespaceRouter) Get(key, def string) (string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return def, err
	}
	private, err := n.callerCell()
	if err != nil {
		return def, err
	}
	return private.GetOrDefault(n, key, def)
}

// Has reports whether key exists in the caller's private namespace.
func (n *NamespaceRouter) Has(key string) (bool, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return false, err
	}
	private, err := n.callerCell()
	if err != nil {
		return false, err
	}
	return private.Has(n, key)
}

// Delete removes key from the caller's private namespace.
func (n *NamespaceRouter) Delete(key string) error {
	if _, err := n.registry.Fetch(credential.OpWrite); err != nil {
		return err
	}
	private, err := n.callerCell()
	if err != nil {
		return err
	}
	return private.Delete(n, key)
}

// Clear empties the caller's private namespace.
func (n *NamespaceRouter) Clear() error {
	if _, err := n.registry.Fetch(credential.OpWrite); err != nil {
		return err
	}
	private, err := n.callerCell()
	if err != nil {
		return err
	}
	return private.Clear(n)
}

// Keys returns every key in the caller's private namespace.
func (n *NamespaceRouter) Keys() ([]string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return nil, err
	}
	private, err := n.callerCell()
	if err != nil {
		return nil, err
	}
	return private.Keys(n)
}

// Values returns every value in the caller's private namespace.
func (n *NamespaceRouter) Values() ([]string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return nil, err
	}
	private, err := n.callerCell()
	if err != nil {
		return nil, err
	}
	return private.Values(n)
}

// --- shared read-write namespace: every caller with WRITE permission
// may set/delete/clear; every caller with READ permission may read. ---

func (n *NamespaceRouter) SharedSet(key, value string) error {
	if _, err := n.registry.Fetch(credential.OpWrite); err != nil {
		return err
	}
	return n.sharedRW.Set(n, key, value)
}

func (n *NamespaceRouter) SharedGet(key, def string) (string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return def, err
	}
	return n.sharedRW.GetOrDefault(n, key, def)
}

func (n *NamespaceRouter) SharedHas(key string) (bool, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return false, err
	}
	return n.sharedRW.Has(n, key)
}

func (n *NamespaceRouter) SharedDelete(key string) error {
	if _, err := n.registry.Fetch(credential.OpWrite); err != nil {
		return err
	}
	return n.sharedRW.Delete(n, key)
}

func (n *NamespaceRouter) SharedClear() error {
	if _, err := n.registry.Fetch(credential.OpWrite); err != nil {
		return err
	}
	return n.sharedRW.Clear(n)
}

func (n *NamespaceRouter) SharedKeys() ([]string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return nil, err
	}
	return n.sharedRW.Keys(n)
}

func (n *NamespaceRouter) SharedValues() ([]string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return nil, err
	}
	return n.sharedRW.Values(n)
}

// --- shared read-only namespace: every caller with READ permission
// may read; only an ADMIN-level credential may mutate it. ---

// isAdminWriter fetches a WRITE credential and reports whether it
// holds admin level, the gate every readonly_* mutation shares.
func (n *NamespaceRouter) isAdminWriter() (credential.Credential, error) {
	cred, err := n.registry.Fetch(credential.OpWrite)
	if err != nil {
		return credential.Credential{}, err
	}
	if cred.Level != credential.LevelAdmin {
		return credential.Credential{}, capkverr.PermissionDenied(
			"admin credential required to mutate the shared read-only namespace (caller %q holds %s)", cred.Name, cred.Level)
	}
	return cred, nil
}

func (n *NamespaceRouter) ReadonlySet(key, value string) error {
	if _, err := n.isAdminWriter(); err != nil {
		return err
	}
	return n.sharedAdmin.Set(n, key, value)
}

func (n *NamespaceRouter) ReadonlyGet(key, def string) (string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return def, err
	}
	return n.sharedAdmin.GetOrDefault(n, key, def)
}

func (n *NamespaceRouter) ReadonlyHas(key string) (bool, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return false, err
	}
	return n.sharedAdmin.Has(n, key)
}

func (n *NamespaceRouter) ReadonlyDelete(key string) error {
	if _, err := n.isAdminWriter(); err != nil {
		return err
	}
	return n.sharedAdmin.Delete(n, key)
}

func (n *NamespaceRouter) ReadonlyClear() error {
	if _, err := n.isAdminWriter(); err != nil {
		return err
	}
	return n.sharedAdmin.Clear(n)
}

func (n *NamespaceRouter) ReadonlyKeys() ([]string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return nil, err
	}
	return n.sharedAdmin.Keys(n)
}

func (n *NamespaceRouter) ReadonlyValues() ([]string, error) {
	if _, err := n.registry.Fetch(credential.OpRead); err != nil {
		return nil, err
	}
	return n.sharedAdmin.Values(n)
}
