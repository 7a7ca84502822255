// Package registry implements CredentialRegistry: issuing, looking up,
// and validating credentials, including the admin escalation rule and
// register-callback dispatch.
//
// Grounded on original_source/src/services/CredentialManager.py,
// translated from Python's secrets.token_urlsafe-based key and
// f_locals-free method dispatch into Go's credential.TokenFactory and
// an explicit sync.Mutex guarding the atomic register path: the table
// insert, callback fan-out, and per-caller private-cell creation must
// be observable as one step.
package registry

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/capkv/capkv/internal/capkverr"
	"github.com/capkv/capkv/internal/capkvlog"
	"github.com/capkv/capkv/internal/credential"
	"github.com/capkv/capkv/internal/resolver"
)

// Callback is invoked with every newly issued credential. A callback
// must not call back into the registry's Register, RegisterCallback,
// Fetch or Validate, for any caller; this package does not detect that
// misuse, it only documents the constraint (the registry-wide lock held
// during dispatch is not re-entrant, so such a same-goroutine call
// deadlocks).
type Callback func(credential.Credential)

type registeredCallback struct {
	ptr uintptr // identity of cb, for RegisterCallback's idempotency check
	cb  Callback
}

// CredentialRegistry issues, stores, and validates credentials.
type CredentialRegistry struct {
	mu        sync.Mutex
	resolver  *resolver.CallerResolver
	table     *credential.Table
	tokens    *credential.TokenFactory
	callbacks []registeredCallback
	log       *capkvlog.Logger
}

// New builds a CredentialRegistry over the given zone roots.
func New(zoneRoots []string, opts ...Option) (*CredentialRegistry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	res, err := resolver.New(zoneRoots, o.resolverOpts...)
	if err != nil {
		return nil, err
	}

	tokens, err := credential.NewTokenFactory()
	if err != nil {
		return nil, err
	}

	return &CredentialRegistry{
		resolver: res,
		table:    credential.NewTable(),
		tokens:   tokens,
		log:      o.logger,
	}, nil
}

// Resolve exposes the underlying CallerResolver so NamespaceRouter can
// recover the caller's identity without re-resolving through a second
// resolver instance.
func (r *CredentialRegistry) Resolve() (resolver.Identity, error) {
	return r.resolver.Resolve()
}

// Register issues a new Credential for the resolved caller.
func (r *CredentialRegistry) Register(level credential.Level) (credential.Credential, error) {
	identity, err := r.resolver.Resolve()
	if err != nil {
		return credential.Credential{}, err
	}

	if level == credential.LevelAdmin && !credential.CanEscalateToAdmin(identity.Zone) {
		return credential.Credential{}, capkverr.PermissionDenied(
			"zone %q is not permitted to hold an ADMIN credential (caller %q)", identity.Zone, identity.Name)
	}

	token, err := r.tokens.Make(identity.Name)
	if err != nil {
		return credential.Credential{}, err
	}

	now := time.Now()
	cred := credential.Credential{
		Name:        identity.Name,
		Token:       token,
		Level:       level,
		Zone:        identity.Zone,
		Enabled:     false,
		CreatedAt:   now,
		LastAccess:  now,
		AccessCount: 0,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.table.Put(cred)
	r.dispatchCallbacks(cred)

	return cred, nil
}

// dispatchCallbacks fires every registered callback with cred,
// containing any panic/error as a CallbackFailure logged at warning
// level. Called with r.mu held.
func (r *CredentialRegistry) dispatchCallbacks(cred credential.Credential) {
	correlationID := uuid.NewString()

	for _, rc := range r.callbacks {
		r.runCallback(rc.cb, cred, correlationID)
	}
}

func (r *CredentialRegistry) runCallback(cb Callback, cred credential.Credential, correlationID string) {
	defer func() {
		if rec := recover(); rec != nil {
			err := capkverr.CallbackFailure(fmt.Errorf("%v", rec),
				"register callback panicked for caller %q", cred.Name)
			r.log.WithField("correlation_id", correlationID).Warnf("%v", err)
		}
	}()
	cb(cred)
}

// RegisterCallback adds cb to the fire-list. Idempotent on the
// identity of cb (its function pointer).
func (r *CredentialRegistry) RegisterCallback(cb Callback) {
	ptr := reflect.ValueOf(cb).Pointer()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.callbacks {
		if existing.ptr == ptr {
			return
		}
	}
	r.callbacks = append(r.callbacks, registeredCallback{ptr: ptr, cb: cb})
}

// Validate reports whether the resolved caller's credential permits op.
// It delegates to Fetch and discards the result: a credential that
// validates successfully is, by construction, always left enabled, so
// this is never a lighter-weight check than Fetch — only a
// non-erroring one: every resolution or permission failure collapses
// to false, never an error.
func (r *CredentialRegistry) Validate(op credential.Operation) bool {
	_, err := r.Fetch(op)
	return err == nil
}

// Fetch validates like Validate, but on success returns an updated
// Credential (enabled, with bumped stats) and persists the update. On
// failure it returns PermissionDenied for both a name mismatch (no
// credential for the resolved caller) and a level mismatch, or
// propagates an UnknownCaller resolution error.
func (r *CredentialRegistry) Fetch(op credential.Operation) (credential.Credential, error) {
	identity, err := r.resolver.Resolve()
	if err != nil {
		r.auditFailed("", op, err)
		return credential.Credential{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.table.Get(identity.Name)
	if !ok {
		err := capkverr.PermissionDenied(
			"no credential registered for caller %q%s", identity.Name, r.suggestion(identity.Name))
		r.auditFailed(identity.Name, op, err)
		return credential.Credential{}, err
	}
	if !cred.Level.Permits(op) {
		err := capkverr.PermissionDenied(
			"credential %q (level %s) does not permit %s", identity.Name, cred.Level, op)
		r.auditFailed(identity.Name, op, err)
		return credential.Credential{}, err
	}

	updated := cred.WithUpdatedAccess(time.Now())
	r.table.Put(updated)

	ac := credential.NewAccessContext(updated.Name, "", op, updated.Name, nil)
	r.log.WithField("access_context", ac).Debugf("%s: %s", credential.SecurityAllowed, op)

	return updated, nil
}

// auditFailed logs a denied/errored Fetch as an AccessContext classified
// through credential.Classify, supplemented from
// original_source/src/primitives/AccessContext.py. It never changes
// control flow: Fetch's error return is already final by the time this
// runs.
func (r *CredentialRegistry) auditFailed(caller string, op credential.Operation, err error) {
	ac := credential.NewAccessContext(caller, "", op, caller, nil)
	r.log.WithField("access_context", ac).Warnf("%s: %s: %v", credential.Classify(err), op, err)
}

// TokenOf returns the token of the resolved caller's credential.
func (r *CredentialRegistry) TokenOf() (string, error) {
	identity, err := r.resolver.Resolve()
	if err != nil {
		return "", err
	}
	cred, ok := r.table.Get(identity.Name)
	if !ok {
		return "", capkverr.NotRegistered("no credential registered for caller %q%s", identity.Name, r.suggestion(identity.Name))
	}
	return cred.Token, nil
}

// Count returns the number of distinct registered names.
func (r *CredentialRegistry) Count() int {
	return r.table.Count()
}

// Contains reports whether name has a registered credential.
func (r *CredentialRegistry) Contains(name string) bool {
	return r.table.Contains(name)
}

// suggestion returns a parenthetical "(did you mean %q?)" hint against
// the closest registered name, or "" if there are no registered names
// or none are close enough to be useful.
func (r *CredentialRegistry) suggestion(name string) string {
	names := r.table.Names()
	if len(names) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", ranks[0].Target)
}
