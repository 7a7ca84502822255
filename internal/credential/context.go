package credential

import (
	"time"

	"github.com/capkv/capkv/internal/capkverr"
)

// AccessContext is a diagnostic audit record built on every
// validate/fetch call, supplemented from
// original_source/src/primitives/AccessContext.py.
//
// The Python source defaults its timestamp field to the function
// reference time.time itself rather than its invoked value — almost
// certainly a defect (see DESIGN.md). Timestamp here is therefore a
// concrete time.Time set by NewAccessContext, never a deferred
// callable.
type AccessContext struct {
	Name      string
	Key       string
	Operation Operation
	Caller    string
	Value     interface{}
	Timestamp time.Time
}

// NewAccessContext builds an AccessContext stamped with the current
// wall-clock time.
func NewAccessContext(name, key string, op Operation, caller string, value interface{}) AccessContext {
	return AccessContext{
		Name:      name,
		Key:       key,
		Operation: op,
		Caller:    caller,
		Value:     value,
		Timestamp: time.Now(),
	}
}

// SecurityResult is a richer outcome taxonomy than a boolean validate()
// result, supplemented from
// original_source/src/primitives/SecurityResult.py. It is purely
// descriptive: capkv attaches one to audit log entries but never gates
// an operation on it. RateLimited in particular is never produced by
// Classify — capkv implements no rate limiting.
type SecurityResult string

const (
	SecurityAllowed             SecurityResult = "allowed"
	SecurityDenied              SecurityResult = "denied"
	SecurityRateLimited         SecurityResult = "rate_limited"
	SecurityInvalidToken        SecurityResult = "invalid_token"
	SecurityInvalidPermissions  SecurityResult = "invalid_permissions"
	SecurityUnauthorizedPath    SecurityResult = "unauthorized_path"
)

// Classify maps an error from this package's taxonomy to a
// SecurityResult for audit logging. A nil error classifies as Allowed.
func Classify(err error) SecurityResult {
	if err == nil {
		return SecurityAllowed
	}
	switch {
	case capkverr.Is(err, capkverr.KindUnknownCaller):
		return SecurityUnauthorizedPath
	case capkverr.Is(err, capkverr.KindNotRegistered):
		return SecurityInvalidToken
	case capkverr.Is(err, capkverr.KindPermissionDenied):
		return SecurityInvalidPermissions
	default:
		return SecurityDenied
	}
}
