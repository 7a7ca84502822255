package capkverr

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_FormatsWithoutCause(t *testing.T) {
	err := NotRegistered("no credential for %q", "plugin-x")
	assert.Equal(t, `NOT_REGISTERED: no credential for "plugin-x"`, err.Error())
}

func TestError_FormatsWithCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := CallbackFailure(cause, "callback for %q failed", "core")
	assert.Contains(t, err.Error(), "CALLBACK_FAILURE")
	assert.Contains(t, err.Error(), "boom")
}

func TestIs_MatchesSameKindRegardlessOfMessage(t *testing.T) {
	a := PermissionDenied("first message")
	b := PermissionDenied("a completely different message")
	assert.True(t, stderrors.Is(a, b))
}

func TestIs_DoesNotMatchDifferentKind(t *testing.T) {
	a := PermissionDenied("denied")
	b := NotRegistered("not registered")
	assert.False(t, stderrors.Is(a, b))
}

func TestIsHelper_ClassifiesByKind(t *testing.T) {
	err := KeyAbsent("key %q is absent", "foo")
	assert.True(t, Is(err, KindKeyAbsent))
	assert.False(t, Is(err, KindPermissionDenied))
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
}

func TestWrap_PreservesUnderlyingError(t *testing.T) {
	cause := ConfigurationError("bad config")
	wrapped := Wrap(cause, "loading zone roots")

	assert.True(t, Is(wrapped, KindConfiguration))
	assert.Contains(t, wrapped.Error(), "loading zone roots")
}
