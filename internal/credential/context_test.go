package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/capkv/capkv/internal/capkverr"
)

func TestNewAccessContext_StampsWallClockTimestamp(t *testing.T) {
	before := time.Now()
	ctx := NewAccessContext("core", "feature-flag", OpRead, "core", "on")
	after := time.Now()

	assert.False(t, ctx.Timestamp.Before(before))
	assert.False(t, ctx.Timestamp.After(after))
	assert.Equal(t, "core", ctx.Name)
	assert.Equal(t, "feature-flag", ctx.Key)
	assert.Equal(t, OpRead, ctx.Operation)
}

func TestClassify_NilErrorIsAllowed(t *testing.T) {
	assert.Equal(t, SecurityAllowed, Classify(nil))
}

func TestClassify_MapsEachTaxonomyMember(t *testing.T) {
	assert.Equal(t, SecurityUnauthorizedPath, Classify(capkverr.UnknownCaller("x")))
	assert.Equal(t, SecurityInvalidToken, Classify(capkverr.NotRegistered("x")))
	assert.Equal(t, SecurityInvalidPermissions, Classify(capkverr.PermissionDenied("x")))
}

func TestClassify_UnmappedKindFallsBackToDenied(t *testing.T) {
	assert.Equal(t, SecurityDenied, Classify(capkverr.KeyAbsent("x")))
}
