package registry_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capkv/capkv/internal/capkverr"
	"github.com/capkv/capkv/internal/credential"
	"github.com/capkv/capkv/internal/registry"
	"github.com/capkv/capkv/internal/testhelpers/zonecore/alpha"
	"github.com/capkv/capkv/internal/testhelpers/zonecore/beta"
	"github.com/capkv/capkv/internal/testhelpers/zoneplugins/gamma"
)

func testhelpersDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "testhelpers")
}

func zonecoreRoot() string {
	return filepath.Join(testhelpersDir(), "zonecore")
}

func zonepluginsRoot() string {
	return filepath.Join(testhelpersDir(), "zoneplugins")
}

func newTestRegistry(t *testing.T, zoneRoots ...string) *registry.CredentialRegistry {
	t.Helper()
	reg, err := registry.New(zoneRoots)
	require.NoError(t, err)
	return reg
}

func TestRegister_IssuesEnabledFalseCredentialWithNamedToken(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())

	cred, err := alpha.Register(reg, credential.LevelReadWrite)
	require.NoError(t, err)

	assert.Equal(t, "alpha", cred.Name)
	assert.False(t, cred.Enabled)
	assert.Equal(t, credential.LevelReadWrite, cred.Level)
	assert.Contains(t, cred.Token, "alpha_")
}

func TestRegister_ReReregisteringOverwritesSingleRow(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())

	first, err := alpha.Register(reg, credential.LevelReadOnly)
	require.NoError(t, err)
	second, err := alpha.Register(reg, credential.LevelAdmin)
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Count())
	assert.NotEqual(t, first.Token, second.Token)
}

func TestRegister_AdminEscalationAllowedFromNonPluginZone(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())

	cred, err := alpha.Register(reg, credential.LevelAdmin)
	require.NoError(t, err)
	assert.Equal(t, credential.LevelAdmin, cred.Level)
}

func TestRegister_AdminEscalationDeniedFromPluginZone(t *testing.T) {
	reg := newTestRegistry(t, zonepluginsRoot())

	_, err := gamma.Register(reg, credential.LevelAdmin)
	require.Error(t, err)
	assert.True(t, capkverr.Is(err, capkverr.KindPermissionDenied))
}

func TestValidate_UnregisteredCallerIsFalse(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())
	assert.False(t, alpha.Validate(reg, credential.OpRead))
}

func TestValidate_EnablesCredentialOnFirstSuccess(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())
	_, err := alpha.Register(reg, credential.LevelReadWrite)
	require.NoError(t, err)

	assert.True(t, alpha.Validate(reg, credential.OpRead))

	cred, err := alpha.Fetch(reg, credential.OpRead)
	require.NoError(t, err)
	assert.True(t, cred.Enabled)
	assert.Equal(t, 2, cred.AccessCount, "both Validate and Fetch bump the access count")
}

func TestFetch_LevelPermitsTable(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())
	_, err := alpha.Register(reg, credential.LevelWriteOnly)
	require.NoError(t, err)

	_, err = alpha.Fetch(reg, credential.OpWrite)
	assert.NoError(t, err)

	_, err = alpha.Fetch(reg, credential.OpRead)
	assert.Error(t, err)
	assert.True(t, capkverr.Is(err, capkverr.KindPermissionDenied))
}

func TestTokenOf_UnregisteredCallerIsNotRegistered(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())
	_, err := alpha.TokenOf(reg)
	require.Error(t, err)
	assert.True(t, capkverr.Is(err, capkverr.KindNotRegistered))
}

func TestTokenOf_ReturnsRegisteredToken(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())
	cred, err := alpha.Register(reg, credential.LevelAdmin)
	require.NoError(t, err)

	token, err := alpha.TokenOf(reg)
	require.NoError(t, err)
	assert.Equal(t, cred.Token, token)
}

func TestRegisterCallback_FiresOnEveryRegistration(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())

	var seen []string
	reg.RegisterCallback(func(c credential.Credential) {
		seen = append(seen, c.Name)
	})

	_, err := alpha.Register(reg, credential.LevelReadOnly)
	require.NoError(t, err)
	_, err = beta.Register(reg, credential.LevelReadOnly)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"alpha", "beta"}, seen)
}

func TestRegisterCallback_IdempotentOnSameFunctionIdentity(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())

	calls := 0
	cb := func(credential.Credential) { calls++ }

	reg.RegisterCallback(cb)
	reg.RegisterCallback(cb)

	_, err := alpha.Register(reg, credential.LevelReadOnly)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestRegisterCallback_PanicIsContainedAndLogged(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())

	reg.RegisterCallback(func(credential.Credential) {
		panic("callback exploded")
	})

	assert.NotPanics(t, func() {
		_, err := alpha.Register(reg, credential.LevelReadOnly)
		require.NoError(t, err)
	})
}

func TestCount_ReflectsDistinctNames(t *testing.T) {
	reg := newTestRegistry(t, zonecoreRoot())
	assert.Equal(t, 0, reg.Count())

	_, err := alpha.Register(reg, credential.LevelReadOnly)
	require.NoError(t, err)
	_, err = beta.Register(reg, credential.LevelReadOnly)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Count())
	assert.True(t, reg.Contains("alpha"))
	assert.False(t, reg.Contains("nobody"))
}
