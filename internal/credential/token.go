package credential

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/blake2s"

	"github.com/capkv/capkv/internal/capkverr"
	"github.com/capkv/capkv/internal/invariant"
)

// TokenFactory mints capability tokens: name + "_" + an unpredictable,
// URL-safe suffix with at least 128 bits of entropy. Grounded on
// core/sdk/secret/idfactory.go's keyed BLAKE2s-128
// PRF, adapted from a deterministic context-keyed digest into a
// run-unique, unpredictable one: each factory holds a random 32-byte
// key generated once at registry construction, and every call mixes in
// a fresh random nonce so tokens are unlinkable across registrations
// even for the same name.
type TokenFactory struct {
	key []byte
}

// NewTokenFactory creates a factory with a fresh random key.
func NewTokenFactory() (*TokenFactory, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, capkverr.Wrap(err, "failed to seed token factory key")
	}
	return &TokenFactory{key: key}, nil
}

// Make mints a new token for name.
func (f *TokenFactory) Make(name string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", capkverr.Wrap(err, "failed to generate token nonce")
	}

	h, err := blake2s.New128(f.key)
	if err != nil {
		return "", capkverr.Wrap(err, "failed to initialize token hash")
	}
	h.Write([]byte(name))
	h.Write(nonce)
	digest := h.Sum(nil)
	invariant.Invariant(len(digest) == 16, "blake2s-128 digest must be exactly 16 bytes, got %d", len(digest))

	suffix := base64.RawURLEncoding.EncodeToString(digest)
	return name + "_" + suffix, nil
}
