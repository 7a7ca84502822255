package cell

import (
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/capkv/capkv/internal/capkverr"
	"github.com/capkv/capkv/internal/invariant"
)

// ProtectedCell is a generic map guarded by an AccessPolicy. Every
// operation authorizes the supplied caller before touching the
// underlying map. A single sync.RWMutex protects the map, one per
// guarded structure, mirroring runtime/vault.Vault's locking shape.
type ProtectedCell[K comparable, V any] struct {
	mu     sync.RWMutex
	store  map[K]V
	policy AccessPolicy
}

// New builds a ProtectedCell guarded by policy. A nil policy is a
// ConfigurationError.
func New[K comparable, V any](policy AccessPolicy) (*ProtectedCell[K, V], error) {
	if policy == nil {
		return nil, capkverr.ConfigurationError("a ProtectedCell access policy must be provided")
	}
	c := &ProtectedCell[K, V]{store: make(map[K]V), policy: policy}
	invariant.Postcondition(c.store != nil, "newly constructed ProtectedCell must have an initialized store")
	return c, nil
}

func (c *ProtectedCell[K, V]) authorize(caller interface{}) error {
	if caller == nil {
		return capkverr.PermissionDenied("access denied: no caller principal supplied")
	}
	if !c.policy.authorize(caller) {
		return capkverr.PermissionDenied("access denied: expected %s", c.policy.description())
	}
	return nil
}

// Set stores value under key.
func (c *ProtectedCell[K, V]) Set(caller interface{}, key K, value V) error {
	if err := c.authorize(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = value
	return nil
}

// Get returns the value stored under key and whether it was present.
func (c *ProtectedCell[K, V]) Get(caller interface{}, key K) (V, bool, error) {
	var zero V
	if err := c.authorize(caller); err != nil {
		return zero, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.store[key]
	return v, ok, nil
}

// GetOrDefault returns the stored value, or def if key is absent.
func (c *ProtectedCell[K, V]) GetOrDefault(caller interface{}, key K, def V) (V, error) {
	v, ok, err := c.Get(caller, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Has reports whether key is present.
func (c *ProtectedCell[K, V]) Has(caller interface{}, key K) (bool, error) {
	if err := c.authorize(caller); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.store[key]
	return ok, nil
}

// Delete removes key. Deleting an absent key is a no-op, not an error.
func (c *ProtectedCell[K, V]) Delete(caller interface{}, key K) error {
	if err := c.authorize(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// Len returns the number of stored entries.
func (c *ProtectedCell[K, V]) Len(caller interface{}) (int, error) {
	if err := c.authorize(caller); err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store), nil
}

// Clear removes all entries.
func (c *ProtectedCell[K, V]) Clear(caller interface{}) error {
	if err := c.authorize(caller); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[K]V)
	return nil
}

// Keys returns all keys, in no particular order.
func (c *ProtectedCell[K, V]) Keys(caller interface{}) ([]K, error) {
	if err := c.authorize(caller); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.store))
	for k := range c.store {
		keys = append(keys, k)
	}
	return keys, nil
}

// Values returns all values, in no particular order.
func (c *ProtectedCell[K, V]) Values(caller interface{}) ([]V, error) {
	if err := c.authorize(caller); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	values := make([]V, 0, len(c.store))
	for _, v := range c.store {
		values = append(values, v)
	}
	return values, nil
}

// DeepCopy returns an independent clone of the cell's contents:
// mutating the returned map never affects the cell. The clone is
// produced via a CBOR encode/decode round trip rather than a
// hand-rolled recursive copy, generalizing Python's copy.deepcopy to
// arbitrary K/V without needing K/V to implement a Clone method.
func (c *ProtectedCell[K, V]) DeepCopy(caller interface{}) (map[K]V, error) {
	if err := c.authorize(caller); err != nil {
		return nil, err
	}

	c.mu.RLock()
	encoded, err := cbor.Marshal(c.store)
	c.mu.RUnlock()
	if err != nil {
		return nil, capkverr.Wrap(err, "deep copy: encode failed")
	}

	clone := make(map[K]V, len(c.store))
	if err := cbor.Unmarshal(encoded, &clone); err != nil {
		return nil, capkverr.Wrap(err, "deep copy: decode failed")
	}
	return clone, nil
}
