// Package cell implements ProtectedCell: a generic map guarded by an
// AccessPolicy, grounded on
// original_source/src/foundation/ProtectedStore.py.
//
// Python's ProtectedStore inspects inspect.currentframe().f_locals['self']
// across a bounded frame window to recover "who is calling". Go has no
// equivalent of reading a caller's local variables, so capkv passes
// each call site's identity explicitly as the first argument
// ("caller"), the same way a Go method passes its receiver. A policy
// only checks the value it is given; in the router, what keeps other
// code away from the cells is that they are unexported fields of
// NamespaceRouter, so no code outside that package can call them with
// any caller at all — see DESIGN.md.
package cell

import (
	"fmt"
	"reflect"
)

// AccessPolicy decides whether a given caller value may access a cell.
type AccessPolicy interface {
	authorize(caller interface{}) bool
	description() string
}

// Instance returns a policy matching only the exact value p (pointer
// identity for pointer types, equality for comparable value types).
func Instance(p interface{}) AccessPolicy {
	return instancePolicy{p: p}
}

type instancePolicy struct{ p interface{} }

func (ip instancePolicy) authorize(caller interface{}) (ok bool) {
	if caller == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return caller == ip.p
}

func (ip instancePolicy) description() string {
	return fmt.Sprintf("instance %v", ip.p)
}

// Type returns a policy matching any caller whose runtime type is
// exactly T (T is typically a pointer type, e.g. *router.NamespaceRouter).
func Type[T any]() AccessPolicy {
	var zero T
	return typePolicy{want: reflect.TypeOf(zero), name: fmt.Sprintf("%T", zero)}
}

type typePolicy struct {
	want reflect.Type
	name string
}

func (tp typePolicy) authorize(caller interface{}) bool {
	if caller == nil {
		return false
	}
	return reflect.TypeOf(caller) == tp.want
}

func (tp typePolicy) description() string {
	return "type " + tp.name
}

// Name returns a policy matching any caller whose type name (as
// reported by reflect, e.g. "NamespaceRouter") equals s. Unlike Type,
// this does not care which package the type lives in.
func Name(s string) AccessPolicy {
	return namePolicy{name: s}
}

type namePolicy struct{ name string }

func (np namePolicy) authorize(caller interface{}) bool {
	if caller == nil {
		return false
	}
	t := reflect.TypeOf(caller)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name() == np.name
}

func (np namePolicy) description() string {
	return "type name " + np.name
}

// Predicate returns a policy delegating to a user-supplied function. A
// panicking predicate is treated as a denial, matching the Python
// source's "except Exception: return False".
func Predicate(f func(caller interface{}) bool) AccessPolicy {
	return predicatePolicy{f: f}
}

type predicatePolicy struct{ f func(caller interface{}) bool }

func (pp predicatePolicy) authorize(caller interface{}) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return pp.f(caller)
}

func (pp predicatePolicy) description() string {
	return "custom predicate"
}
