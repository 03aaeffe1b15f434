// Copyright 2016-2018, Pulumi Corporation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package field implements the type-erased field carrier (component A) and
// the ordered field map (component B) that every module input and result
// flows through.
package field

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/copystructure"
	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// StorageMode records how a Carrier owns (or borrows) its payload. The mode
// is fixed at construction and never changes for the lifetime of a Carrier.
type StorageMode int

const (
	// OwnedMutable carriers hold a private copy the caller may mutate
	// in place through CastTo[*T].
	OwnedMutable StorageMode = iota
	// OwnedConst carriers hold a private copy that is only ever handed
	// out read-only.
	OwnedConst
	// BorrowedConst carriers alias externally-owned storage; the caller
	// guarantees the referent outlives the Carrier.
	BorrowedConst
)

func (m StorageMode) String() string {
	switch m {
	case OwnedMutable:
		return "OwnedMutable"
	case OwnedConst:
		return "OwnedConst"
	case BorrowedConst:
		return "BorrowedConst"
	default:
		return "Unknown"
	}
}

// Equatable is the capability a wrapped type must provide so carrier
// equality (ValueEqual) has a well-defined meaning beyond reflect.DeepEqual.
// Types that don't implement it fall back to reflect.DeepEqual, which is
// sufficient for plain comparable data (the common case for scientific
// inputs: ints, floats, strings, slices and structs thereof).
type Equatable interface {
	Equal(other any) bool
}

// Orderable is the optional capability backing a future ordering
// requirement. Types that don't implement it are simply never compared
// with Less.
type Orderable interface {
	Less(other any) bool
}

// Stringer mirrors fmt.Stringer; kept as a named type here so Carrier.Print's
// intent (a type's own printer, or a proxy) reads clearly at the call site.
type Stringer interface {
	String() string
}

// Cloner is the capability a wrapped type provides when the default,
// reflection-based deep copy (mitchellh/copystructure) is not the right
// notion of "independent copy" for it — a type holding a buffer, a handle
// into an arena, or any other internal aliasing copystructure cannot see
// through. A type implementing Cloner is always cloned by calling it,
// never by copystructure, regardless of storage mode.
type Cloner interface {
	Clone() any
}

// Carrier is the type-erased holder of exactly one value. The zero value
// is a valid, empty Carrier.
type Carrier struct {
	mode    StorageMode
	typ     reflect.Type
	payload any // *T for every mode; nil when empty
	empty   bool
}

// emptyTypeTag is the sentinel returned by TypeTag for an empty carrier.
var emptyTypeTag = reflect.TypeOf(struct{ pluginplayEmpty byte }{})

// Empty returns a Carrier holding no value.
func Empty() *Carrier {
	return &Carrier{empty: true}
}

// NewOwnedMutable constructs a Carrier that owns a private, mutable copy
// of v.
func NewOwnedMutable[T any](v T) *Carrier {
	cp := v
	return &Carrier{mode: OwnedMutable, typ: reflect.TypeOf(v), payload: &cp}
}

// NewOwnedConst constructs a Carrier that owns a private, read-only copy
// of v.
func NewOwnedConst[T any](v T) *Carrier {
	cp := v
	return &Carrier{mode: OwnedConst, typ: reflect.TypeOf(v), payload: &cp}
}

// NewBorrowed constructs a Carrier that aliases externally-owned storage.
// The caller must guarantee that *ref outlives the Carrier; the Carrier
// never copies the referent on construction.
func NewBorrowed[T any](ref *T) *Carrier {
	if ref == nil {
		return Empty()
	}
	return &Carrier{mode: BorrowedConst, typ: reflect.TypeOf(*ref), payload: ref}
}

// IsEmpty reports whether the carrier holds no value.
func (c *Carrier) IsEmpty() bool {
	return c == nil || c.empty
}

// Mode returns the carrier's storage mode. Calling Mode on an empty carrier
// returns OwnedConst by convention; callers should check IsEmpty first.
func (c *Carrier) Mode() StorageMode {
	if c.IsEmpty() {
		return OwnedConst
	}
	return c.mode
}

// TypeTag returns the decayed-type identifier of the stored value, or the
// sentinel empty tag if the carrier holds nothing.
func (c *Carrier) TypeTag() reflect.Type {
	if c.IsEmpty() {
		return emptyTypeTag
	}
	return c.typ
}

// CanCastTo reports whether the carrier's current value can be returned as
// T given its storage mode. A pointer type T = *U succeeds only when the
// carrier is OwnedMutable and U matches the stored type; every other,
// non-pointer T succeeds for any non-empty carrier whose stored type
// matches T.
func CanCastTo[T any](c *Carrier) bool {
	if c.IsEmpty() {
		return false
	}
	var zero T
	want := reflect.TypeOf(zero)
	if want != nil && want.Kind() == reflect.Ptr && want.Elem() == c.typ {
		return c.mode == OwnedMutable
	}
	return want == c.typ
}

// CastTo returns the stored value as T. For a non-pointer T it returns a
// copy of the stored value; for T = *U on an OwnedMutable carrier it
// returns the carrier's own pointer, so writes through it change the
// stored value. It fails with ppliterrors.Empty when the carrier is
// empty, or ppliterrors.TypeMismatch when T does not match the stored type
// or requests mutable access a read-only carrier cannot grant.
func CastTo[T any](c *Carrier) (T, error) {
	var zero T
	if c.IsEmpty() {
		return zero, errors.Wrapf(ppliterrors.Empty, "cast to %T", zero)
	}
	if !CanCastTo[T](c) {
		return zero, errors.Wrapf(ppliterrors.TypeMismatch,
			"cannot cast %s (mode %s) to %T", c.typ, c.mode, zero)
	}
	want := reflect.TypeOf(zero)
	if want != nil && want.Kind() == reflect.Ptr {
		// Mutable reference: hand back the carrier's own pointer.
		return c.payload.(T), nil
	}
	ptr := reflect.ValueOf(c.payload).Elem()
	return ptr.Interface().(T), nil
}

// CastToDynamic is CastTo for callers that only have a reflect.Type at
// hand (not a compile-time type parameter), such as proptype.Declare's
// runtime-schema-driven packing and unpacking. want must be a non-pointer
// type; read-only access is always requested.
func CastToDynamic(c *Carrier, want reflect.Type) (any, error) {
	if c.IsEmpty() {
		return nil, errors.Wrapf(ppliterrors.Empty, "cast to %s", want)
	}
	if c.typ != want {
		return nil, errors.Wrapf(ppliterrors.TypeMismatch, "cannot cast %s (mode %s) to %s", c.typ, c.mode, want)
	}
	return reflect.ValueOf(c.payload).Elem().Interface(), nil
}

// MustCastTo is CastTo but panics on error; useful in tests and module
// bodies that have already validated readiness.
func MustCastTo[T any](c *Carrier) T {
	v, err := CastTo[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// Clone deep-copies the carrier. The result always owns its payload: a
// BorrowedConst carrier clones into an OwnedConst carrier holding an
// independent copy, never aliasing the original referent.
func (c *Carrier) Clone() (*Carrier, error) {
	if c.IsEmpty() {
		return Empty(), nil
	}
	v := reflect.ValueOf(c.payload).Elem().Interface()

	var copied any
	if cloner, ok := v.(Cloner); ok {
		copied = cloner.Clone()
		if gotType := reflect.TypeOf(copied); gotType != c.typ {
			return nil, errors.Wrapf(ppliterrors.TypeMismatch,
				"Clone() on %s returned %s, want %s", c.typ, gotType, c.typ)
		}
	} else {
		var err error
		copied, err = copystructure.Copy(v)
		if err != nil {
			return nil, errors.Wrap(err, "cloning carrier payload")
		}
	}

	mode := c.mode
	if mode == BorrowedConst {
		mode = OwnedConst
	}
	if c.typ == nil {
		cp := copied
		return &Carrier{mode: mode, payload: &cp}, nil
	}
	cp := reflect.New(c.typ)
	cp.Elem().Set(reflect.ValueOf(copied))
	return &Carrier{mode: mode, typ: c.typ, payload: cp.Interface()}, nil
}

// Print writes a text form of the carrier to sink. When the stored type has
// no String() method, it emits "<typeTag address>" instead.
func (c *Carrier) Print(sink fmt.State, verb rune) {
	fmt.Fprint(sink, c.String())
}

// String implements fmt.Stringer for Carrier itself (distinct from the
// stored value's own Stringer, consulted below).
func (c *Carrier) String() string {
	if c.IsEmpty() {
		return "<empty>"
	}
	v := reflect.ValueOf(c.payload).Elem().Interface()
	if s, ok := v.(Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("<%s %p>", c.typ, c.payload)
}

// ValueEqual reports whether two carriers hold equal values, ignoring
// storage mode. Two empty carriers are equal to each other; an empty and a
// non-empty carrier are never equal.
func (c *Carrier) ValueEqual(other *Carrier) bool {
	if c.IsEmpty() || other.IsEmpty() {
		return c.IsEmpty() == other.IsEmpty()
	}
	if c.typ != other.typ {
		return false
	}
	a := reflect.ValueOf(c.payload).Elem().Interface()
	b := reflect.ValueOf(other.payload).Elem().Interface()
	if eq, ok := a.(Equatable); ok {
		return eq.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

// StructurallyEqual is ValueEqual narrowed by requiring equal storage
// modes, so an owned-by-value entry is distinct from a read-only alias of
// the same value (used by some cache adapters).
func (c *Carrier) StructurallyEqual(other *Carrier) bool {
	return c.ValueEqual(other) && c.mode == other.mode
}

// Key is a comparable, value-derived surrogate for a Carrier, used wherever
// a carrier must serve as (or contribute to) a map key: the type eraser
// adapter and the UUID proxy mapper both dedupe by Key rather than by
// pointer identity, since two distinct carriers holding equal values must
// map to the same cache entry / UUID.
type Key struct {
	TypeTag string
	Repr    string
}

// KeyOf computes the canonical, value-derived key for a carrier: the
// stored type's name plus fmt's %#v rendering of the value. Unlike
// String(), which falls back to a pointer address for unprintable types,
// KeyOf renders the value itself, so two carriers whose values render
// identically collide in the key space regardless of whether the wrapped
// type implements Stringer. ValueEqual carriers whose values render
// differently (a type whose Equal method treats distinct contents as
// equal, or a value holding pointers, which %#v renders as addresses)
// produce different Keys.
func KeyOf(c *Carrier) Key {
	if c.IsEmpty() {
		return Key{TypeTag: "<empty>"}
	}
	v := reflect.ValueOf(c.payload).Elem().Interface()
	return Key{TypeTag: c.typ.String(), Repr: fmt.Sprintf("%#v", v)}
}
