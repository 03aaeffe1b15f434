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

package field

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Map is an ordered, keyed collection of named Carriers (component B).
// Keys are compared case-insensitively; iteration order is fixed as
// lexicographic order over the lowered key, so fingerprint construction
// over a Map is deterministic regardless of insertion order.
type Map struct {
	fields map[string]*Carrier // lowered key -> carrier
	labels map[string]string   // lowered key -> original-case label
}

// NewMap returns an empty field map.
func NewMap() Map {
	return Map{fields: map[string]*Carrier{}, labels: map[string]string{}}
}

func lower(name string) string { return strings.ToLower(name) }

// Set inserts or overwrites the carrier stored under name.
func (m *Map) Set(name string, c *Carrier) {
	if m.fields == nil {
		*m = NewMap()
	}
	k := lower(name)
	m.fields[k] = c
	m.labels[k] = name
}

// Get returns the carrier stored under name, and whether it was present.
func (m Map) Get(name string) (*Carrier, bool) {
	c, ok := m.fields[lower(name)]
	return c, ok
}

// Delete removes name from the map, if present.
func (m Map) Delete(name string) {
	k := lower(name)
	delete(m.fields, k)
	delete(m.labels, k)
}

// Has reports whether name is present (case-insensitively).
func (m Map) Has(name string) bool {
	_, ok := m.fields[lower(name)]
	return ok
}

// Len returns the number of fields in the map.
func (m Map) Len() int { return len(m.fields) }

// Keys returns the field names in fixed, deterministic order: lexicographic
// over the lowered key. The returned names are the original-case labels.
func (m Map) Keys() []string {
	lowered := make([]string, 0, len(m.fields))
	for k := range m.fields {
		lowered = append(lowered, k)
	}
	sort.Strings(lowered)
	out := make([]string, len(lowered))
	for i, k := range lowered {
		out[i] = m.labels[k]
	}
	return out
}

// Clone deep-copies the map and every carrier in it.
func (m Map) Clone() (Map, error) {
	out := NewMap()
	for _, name := range m.Keys() {
		c, _ := m.Get(name)
		cc, err := c.Clone()
		if err != nil {
			return Map{}, errors.Wrapf(err, "cloning field %q", name)
		}
		out.Set(name, cc)
	}
	return out, nil
}

// Equal reports whether two maps have the same keys and ValueEqual
// carriers under each key.
func (m Map) Equal(other Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, name := range m.Keys() {
		a, _ := m.Get(name)
		b, ok := other.Get(name)
		if !ok || !a.ValueEqual(b) {
			return false
		}
	}
	return true
}

// String renders the map deterministically, in key order, for diagnostics
// and logging.
func (m Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range m.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		c, _ := m.Get(name)
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(c.String())
	}
	b.WriteByte('}')
	return b.String()
}

// Merge returns a new map containing base's fields overridden by
// override's fields where names collide (override wins). Used to compute
// a module's effective inputs from its bound defaults plus caller-supplied
// overrides.
func Merge(base, override Map) Map {
	out := NewMap()
	for _, name := range base.Keys() {
		c, _ := base.Get(name)
		out.Set(name, c)
	}
	for _, name := range override.Keys() {
		c, _ := override.Get(name)
		out.Set(name, c)
	}
	return out
}
