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

// Package usercache implements the scratch cache (component H) modules
// use for their own bookkeeping across runs — intermediate results a
// module wants to keep around without going through the formal,
// fingerprinted memoization path. Go's generic methods restriction means
// the typed accessors are free functions over *Cache rather than methods
// on a generic Cache[T], matching field.CastTo's shape.
package usercache

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/ppliterrors"
)

// Cache is a simple, mutex-protected, string-keyed store of arbitrary
// values, each held in a field.Carrier.
type Cache struct {
	mu     sync.Mutex
	values map[string]*field.Carrier
}

// New returns an empty user cache.
func New() *Cache {
	return &Cache{values: map[string]*field.Carrier{}}
}

// Has reports whether key is present.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

// Clear removes every entry from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = map[string]*field.Carrier{}
}

// Delete removes key, if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Set stores value under key, taking ownership of a private copy.
func Set[T any](c *Cache, key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = field.NewOwnedMutable(value)
}

// Get retrieves the value stored under key, cast to T. Returns
// ppliterrors.UnknownName if key is absent, or ppliterrors.TypeMismatch
// if the stored value is not a T.
func Get[T any](c *Cache, key string) (T, error) {
	c.mu.Lock()
	carrier, ok := c.values[key]
	c.mu.Unlock()

	var zero T
	if !ok {
		return zero, errors.Wrapf(ppliterrors.UnknownName, "user cache: key %q", key)
	}
	return field.CastTo[T](carrier)
}
