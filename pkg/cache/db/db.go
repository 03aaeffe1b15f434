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

// Package db implements the hierarchical key/value adapter chain
// (component D): a single Store interface, and small composable adapters
// that translate keys, values, or both, terminating in an in-memory store
// and an optional external backend. Grounded on the layering pattern of
// wrapping one storage interface behind many backend adapters, and on the
// original PluginPlay C++ sources under
// src/pluginplay/cache/database/*.hpp and
// src/pluginplay/database/detail_/*.hpp.
package db

import "errors"

// ErrNotFound is returned by Get when key is absent. Callers of the
// module cache always call Contains before Get, so ErrNotFound never
// needs to surface past this package.
var ErrNotFound = errors.New("pluginplay/db: key not found")

// Entry wraps a value returned from Get together with an ownership flag,
// distinguishing "owns the returned value" from "borrows the backend's
// value". Borrowed entries alias backend-owned storage and must be
// treated as read-only. InMemory returns its stored value itself as an
// owned entry, so for a reference-typed V (slice, map, pointer) an owned
// entry can still share storage with the store.
type Entry[V any] struct {
	Value V
	Owned bool
}

// Store is the single operation set every database adapter satisfies:
// contains, insert, remove, get, checkpoint, dump.
type Store[K, V any] interface {
	// Contains reports whether key is present.
	Contains(key K) (bool, error)
	// Insert adds or overwrites the value stored under key.
	Insert(key K, value V) error
	// Remove deletes key, if present. A no-op if key is absent.
	Remove(key K) error
	// Get returns the value stored under key. Returns ErrNotFound if
	// absent.
	Get(key K) (Entry[V], error)
	// Checkpoint pushes live state to a wrapped backing store without
	// losing in-memory access.
	Checkpoint() error
	// Dump pushes live state to a wrapped backing store and then clears
	// the in-memory layer.
	Dump() error
}

// Enumerable is implemented by adapters that can list their keys; not
// every adapter can do so efficiently. InMemory and TypeEraser implement
// it (TypeEraser lists the keys it has itself inserted, independent of
// the wrapped store); Transposer does not.
type Enumerable[K any] interface {
	Keys() ([]K, error)
}
