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

// Package modulecache assembles the database adapter chain (package db)
// and the UUID proxy mapper (package uuidproxy) into the per-module
// memoization cache (component F): module results, keyed by the module's
// effective input field map and scoped to the module's own identity, so
// two different modules never collide even when given identical inputs.
package modulecache

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/db"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/uuidproxy"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/codec"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
)

// moduleKeyField is the name injected into every cache key to scope a
// shared backend by owning module.
const moduleKeyField = "__module_uuid__"

// Cache memoizes a single module's results against its effective inputs.
// It composes, outermost first:
//
//	ValueProxyMapper -> KeyProxyMapper -> KeyInjector -> Serializing -> InMemory[+ExternalBackend]
//
// mirroring the layering src/pluginplay/cache/module_manager.hpp describes
// for wiring up a module's cache.
type Cache struct {
	store  db.Store[field.Map, *field.Carrier]
	mapper *uuidproxy.Mapper
}

// options configures a Cache's construction.
type options struct {
	codec    codec.Codec
	external db.ExternalBackend
	mapper   *uuidproxy.Mapper
}

// Option customizes New.
type Option func(*options)

// WithCodec overrides the default JSON codec used to serialize cache
// entries.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithExternalBackend places an external store behind the in-memory
// layer; entries reach it when Checkpoint or Dump is called.
func WithExternalBackend(backend db.ExternalBackend) Option {
	return func(o *options) { o.external = backend }
}

// WithSharedUUIDMapper makes this cache reuse an existing UUID mapper, so
// identical values proxy to the same identity across every module sharing
// the mapper (spec testable property 6's cross-module form).
func WithSharedUUIDMapper(mapper *uuidproxy.Mapper) Option {
	return func(o *options) { o.mapper = mapper }
}

// New builds the cache for a single module identified by moduleUUID.
func New(moduleUUID string, opts ...Option) (*Cache, error) {
	cfg := options{codec: codec.JSON{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.mapper == nil {
		cfg.mapper = uuidproxy.NewMapper()
	}

	memory := db.NewInMemory[string, string](cfg.external)

	serialized, err := db.NewSerializing[field.Map, string](memory, canonicalKey, cfg.codec)
	if err != nil {
		return nil, errors.Wrap(err, "building serializing layer")
	}

	injected, err := db.NewKeyInjector[string](moduleKeyField, field.NewOwnedConst(moduleUUID), serialized)
	if err != nil {
		return nil, errors.Wrap(err, "building key-injector layer")
	}

	maker := uuidproxy.NewMaker(cfg.mapper)
	proxiedKeys, err := db.NewKeyProxyMapper[string](injected, maker)
	if err != nil {
		return nil, errors.Wrap(err, "building key-proxy layer")
	}

	proxiedValues, err := db.NewValueProxyMapper[field.Map](proxiedKeys, cfg.mapper)
	if err != nil {
		return nil, errors.Wrap(err, "building value-proxy layer")
	}

	return &Cache{store: proxiedValues, mapper: cfg.mapper}, nil
}

// Contains reports whether key has a memoized result.
func (c *Cache) Contains(key field.Map) (bool, error) { return c.store.Contains(key) }

// Insert memoizes result under key.
func (c *Cache) Insert(key field.Map, result *field.Carrier) error {
	return c.store.Insert(key, result)
}

// Get returns the memoized result for key.
func (c *Cache) Get(key field.Map) (db.Entry[*field.Carrier], error) { return c.store.Get(key) }

// Remove discards the memoized result for key, if any.
func (c *Cache) Remove(key field.Map) error { return c.store.Remove(key) }

// Checkpoint pushes the cache's live entries to any external backend
// without losing in-memory access.
func (c *Cache) Checkpoint() error { return c.store.Checkpoint() }

// Dump pushes the cache's live entries to any external backend and clears
// the in-memory layer.
func (c *Cache) Dump() error { return c.store.Dump() }

// canonicalKey renders a field.Map key as a deterministic, value-derived
// string, suitable for use as a map key in the innermost string-keyed
// store. It must go through field.KeyOf rather than Carrier.String(): the
// carriers reaching this layer are freshly allocated by
// uuidproxy.Maker.Proxy on every call, so two calls carrying
// value-equal UUIDs would otherwise stringify to different addresses and
// never collide in the cache.
func canonicalKey(m field.Map) (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range m.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		c, _ := m.Get(name)
		k := field.KeyOf(c)
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(k.TypeTag)
		b.WriteByte(':')
		b.WriteString(k.Repr)
	}
	b.WriteByte('}')
	return b.String(), nil
}
