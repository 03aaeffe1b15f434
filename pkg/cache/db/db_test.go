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

package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBasic(t *testing.T) {
	store := NewInMemory[string, int](nil)

	ok, err := store.Contains("a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Insert("a", 1))
	ok, err = store.Contains("a")
	require.NoError(t, err)
	assert.True(t, ok)

	entry, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Value)
	assert.True(t, entry.Owned)

	require.NoError(t, store.Remove("a"))
	_, err = store.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryCheckpointAndDump(t *testing.T) {
	backup := NewInMemory[string, int](nil)
	store := NewInMemory[string, int](backup)

	require.NoError(t, store.Insert("a", 1))
	require.NoError(t, store.Insert("b", 2))

	require.NoError(t, store.Checkpoint())
	ok, err := store.Contains("a")
	require.NoError(t, err)
	assert.True(t, ok, "checkpoint must not clear the live layer")

	backupOK, err := backup.Contains("a")
	require.NoError(t, err)
	assert.True(t, backupOK)

	require.NoError(t, store.Dump())
	ok, err = store.Contains("a")
	require.NoError(t, err)
	assert.False(t, ok, "dump must clear the live layer")

	backupOK, err = backup.Contains("b")
	require.NoError(t, err)
	assert.True(t, backupOK, "dump must still push to the backup first")
}

func TestInMemoryKeysEnumerable(t *testing.T) {
	store := NewInMemory[string, int](nil)
	require.NoError(t, store.Insert("a", 1))
	require.NoError(t, store.Insert("b", 2))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestSerializingRoundTrips(t *testing.T) {
	memory := NewInMemory[string, string](nil)
	encode := func(k string) (string, error) { return k, nil }

	store, err := NewSerializing[string, []int](memory, encode, nil)
	require.NoError(t, err)

	require.NoError(t, store.Insert("key", []int{1, 2, 3}))
	entry, err := store.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, entry.Value)
}

func TestSerializingRejectsNilInner(t *testing.T) {
	_, err := NewSerializing[string, int](nil, func(string) (string, error) { return "", nil }, nil)
	assert.Error(t, err)
}

func TestTransposerFindsByValueScan(t *testing.T) {
	memory := NewInMemory[int, string](nil)
	trans, err := NewTransposer[string, int](memory)
	require.NoError(t, err)

	require.NoError(t, trans.Insert("hello", 1))
	require.NoError(t, trans.Insert("world", 2))

	ok, err := trans.Contains("hello")
	require.NoError(t, err)
	assert.True(t, ok)

	entry, err := trans.Get("world")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Value)

	require.NoError(t, trans.Remove("hello"))
	ok, err = trans.Contains("hello")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransposerDumpClearsKnownSet(t *testing.T) {
	memory := NewInMemory[int, string](nil)
	trans, err := NewTransposer[string, int](memory)
	require.NoError(t, err)

	require.NoError(t, trans.Insert("hello", 1))
	require.NoError(t, trans.Dump())

	ok, err := trans.Contains("hello")
	require.NoError(t, err)
	assert.False(t, ok, "dump must clear the known-value set even though the wrapped store was also dumped")
}
