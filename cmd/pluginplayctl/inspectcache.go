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

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/db"
)

// fileBackend is a toy db.ExternalBackend (Store[string, string])
// persisting its entries as one JSON file per directory. It exists only to
// give inspect-cache something concrete to read: spec.md leaves selecting a
// physical storage engine a non-goal, so pkg/cache/db ships no such
// adapter, and this one stays local to the CLI rather than the library.
type fileBackend struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

func newFileBackend(dir string) (*fileBackend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	path := filepath.Join(dir, "entries.json")
	entries := map[string]string{}
	if contents, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(contents, &entries); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &fileBackend{path: path, entries: entries}, nil
}

func (f *fileBackend) Contains(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[key]
	return ok, nil
}

func (f *fileBackend) Insert(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fileBackend) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fileBackend) Get(key string) (db.Entry[string], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	if !ok {
		return db.Entry[string]{}, db.ErrNotFound
	}
	return db.Entry[string]{Value: v, Owned: true}, nil
}

func (f *fileBackend) Checkpoint() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save()
}

func (f *fileBackend) Dump() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.save(); err != nil {
		return err
	}
	f.entries = map[string]string{}
	return nil
}

// save writes f.entries to disk. Callers must hold f.mu.
func (f *fileBackend) save() error {
	contents, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entries: %w", err)
	}
	return os.WriteFile(f.path, contents, 0o600)
}

// Keys implements db.Enumerable.
func (f *fileBackend) Keys() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ db.Store[string, string] = (*fileBackend)(nil)
var _ db.Enumerable[string] = (*fileBackend)(nil)

func newInspectCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect-cache <dir>",
		Args:  cobra.ExactArgs(1),
		Short: "Dump the contents of a file-backed external cache directory",
		Long: "Dump the contents of a file-backed external cache directory.\n" +
			"\n" +
			"inspect-cache opens the JSON-backed external cache a module cache was\n" +
			"checkpointed or dumped into and prints every key/value pair it holds.\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := newFileBackend(args[0])
			if err != nil {
				return err
			}
			keys, err := backend.Keys()
			if err != nil {
				return fmt.Errorf("listing cache entries: %w", err)
			}
			if len(keys) == 0 {
				fmt.Println("cache is empty.")
				return nil
			}
			for _, key := range keys {
				entry, err := backend.Get(key)
				if err != nil {
					return fmt.Errorf("reading entry %q: %w", key, err)
				}
				fmt.Printf("%s => %s\n", key, entry.Value)
			}
			return nil
		},
	}
	return cmd
}
