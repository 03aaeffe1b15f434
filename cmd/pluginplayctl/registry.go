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
	"fmt"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/cache/modulecache"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
	"github.com/NWChemEx-Project/pluginplay-go/pkg/module"
)

// demoModules is a small in-process stand-in for the (out-of-scope)
// module-manager registry: just enough named, loadable modules for profile
// to have something to run. A real deployment registers modules through its
// own application code; pluginplayctl is a convenience, not the framework.
var demoModules = map[string]func() (*module.Shell, error){
	"echo": newEchoModule,
}

// newEchoModule builds a tiny memoizable module that copies its "value"
// input straight to its "value" result, exercised only by this CLI.
func newEchoModule() (*module.Shell, error) {
	inputs := field.NewMap()
	inputs.Set("value", field.Empty())

	results := field.NewMap()
	results.Set("value", field.Empty())

	impl := &module.FuncImplementation{
		Name:   "echo",
		Inputs: inputs,
		Results: results,
		Body: func(in field.Map, _ module.SubmoduleMap) (field.Map, error) {
			v, _ := in.Get("value")
			out := field.NewMap()
			out.Set("value", v)
			return out, nil
		},
	}

	cache, err := modulecache.New("pluginplayctl-echo")
	if err != nil {
		return nil, fmt.Errorf("building demo cache: %w", err)
	}
	return module.New(impl, module.WithUUID("pluginplayctl-echo"), module.WithCache(cache), module.WithMemoizable(true))
}
