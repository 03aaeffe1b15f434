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
	"sort"

	"github.com/spf13/cobra"

	"github.com/NWChemEx-Project/pluginplay-go/pkg/field"
)

func newProfileCommand() *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "profile <module>",
		Args:  cobra.ExactArgs(1),
		Short: "Run a demo module and print its call profile",
		Long: "Run a demo module and print its call profile.\n" +
			"\n" +
			"profile loads a module from pluginplayctl's small in-process demo\n" +
			"registry, runs it twice with the same input to exercise memoization,\n" +
			"and prints the resulting profile_info() trace.\n",
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			build, ok := demoModules[name]
			if !ok {
				names := make([]string, 0, len(demoModules))
				for n := range demoModules {
					names = append(names, n)
				}
				sort.Strings(names)
				return fmt.Errorf("unknown demo module %q (available: %v)", name, names)
			}

			sh, err := build()
			if err != nil {
				return fmt.Errorf("building module %q: %w", name, err)
			}

			in := field.NewMap()
			in.Set("value", field.NewOwnedConst(value))

			for i := 0; i < 2; i++ {
				if _, err := sh.Run(in); err != nil {
					return fmt.Errorf("run %d failed: %w", i+1, err)
				}
			}

			fmt.Print(sh.ProfileInfo())
			return nil
		},
	}

	cmd.Flags().StringVar(&value, "value", "hello", "value to pass as the module's \"value\" input")
	return cmd
}
