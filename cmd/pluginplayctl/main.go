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

// pluginplayctl is a developer convenience for the pluginplay-go framework:
// running a demo module and inspecting an external cache directory. It is
// not where the framework's contracts live — spec.md names CLI bindings out
// of scope, and this command is a thin wrapper over pkg/module and
// pkg/cache/db.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:   "pluginplayctl",
		Short: "Developer convenience CLI for pluginplay-go",
		Long: "Developer convenience CLI for pluginplay-go.\n" +
			"\n" +
			"pluginplayctl runs demo modules and inspects on-disk cache directories;\n" +
			"it is not part of the pluginplay-go library's public contracts.\n",
	}

	cmd.AddCommand(
		newProfileCommand(),
		newInspectCacheCommand(),
	)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
