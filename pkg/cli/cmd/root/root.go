/* Copyright 2025 Shelfsync Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package root

import (
	"github.com/shelfsync/shelfsync/pkg/cli/context"
	"github.com/shelfsync/shelfsync/pkg/cli/log"
	"github.com/spf13/cobra"
)

var (
	configDirFlag string
	endpointFlag  string
	silentFlag    bool
)

var root = &cobra.Command{
	Use:           "shelfsync",
	Short:         "Shelfsync - upload reading statistics and annotations",
	SilenceErrors: true,
	SilenceUsage:  true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	root.PersistentFlags().StringVar(&configDirFlag, "configDir", "", "the directory holding the shelfsync config (defaults to XDG config home)")
	root.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "the API endpoint, overriding the config file")
	root.PersistentFlags().BoolVar(&silentFlag, "silent", false, "print only warnings and errors")
}

// GetRoot returns the root command
func GetRoot() *cobra.Command {
	return root
}

// Bind applies the persistent flags to the context before any command runs
func Bind(ctx *context.Ctx) {
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if endpointFlag != "" {
			ctx.Endpoint = endpointFlag
		}
		if silentFlag {
			ctx.Silent = true
			log.SetSilent(true)
		}
	}
}

// Register adds a new command
func Register(cmd *cobra.Command) {
	root.AddCommand(cmd)
}

// Execute runs the main command
func Execute() error {
	return root.Execute()
}
