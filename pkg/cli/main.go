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

package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/cli/infra"
	"github.com/shelfsync/shelfsync/pkg/cli/log"

	// commands
	"github.com/shelfsync/shelfsync/pkg/cli/cmd/books"
	"github.com/shelfsync/shelfsync/pkg/cli/cmd/register"
	"github.com/shelfsync/shelfsync/pkg/cli/cmd/root"
	"github.com/shelfsync/shelfsync/pkg/cli/cmd/upload"
	"github.com/shelfsync/shelfsync/pkg/cli/cmd/version"
	"github.com/shelfsync/shelfsync/pkg/cli/cmd/watch"
)

// versionTag is populated during link time
var versionTag = "master"

// parseConfigDir extracts the --configDir flag value from command line
// arguments regardless of where it appears. Returns empty string if not found.
func parseConfigDir(args []string) string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "--configDir=") {
			return strings.TrimPrefix(arg, "--configDir=")
		}
		if arg == "--configDir" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func main() {
	// The config file is read before cobra parses the flags
	configDir := parseConfigDir(os.Args[1:])

	ctx, err := infra.Init(versionTag, configDir)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}

	root.Bind(ctx)
	root.Register(upload.NewCmd(ctx))
	root.Register(watch.NewCmd(ctx))
	root.Register(register.NewCmd(ctx))
	root.Register(books.NewCmd(ctx))
	root.Register(version.NewCmd(ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
