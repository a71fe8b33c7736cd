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

package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/clock"
	"github.com/shelfsync/shelfsync/pkg/server/app"
	"github.com/shelfsync/shelfsync/pkg/server/config"
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"gorm.io/gorm"
)

// dbFlags are the storage flags shared by the subcommands
type dbFlags struct {
	driver      *string
	path        *string
	databaseURL *string
	envFile     *string
}

func addDBFlags(fs *flag.FlagSet) dbFlags {
	return dbFlags{
		driver:      fs.String("dbDriver", "", "Database driver: sqlite or postgres (env: DB_DRIVER, default: sqlite)"),
		path:        fs.String("dbPath", "", "Path to SQLite database file (env: DB_PATH, default: $XDG_DATA_HOME/shelfsync/server.db)"),
		databaseURL: fs.String("databaseUrl", "", "Postgres connection string (env: DATABASE_URL)"),
		envFile:     fs.String("envFile", ".env", "Path to a dotenv file to load before reading the environment"),
	}
}

func initDB(driver, dsn string) (*gorm.DB, error) {
	db := database.Open(driver, dsn)
	database.InitSchema(db)

	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, errors.Wrap(err, "running migrations")
	}

	return db, nil
}

func initApp(cfg config.Config) (app.App, error) {
	db, err := initDB(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return app.App{}, err
	}

	a := app.App{
		DB:            db,
		Clock:         clock.New(),
		PluginVersion: cfg.PluginVersion,
		Port:          cfg.Port,
		DBDriver:      cfg.DBDriver,
	}
	if err := a.Validate(); err != nil {
		database.Close(db)
		return app.App{}, errors.Wrap(err, "validating app")
	}

	return a, nil
}

// loadConfig reads the env file and resolves the config, printing usage and
// exiting on an invalid configuration
func loadConfig(fs *flag.FlagSet, envFile string, p config.Params) config.Config {
	if err := config.LoadEnvFile(envFile); err != nil {
		fmt.Printf("Error: %s\n\n", err)
		os.Exit(1)
	}

	cfg, err := config.New(p)
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	return cfg
}

// printFlags prints flags with -- prefix for consistency with CLI
func printFlags(fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Printf("  --%s", f.Name)

		// Print type hint for non-boolean flags
		name, usage := flag.UnquoteUsage(f)
		if name != "" {
			fmt.Printf(" %s", name)
		}
		fmt.Println()

		if usage != "" {
			fmt.Printf("    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Printf(" (default: %s)", f.DefValue)
			}
			fmt.Println()
		}
	})
}

// setupFlagSet creates a FlagSet with standard usage format
func setupFlagSet(name, usageCmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Printf(`Usage:
  %s [flags]

Flags:
`, usageCmd)
		printFlags(fs)
	}
	return fs
}
