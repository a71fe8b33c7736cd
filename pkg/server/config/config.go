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

// Package config resolves the server configuration from flags, environment and defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// DefaultDBDir is the default directory name for Shelfsync data
	DefaultDBDir = "shelfsync"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultPluginVersion is the plugin version the server accepts unless configured otherwise
	DefaultPluginVersion = "0.2.0"

	// DBDriverSQLite selects the embedded sqlite storage
	DBDriverSQLite = "sqlite"
	// DBDriverPostgres selects a postgres server reached through DatabaseURL
	DBDriverPostgres = "postgres"
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = filepath.Join(xdg.DataHome, DefaultDBDir, DefaultDBFilename)
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrDBMissingURL is an error for a postgres configuration without a connection string
	ErrDBMissingURL = errors.New("Database URL is empty")
	// ErrDBDriverInvalid is an error for an unsupported database driver
	ErrDBDriverInvalid = errors.New("Invalid DB driver")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrPluginVersionMissing is an error for a configuration without the required plugin version
	ErrPluginVersionMissing = errors.New("Plugin version is empty")
)

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// LoadEnvFile populates the process environment from a dotenv file. Variables
// already set in the environment take precedence. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading env file %s", path)
	}

	return nil
}

// Config is an application configuration
type Config struct {
	AppEnv        string
	Port          string
	DBDriver      string
	DBPath        string
	DatabaseURL   string
	LogLevel      string
	PluginVersion string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv        string
	Port          string
	DBDriver      string
	DBPath        string
	DatabaseURL   string
	LogLevel      string
	PluginVersion string
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	c := Config{
		AppEnv:        getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:          getOrEnv(p.Port, "PORT", "3005"),
		DBDriver:      getOrEnv(p.DBDriver, "DB_DRIVER", DBDriverSQLite),
		DBPath:        getOrEnv(p.DBPath, "DB_PATH", DefaultDBPath),
		DatabaseURL:   getOrEnv(p.DatabaseURL, "DATABASE_URL", ""),
		LogLevel:      getOrEnv(p.LogLevel, "LOG_LEVEL", "info"),
		PluginVersion: getOrEnv(p.PluginVersion, "PLUGIN_VERSION", DefaultPluginVersion),
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

// DSN returns the data source for the configured driver
func (c Config) DSN() string {
	if c.DBDriver == DBDriverPostgres {
		return c.DatabaseURL
	}

	return c.DBPath
}

func validate(c Config) error {
	if c.Port == "" {
		return ErrPortInvalid
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}

	switch c.DBDriver {
	case DBDriverSQLite:
		if c.DBPath == "" {
			return ErrDBMissingPath
		}
	case DBDriverPostgres:
		if c.DatabaseURL == "" {
			return ErrDBMissingURL
		}
	default:
		return errors.Wrapf(ErrDBDriverInvalid, "'%s'", c.DBDriver)
	}

	if c.PluginVersion == "" {
		return ErrPluginVersionMissing
	}

	return nil
}
