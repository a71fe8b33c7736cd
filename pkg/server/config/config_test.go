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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/assert"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		config      Config
		expectedErr error
	}{
		{
			config: Config{
				DBDriver:      DBDriverSQLite,
				DBPath:        "test.db",
				Port:          "3000",
				PluginVersion: "0.2.0",
			},
			expectedErr: nil,
		},
		{
			config: Config{
				DBDriver:      DBDriverSQLite,
				DBPath:        "",
				Port:          "3000",
				PluginVersion: "0.2.0",
			},
			expectedErr: ErrDBMissingPath,
		},
		{
			config: Config{
				DBDriver:      DBDriverPostgres,
				Port:          "3000",
				PluginVersion: "0.2.0",
			},
			expectedErr: ErrDBMissingURL,
		},
		{
			config: Config{
				DBDriver:      DBDriverPostgres,
				DatabaseURL:   "postgres://localhost/shelfsync",
				Port:          "3000",
				PluginVersion: "0.2.0",
			},
			expectedErr: nil,
		},
		{
			config: Config{
				DBDriver:      "mysql",
				Port:          "3000",
				PluginVersion: "0.2.0",
			},
			expectedErr: ErrDBDriverInvalid,
		},
		{
			config: Config{
				DBDriver: DBDriverSQLite,
				DBPath:   "test.db",
			},
			expectedErr: ErrPortInvalid,
		},
		{
			config: Config{
				DBDriver:      DBDriverSQLite,
				DBPath:        "test.db",
				Port:          "abc",
				PluginVersion: "0.2.0",
			},
			expectedErr: ErrPortInvalid,
		},
		{
			config: Config{
				DBDriver: DBDriverSQLite,
				DBPath:   "test.db",
				Port:     "3000",
			},
			expectedErr: ErrPluginVersionMissing,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			err := validate(tc.config)

			assert.Equal(t, errors.Cause(err), tc.expectedErr, "error mismatch")
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("params take precedence over env", func(t *testing.T) {
		t.Setenv("PORT", "4000")
		t.Setenv("PLUGIN_VERSION", "9.9.9")

		c, err := New(Params{Port: "5000", DBPath: "x.db"})
		if err != nil {
			t.Fatal(errors.Wrap(err, "creating config"))
		}

		assert.Equal(t, c.Port, "5000", "port mismatch")
		assert.Equal(t, c.PluginVersion, "9.9.9", "plugin version mismatch")
		assert.Equal(t, c.DBDriver, DBDriverSQLite, "driver mismatch")
		assert.Equal(t, c.DSN(), "x.db", "dsn mismatch")
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("PLUGIN_VERSION", "")
		t.Setenv("DB_PATH", "")
		t.Setenv("APP_ENV", "")

		c, err := New(Params{})
		if err != nil {
			t.Fatal(errors.Wrap(err, "creating config"))
		}

		assert.Equal(t, c.Port, "3005", "port mismatch")
		assert.Equal(t, c.PluginVersion, DefaultPluginVersion, "plugin version mismatch")
		assert.Equal(t, c.DBPath, DefaultDBPath, "db path mismatch")
		assert.Equal(t, c.IsProd(), true, "should default to production")
	})

	t.Run("postgres dsn", func(t *testing.T) {
		c, err := New(Params{DBDriver: DBDriverPostgres, DatabaseURL: "postgres://db/shelfsync"})
		if err != nil {
			t.Fatal(errors.Wrap(err, "creating config"))
		}

		assert.Equal(t, c.DSN(), "postgres://db/shelfsync", "dsn mismatch")
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := LoadEnvFile(filepath.Join(t.TempDir(), ".env"))
		assert.Equal(t, err, nil, "missing env file should not be an error")
	})

	t.Run("loads values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("SHELFSYNC_TEST_KEY=from-file\n"), 0644); err != nil {
			t.Fatal(errors.Wrap(err, "writing env file"))
		}
		t.Setenv("SHELFSYNC_TEST_KEY", "")
		os.Unsetenv("SHELFSYNC_TEST_KEY")

		if err := LoadEnvFile(path); err != nil {
			t.Fatal(errors.Wrap(err, "loading env file"))
		}

		assert.Equal(t, os.Getenv("SHELFSYNC_TEST_KEY"), "from-file", "env value mismatch")
	})
}
