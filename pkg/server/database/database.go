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

// Package database defines the storage models and manages the connection,
// schema and housekeeping of the database
package database

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite is the name of the sqlite dialect
	DriverSQLite = "sqlite"
	// DriverPostgres is the name of the postgres dialect
	DriverPostgres = "postgres"

	sqliteParams = "?_busy_timeout=5000&_journal_mode=WAL"
)

// InitSchema migrates database schema to reflect the latest model definition
func InitSchema(db *gorm.DB) {
	if err := db.AutoMigrate(
		&Book{},
		&Device{},
		&BookDevice{},
		&PageStat{},
		&Annotation{},
	); err != nil {
		panic(err)
	}
}

// getDBLogLevel maps the server log level to the gorm logger level. SQL
// statements are only traced at debug.
func getDBLogLevel(level string) logger.LogLevel {
	switch level {
	case log.LevelDebug:
		return logger.Info
	case log.LevelWarn:
		return logger.Warn
	case log.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}

func newConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(getDBLogLevel(log.Level())),
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func getDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		// Create directory if it doesn't exist
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating database directory at %s", dir)
		}

		return sqlite.Open(dsn + sqliteParams), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, errors.Errorf("unsupported database driver '%s'", driver)
	}
}

// Open initializes the database connection for the given driver
func Open(driver, dsn string) *gorm.DB {
	dialector, err := getDialector(driver, dsn)
	if err != nil {
		panic(err)
	}

	db, err := gorm.Open(dialector, newConfig())
	if err != nil {
		panic(errors.Wrap(err, "opening database conection"))
	}

	return db
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.ErrorWrap(err, "getting the connection pool")
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.ErrorWrap(err, "closing the database")
	}
}
