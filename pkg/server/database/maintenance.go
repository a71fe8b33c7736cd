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

package database

import (
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"github.com/shelfsync/shelfsync/pkg/server/log"
	"gorm.io/gorm"
)

const (
	// checkpointInterval is how often the sqlite write-ahead log is folded
	// back into the main database file
	checkpointInterval = 15 * time.Minute
	// vacuumInterval is how often the sqlite file is compacted
	vacuumInterval = 24 * time.Hour
)

// isSQLite reports whether db is backed by sqlite
func isSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == DriverSQLite
}

// Checkpoint truncates the sqlite write-ahead log. It is a no-op on other drivers.
func Checkpoint(db *gorm.DB) error {
	if !isSQLite(db) {
		return nil
	}

	if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return errors.Wrap(err, "checkpointing write-ahead log")
	}

	return nil
}

// Vacuum rebuilds the sqlite database file. It is a no-op on other drivers.
func Vacuum(db *gorm.DB) error {
	if !isSQLite(db) {
		return nil
	}

	if err := db.Exec("VACUUM").Error; err != nil {
		return errors.Wrap(err, "vacuuming database")
	}

	return nil
}

func runJob(name string, fn func(*gorm.DB) error, db *gorm.DB) cron.FuncJob {
	return func() {
		start := time.Now()
		if err := fn(db); err != nil {
			log.WithFields(log.Fields{
				"job": name,
			}).ErrorWrap(err, "maintenance job failed")
			return
		}

		log.WithFields(log.Fields{
			"job":      name,
			"duration": time.Since(start).String(),
		}).Debug("maintenance job finished")
	}
}

// StartMaintenance schedules periodic housekeeping for the database and
// returns a function that stops it. Nothing is scheduled for postgres, which
// manages its own storage.
func StartMaintenance(db *gorm.DB) func() {
	if !isSQLite(db) {
		return func() {}
	}

	c := cron.New()
	c.Schedule(cron.Every(checkpointInterval), runJob("checkpoint", Checkpoint, db))
	c.Schedule(cron.Every(vacuumInterval), runJob("vacuum", Vacuum, db))
	c.Start()

	log.WithFields(log.Fields{
		"checkpoint_interval": checkpointInterval.String(),
		"vacuum_interval":     vacuumInterval.String(),
	}).Info("Scheduled database maintenance.")

	return c.Stop
}
