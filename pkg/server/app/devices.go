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

package app

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func upsertDevice(tx *gorm.DB, d database.Device, columns []string) error {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&d).Error; err != nil {
		return errors.Wrapf(err, "upserting device %s", d.ID)
	}

	return nil
}

// touchDevice records that a device synced just now
func touchDevice(tx *gorm.DB, id, model, version string, now time.Time) error {
	columns := []string{"plugin_version", "last_sync_at", "updated_at"}
	if model != "" {
		columns = append(columns, "model")
	}

	return upsertDevice(tx, database.Device{
		ID:            id,
		Model:         model,
		PluginVersion: version,
		LastSyncAt:    &now,
	}, columns)
}

// RegisterDevice creates or updates a device. Devices running a plugin other
// than the required version are rejected.
func (a *App) RegisterDevice(id, model, version string) (database.Device, error) {
	if version != a.PluginVersion {
		return database.Device{}, errors.Wrapf(ErrPluginVersionMismatch, "got %q, want %q", version, a.PluginVersion)
	}
	if id == "" {
		return database.Device{}, invalidf("device id is required")
	}

	if err := upsertDevice(a.DB, database.Device{
		ID:            id,
		Model:         model,
		PluginVersion: version,
	}, []string{"model", "plugin_version", "updated_at"}); err != nil {
		return database.Device{}, err
	}

	var ret database.Device
	if err := a.DB.Where("id = ?", id).First(&ret).Error; err != nil {
		return ret, errors.Wrap(err, "finding device")
	}

	return ret, nil
}

// GetDevices returns all devices, most recently synced first
func (a *App) GetDevices() ([]database.Device, error) {
	var ret []database.Device

	if err := a.DB.Order("last_sync_at DESC, id ASC").Find(&ret).Error; err != nil {
		return nil, errors.Wrap(err, "finding devices")
	}

	return ret, nil
}
