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

package presenters

import (
	"time"

	"github.com/shelfsync/shelfsync/pkg/server/database"
)

// Device is a result of PresentDevices
type Device struct {
	ID            string     `json:"id"`
	Model         string     `json:"model"`
	PluginVersion string     `json:"plugin_version"`
	LastSyncAt    *time.Time `json:"last_sync_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PresentDevice presents a device
func PresentDevice(d database.Device) Device {
	ret := Device{
		ID:            d.ID,
		Model:         d.Model,
		PluginVersion: d.PluginVersion,
		CreatedAt:     FormatTS(d.CreatedAt),
	}
	if d.LastSyncAt != nil {
		t := FormatTS(*d.LastSyncAt)
		ret.LastSyncAt = &t
	}

	return ret
}

// PresentDevices presents devices
func PresentDevices(devices []database.Device) []Device {
	ret := []Device{}

	for _, d := range devices {
		ret = append(ret, PresentDevice(d))
	}

	return ret
}
