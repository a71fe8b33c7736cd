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

package controllers

import (
	"net/http"

	"github.com/shelfsync/shelfsync/pkg/server/app"
	"github.com/shelfsync/shelfsync/pkg/server/presenters"
)

// NewDevices creates a new Devices controller
func NewDevices(app *app.App) *Devices {
	return &Devices{
		app: app,
	}
}

// Devices is a devices controller
type Devices struct {
	app *app.App
}

// Index handles GET /api/devices
func (d *Devices) Index(w http.ResponseWriter, r *http.Request) {
	devices, err := d.app.GetDevices()
	if err != nil {
		handleJSONError(w, err, "getting devices")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentDevices(devices))
}
