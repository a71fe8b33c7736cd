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

// NewPlugin creates a new Plugin controller
func NewPlugin(app *app.App) *Plugin {
	return &Plugin{
		app: app,
	}
}

// Plugin is the controller for the endpoints called by the reader plugin
type Plugin struct {
	app *app.App
}

// Import handles POST /api/plugin/import
func (p *Plugin) Import(w http.ResponseWriter, r *http.Request) {
	var payload app.SyncPayload
	if err := parseJSON(w, r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	result, err := p.app.Sync(payload)
	if err != nil {
		handleJSONError(w, err, "syncing")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type registerDevicePayload struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

// RegisterDevice handles POST /api/plugin/device
func (p *Plugin) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var payload registerDevicePayload
	if err := parseJSON(w, r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	device, err := p.app.RegisterDevice(payload.ID, payload.Model, payload.Version)
	if err != nil {
		handleJSONError(w, err, "registering device")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentDevice(device))
}
