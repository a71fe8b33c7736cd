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
	"github.com/shelfsync/shelfsync/pkg/server/app"
)

// Controllers is a group of controllers
type Controllers struct {
	Plugin      *Plugin
	Books       *Books
	Annotations *Annotations
	Devices     *Devices
	Health      *Health
}

// New returns a new group of controllers
func New(app *app.App) *Controllers {
	c := Controllers{}

	c.Plugin = NewPlugin(app)
	c.Books = NewBooks(app)
	c.Annotations = NewAnnotations(app)
	c.Devices = NewDevices(app)
	c.Health = NewHealth(app)

	return &c
}
