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

// Package context defines the shelfsync CLI context
package context

import (
	"net/http"
)

// Paths contain directory definitions
type Paths struct {
	Config string
}

// Ctx is a context holding the information of the current runtime
type Ctx struct {
	Paths      Paths
	Endpoint   string
	Version    string
	DeviceID   string
	Model      string
	Silent     bool
	HTTPClient *http.Client
}
