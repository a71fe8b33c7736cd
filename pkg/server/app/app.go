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
	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/clock"
	"gorm.io/gorm"
)

var (
	// ErrEmptyDB is an error for missing database connection in the app configuration
	ErrEmptyDB = errors.New("No database connection was provided")
	// ErrEmptyClock is an error for missing clock in the app configuration
	ErrEmptyClock = errors.New("No clock was provided")
	// ErrEmptyPluginVersion is an error for missing required plugin version in the app configuration
	ErrEmptyPluginVersion = errors.New("No plugin version was provided")
)

// App is an application context
type App struct {
	DB    *gorm.DB
	Clock clock.Clock
	// PluginVersion is the exact version devices must report to sync
	PluginVersion string
	Port          string
	DBDriver      string
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.Clock == nil {
		return ErrEmptyClock
	}
	if a.DB == nil {
		return ErrEmptyDB
	}
	if a.PluginVersion == "" {
		return ErrEmptyPluginVersion
	}

	return nil
}

// inTx runs fn in tx when it is given, or in a new transaction otherwise
func (a *App) inTx(tx *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx != nil {
		return fn(tx)
	}

	return a.DB.Transaction(fn)
}
