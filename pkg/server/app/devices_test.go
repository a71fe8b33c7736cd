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
	"testing"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/assert"
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"github.com/shelfsync/shelfsync/pkg/server/testutils"
)

func TestRegisterDevice(t *testing.T) {
	a, _ := newTestApp(t)

	d, err := a.RegisterDevice("device-1", "Kobo Clara", TestPluginVersion)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, d.Model, "Kobo Clara", "model mismatch")
	assert.Equal(t, d.LastSyncAt == nil, true, "registering is not a sync")

	d, err = a.RegisterDevice("device-1", "Kobo Clara BW", TestPluginVersion)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, d.Model, "Kobo Clara BW", "model should be updated")
	assert.Equal(t, testutils.MustCount(t, a.DB, &database.Device{}, "counting devices"), int64(1), "device count mismatch")
}

func TestRegisterDeviceErrors(t *testing.T) {
	a, _ := newTestApp(t)

	_, err := a.RegisterDevice("device-1", "Kobo", "9.9.9")
	assert.Equal(t, errors.Is(err, ErrPluginVersionMismatch), true, "version error mismatch")

	_, err = a.RegisterDevice("", "Kobo", TestPluginVersion)
	assert.Equal(t, errors.Is(err, ErrInvalidPayload), true, "payload error mismatch")

	assert.Equal(t, testutils.MustCount(t, a.DB, &database.Device{}, "counting devices"), int64(0), "nothing should be stored")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name     string
		modify   func(a *App)
		expected error
	}{
		{"valid", func(a *App) {}, nil},
		{"missing db", func(a *App) { a.DB = nil }, ErrEmptyDB},
		{"missing clock", func(a *App) { a.Clock = nil }, ErrEmptyClock},
		{"missing plugin version", func(a *App) { a.PluginVersion = "" }, ErrEmptyPluginVersion},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := newTestApp(t)
			tc.modify(&a)

			assert.Equal(t, a.Validate(), tc.expected, "error mismatch")
		})
	}
}
