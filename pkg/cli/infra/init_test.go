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

package infra

import (
	"os"
	"testing"

	"github.com/shelfsync/shelfsync/pkg/assert"
	"github.com/shelfsync/shelfsync/pkg/cli/config"
	"github.com/shelfsync/shelfsync/pkg/cli/consts"
	"github.com/shelfsync/shelfsync/pkg/cli/log"
)

func TestInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()

	ctx, err := Init("0.1.0", dir)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, ctx.Endpoint, consts.DefaultEndpoint, "endpoint mismatch")
	assert.Equal(t, ctx.Version, "0.1.0", "version mismatch")
	assert.Equal(t, ctx.Silent, false, "silent mismatch")
	assert.NotEqual(t, ctx.HTTPClient, nil, "http client should be set")

	if _, err := os.Stat(config.GetPath(*ctx)); err != nil {
		t.Fatalf("config file should exist: %s", err)
	}
}

func TestInitReadsExistingConfig(t *testing.T) {
	defer log.SetSilent(false)

	dir := t.TempDir()

	ctx, err := Init("0.1.0", dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := config.Write(*ctx, config.Config{
		Endpoint: "http://reader.local/api",
		Silent:   true,
		DeviceID: "kobo-1",
		Model:    "Kobo Clara",
	}); err != nil {
		t.Fatal(err)
	}

	ctx, err = Init("0.1.0", dir)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, ctx.Endpoint, "http://reader.local/api", "endpoint mismatch")
	assert.Equal(t, ctx.Silent, true, "silent mismatch")
	assert.Equal(t, ctx.DeviceID, "kobo-1", "device id mismatch")
	assert.Equal(t, ctx.Model, "Kobo Clara", "model mismatch")
}

func TestSaveDeviceID(t *testing.T) {
	dir := t.TempDir()

	ctx, err := Init("0.1.0", dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := SaveDeviceID(ctx, "device-9"); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ctx.DeviceID, "device-9", "context device id mismatch")

	cf, err := config.Read(*ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, cf.DeviceID, "device-9", "persisted device id mismatch")
	assert.Equal(t, cf.Endpoint, consts.DefaultEndpoint, "endpoint should be kept")
}
