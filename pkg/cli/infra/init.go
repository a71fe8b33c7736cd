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

// Package infra provides operations and definitions for the
// local infrastructure of the shelfsync CLI
package infra

import (
	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/cli/client"
	"github.com/shelfsync/shelfsync/pkg/cli/config"
	"github.com/shelfsync/shelfsync/pkg/cli/consts"
	"github.com/shelfsync/shelfsync/pkg/cli/context"
	"github.com/shelfsync/shelfsync/pkg/cli/log"
	"github.com/shelfsync/shelfsync/pkg/cli/utils"
	"github.com/spf13/cobra"
)

// RunEFunc is a function type of shelfsync commands
type RunEFunc func(*cobra.Command, []string) error

// Init initializes the config file if necessary and returns a new context.
// An empty configDir resolves to the XDG config home.
func Init(versionTag, configDir string) (*context.Ctx, error) {
	if configDir == "" {
		configDir = xdg.ConfigHome
	}

	ctx := context.Ctx{
		Paths:   context.Paths{Config: configDir},
		Version: versionTag,
	}

	if err := initConfigFile(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing the config file")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	ctx.Endpoint = cf.Endpoint
	ctx.Silent = cf.Silent
	ctx.DeviceID = cf.DeviceID
	ctx.Model = cf.Model
	ctx.HTTPClient = client.NewRateLimitedHTTPClient()

	log.SetSilent(ctx.Silent)
	log.Debug("context: %+v\n", ctx)

	return &ctx, nil
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.Ctx) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	cf := config.Config{
		Endpoint: consts.DefaultEndpoint,
	}
	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// SaveDeviceID persists the device id to the config file and the context
func SaveDeviceID(ctx *context.Ctx, deviceID string) error {
	cf, err := config.Read(*ctx)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}

	cf.DeviceID = deviceID
	if err := config.Write(*ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	ctx.DeviceID = deviceID

	return nil
}
