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

// Package register implements the register command
package register

import (
	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/cli/client"
	"github.com/shelfsync/shelfsync/pkg/cli/context"
	"github.com/shelfsync/shelfsync/pkg/cli/infra"
	"github.com/shelfsync/shelfsync/pkg/cli/log"
	"github.com/shelfsync/shelfsync/pkg/cli/utils"
	"github.com/spf13/cobra"
)

var example = `
  * Register this device with the plugin version it runs
  shelfsync register --pluginVersion 0.2.0 --model "Kobo Clara"`

var (
	pluginVersion string
	model         string
)

// NewCmd returns a new register command
func NewCmd(ctx *context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "register",
		Short:   "Register this device with the server",
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&pluginVersion, "pluginVersion", "", "the plugin version this device runs")
	f.StringVar(&model, "model", "", "the device model, overriding the config file")
	cmd.MarkFlagRequired("pluginVersion")

	return cmd
}

func newRun(ctx *context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if model != "" {
			ctx.Model = model
		}

		d, err := Device(ctx, pluginVersion)
		if err != nil {
			return err
		}

		log.Successf("registered device %s\n", d.ID)
		return nil
	}
}

// Device registers the device of the context, generating and saving a
// device id first if the config has none
func Device(ctx *context.Ctx, version string) (client.DeviceResponse, error) {
	if ctx.DeviceID == "" {
		id, err := utils.GenerateUUID()
		if err != nil {
			return client.DeviceResponse{}, err
		}

		if err := infra.SaveDeviceID(ctx, id); err != nil {
			return client.DeviceResponse{}, errors.Wrap(err, "saving the device id")
		}
		log.Infof("generated device id %s\n", id)
	}

	d, err := client.RegisterDevice(*ctx, client.DeviceParams{
		ID:      ctx.DeviceID,
		Model:   ctx.Model,
		Version: version,
	})
	if err != nil {
		return d, err
	}

	return d, nil
}
