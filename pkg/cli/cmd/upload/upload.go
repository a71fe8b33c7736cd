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

// Package upload implements the upload command
package upload

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/cli/client"
	"github.com/shelfsync/shelfsync/pkg/cli/context"
	"github.com/shelfsync/shelfsync/pkg/cli/infra"
	"github.com/shelfsync/shelfsync/pkg/cli/log"
	"github.com/spf13/cobra"
)

var example = `
  * Upload an export file
  shelfsync upload ~/kobo/shelfsync-export.json

  * Upload without reconciling deletions
  shelfsync upload --incremental export.json`

var incremental bool

// NewCmd returns a new upload command
func NewCmd(ctx *context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upload <export file>",
		Short:   "Upload an export file to the server",
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&incremental, "incremental", "i", false, "upload annotations without detecting deletions")

	return cmd
}

func newRun(ctx *context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		mode := ""
		if incremental {
			mode = ModeIncremental
		}

		if _, err := File(*ctx, args[0], mode); err != nil {
			return err
		}

		return nil
	}
}

const (
	// ModeIncremental marks an upload whose annotation lists are partial
	ModeIncremental = "incremental"
)

// Prepare fills in the device of an export payload from the context when
// the payload does not carry one, and sets the annotation sync mode if given.
// Other fields are passed through untouched.
func Prepare(body []byte, ctx context.Ctx, mode string) ([]byte, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "decoding the export file")
	}
	if payload == nil {
		return nil, errors.New("export file is empty")
	}

	var device struct {
		ID    string `json:"id"`
		Model string `json:"model,omitempty"`
	}
	if raw, ok := payload["device"]; ok {
		if err := json.Unmarshal(raw, &device); err != nil {
			return nil, errors.Wrap(err, "decoding device")
		}
	}

	if device.ID == "" && ctx.DeviceID != "" {
		device.ID = ctx.DeviceID
		if device.Model == "" {
			device.Model = ctx.Model
		}

		b, err := json.Marshal(device)
		if err != nil {
			return nil, errors.Wrap(err, "encoding device")
		}
		payload["device"] = b
	}

	if mode != "" {
		b, err := json.Marshal(mode)
		if err != nil {
			return nil, errors.Wrap(err, "encoding mode")
		}
		payload["annotation_sync"] = b
	}

	ret, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encoding payload")
	}

	return ret, nil
}

// File uploads the export file at the given path and reports the result
func File(ctx context.Ctx, path, mode string) (client.ImportResponse, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return client.ImportResponse{}, errors.Wrap(err, "reading the export file")
	}

	body, err := Prepare(b, ctx, mode)
	if err != nil {
		return client.ImportResponse{}, err
	}

	log.Infof("uploading %s to %s\n", path, ctx.Endpoint)

	res, err := client.Import(ctx, body)
	if err != nil {
		return res, errors.Wrap(err, "uploading")
	}

	log.Successf("synced %d books (%d new), %d page stats, %d annotations, %d deleted\n",
		res.Books, res.NewBooks, res.Stats, res.Annotations, res.Deleted)

	return res, nil
}
