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

// Package config reads and writes the YAML config file of the CLI
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/cli/consts"
	"github.com/shelfsync/shelfsync/pkg/cli/context"
	"gopkg.in/yaml.v2"
)

// Config holds shelfsync configuration
type Config struct {
	Endpoint string `yaml:"endpoint"`
	Silent   bool   `yaml:"silent"`
	DeviceID string `yaml:"deviceId,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// GetPath returns the path to the config file
func GetPath(ctx context.Ctx) string {
	return filepath.Join(ctx.Paths.Config, consts.DirName, consts.ConfigFilename)
}

// Read reads the config file
func Read(ctx context.Ctx) (Config, error) {
	var ret Config

	configPath := GetPath(ctx)
	b, err := os.ReadFile(configPath)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(ctx context.Ctx, cf Config) error {
	path := GetPath(ctx)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating the config directory")
	}

	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}
