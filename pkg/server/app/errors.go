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
)

var (
	// ErrNotFound is an error for a missing book or annotation
	ErrNotFound = errors.New("not found")
	// ErrInvalidPayload is an error for a sync payload missing required fields.
	// It is wrapped with the offending field.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrPluginVersionMismatch is an error for a device running a plugin
	// version other than the required one
	ErrPluginVersionMismatch = errors.New("plugin version mismatch")
	// ErrInvalidReferencePages is an error for a non-positive page count override
	ErrInvalidReferencePages = errors.New("reference pages must be positive")
)

// invalidf wraps ErrInvalidPayload with a formatted detail
func invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidPayload, format, args...)
}
