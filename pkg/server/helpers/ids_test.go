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

package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shelfsync/shelfsync/pkg/assert"
)

func TestGenUUID(t *testing.T) {
	got, err := GenUUID()
	if err != nil {
		t.Fatalf("generating: %v", err)
	}

	_, err = uuid.Parse(got)
	assert.Equal(t, err, nil, "should be a valid uuid")
}

func TestParseID(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseID(tc.input)

			assert.Equal(t, err != nil, tc.wantErr, "error mismatch")
			assert.Equal(t, got, tc.expected, "id mismatch")
		})
	}
}
