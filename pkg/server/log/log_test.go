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

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	SetLevel(LevelDebug)
	if currentLevel != LevelDebug {
		t.Errorf("Expected level %s, got %s", LevelDebug, currentLevel)
	}

	SetLevel(LevelError)
	if Level() != LevelError {
		t.Errorf("Expected level %s, got %s", LevelError, Level())
	}
}

func TestShouldLog(t *testing.T) {
	defer SetLevel(LevelInfo)

	testCases := []struct {
		currentLevel string
		logLevel     string
		expected     bool
		description  string
	}{
		{LevelDebug, LevelDebug, true, "debug level should show debug"},
		{LevelDebug, LevelError, true, "debug level should show error"},
		{LevelInfo, LevelDebug, false, "info level should not show debug"},
		{LevelInfo, LevelInfo, true, "info level should show info"},
		{LevelInfo, LevelWarn, true, "info level should show warn"},
		{LevelWarn, LevelInfo, false, "warn level should not show info"},
		{LevelWarn, LevelWarn, true, "warn level should show warn"},
		{LevelError, LevelWarn, false, "error level should not show warn"},
		{LevelError, LevelError, true, "error level should show error"},
		{"bogus", LevelDebug, false, "unknown level behaves like info"},
	}

	for _, tc := range testCases {
		SetLevel(tc.currentLevel)
		result := shouldLog(tc.logLevel)
		if result != tc.expected {
			t.Errorf("%s: expected %v, got %v", tc.description, tc.expected, result)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	defer SetLevel(LevelInfo)

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	WithFields(Fields{
		"book_md5": "abc",
		"err":      errors.New("boom"),
	}).Warn("sync failed")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}

	if line[fieldKeyLevel] != LevelWarn {
		t.Errorf("level mismatch: %v", line[fieldKeyLevel])
	}
	if line[fieldKeyMessage] != "sync failed" {
		t.Errorf("message mismatch: %v", line[fieldKeyMessage])
	}
	if line["book_md5"] != "abc" {
		t.Errorf("field mismatch: %v", line["book_md5"])
	}
	if line["err"] != "boom" {
		t.Errorf("error field should be serialized as its message, got %v", line["err"])
	}
}

func TestWriteBelowLevel(t *testing.T) {
	defer SetLevel(LevelInfo)

	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	SetLevel(LevelError)
	Info("hidden")
	Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
