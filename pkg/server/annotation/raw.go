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

// Package annotation converts the annotations a reader exports into the
// durable model and defines how they are identified across syncs.
package annotation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Position is the location reference of an annotation. It is a page index
// for fixed-layout documents and a structural pointer for reflowable ones.
// Devices send the former as a JSON number, which is kept as its literal text.
type Position string

// UnmarshalJSON accepts a JSON string or number
func (p *Position) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decoding position")
		}
		*p = Position(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Errorf("position must be a string or a number, got %s", string(data))
	}
	*p = Position(n.String())

	return nil
}

// MarshalJSON writes numeric positions back as numbers
func (p Position) MarshalJSON() ([]byte, error) {
	if p.IsPage() {
		return []byte(p), nil
	}

	return json.Marshal(string(p))
}

// IsPage reports whether the position is a page index
func (p Position) IsPage() bool {
	if p == "" {
		return false
	}
	n, err := strconv.ParseInt(string(p), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(p)
}

// Raw is an annotation as exported by a reader. Only datetime and page are required.
type Raw struct {
	Datetime        string          `json:"datetime"`
	DatetimeUpdated *string         `json:"datetime_updated,omitempty"`
	Drawer          *string         `json:"drawer,omitempty"`
	Color           *string         `json:"color,omitempty"`
	Text            *string         `json:"text,omitempty"`
	Note            *string         `json:"note,omitempty"`
	Chapter         *string         `json:"chapter,omitempty"`
	Pageno          *int            `json:"pageno,omitempty"`
	Page            Position        `json:"page"`
	TotalPages      *int            `json:"total_pages,omitempty"`
	Pos0            json.RawMessage `json:"pos0,omitempty"`
	Pos1            json.RawMessage `json:"pos1,omitempty"`
}

// Validate checks that the fields making up the identity are present
func (r Raw) Validate() error {
	if strings.TrimSpace(r.Datetime) == "" {
		return errors.New("datetime is required")
	}
	if r.Page == "" {
		return errors.New("page is required")
	}
	if r.Pageno != nil && *r.Pageno < 0 {
		return errors.Errorf("pageno must not be negative, got %d", *r.Pageno)
	}
	if r.TotalPages != nil && *r.TotalPages < 0 {
		return errors.Errorf("total_pages must not be negative, got %d", *r.TotalPages)
	}
	for name, m := range map[string]json.RawMessage{"pos0": r.Pos0, "pos1": r.Pos1} {
		if hasMarker(m) && !json.Valid(m) {
			return errors.Errorf("%s is not valid JSON", name)
		}
	}

	return nil
}

func hasMarker(m json.RawMessage) bool {
	m = bytes.TrimSpace(m)
	return len(m) > 0 && !bytes.Equal(m, []byte("null"))
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
