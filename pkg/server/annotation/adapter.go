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

package annotation

import (
	"bytes"
	"encoding/json"

	"github.com/shelfsync/shelfsync/pkg/server/database"
)

const (
	// TypeHighlight is a styled text selection
	TypeHighlight = "highlight"
	// TypeNote is a highlight carrying a user note
	TypeNote = "note"
	// TypeBookmark is a position marker without styling
	TypeBookmark = "bookmark"
)

// Types lists the annotation types in display order
var Types = []string{TypeHighlight, TypeNote, TypeBookmark}

// IsType reports whether s names an annotation type
func IsType(s string) bool {
	for _, t := range Types {
		if s == t {
			return true
		}
	}
	return false
}

// Classify infers the annotation type. The first matching rule wins:
// nothing styled and no position markers makes a bookmark, a note together
// with an excerpt makes a note, and anything else is a highlight.
func Classify(r Raw) string {
	if isBlank(r.Drawer) && isBlank(r.Color) && !hasMarker(r.Pos0) && !hasMarker(r.Pos1) {
		return TypeBookmark
	}
	if !isBlank(r.Note) && !isBlank(r.Text) {
		return TypeNote
	}

	return TypeHighlight
}

// Adapt converts a raw annotation into the stored representation for the
// given book and device
func Adapt(bookMD5, deviceID string, r Raw) database.Annotation {
	ret := database.Annotation{
		BookMD5:         bookMD5,
		DeviceID:        deviceID,
		Page:            string(r.Page),
		Datetime:        r.Datetime,
		AnnotationType:  Classify(r),
		Note:            r.Note,
		Chapter:         r.Chapter,
		LastPageno:      r.Pageno,
		DatetimeUpdated: r.DatetimeUpdated,
		Pageno:          r.Pageno,
		TotalPages:      r.TotalPages,
		Drawer:          r.Drawer,
		Color:           r.Color,
		Pos0:            marker(r.Pos0),
		Pos1:            marker(r.Pos1),
	}
	if r.Text != nil {
		ret.Text = *r.Text
	}

	return ret
}

// marker compacts a position marker for storage
func marker(m json.RawMessage) *string {
	if !hasMarker(m) {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, m); err != nil {
		s := string(bytes.TrimSpace(m))
		return &s
	}

	s := buf.String()
	return &s
}
