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

package presenters

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shelfsync/shelfsync/pkg/server/annotation"
	"github.com/shelfsync/shelfsync/pkg/server/database"
)

// Marker is one end of a highlighted range. Fixed-layout documents locate it
// by coordinates on a page, reflowable ones by a pointer into the document.
type Marker struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Page     *int     `json:"page,omitempty"`
	XPointer string   `json:"xpointer,omitempty"`
}

// ParseMarker decodes a stored position marker. It returns nil for markers
// that are absent or cannot be decoded.
func ParseMarker(s *string) *Marker {
	if s == nil {
		return nil
	}

	raw := strings.TrimSpace(*s)
	if raw == "" || raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var xp string
		if err := json.Unmarshal([]byte(raw), &xp); err != nil {
			return nil
		}
		return &Marker{XPointer: xp}
	}

	var m Marker
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}

	return &m
}

// Annotation is a result of PresentAnnotations
type Annotation struct {
	ID              int                 `json:"id"`
	BookMD5         string              `json:"book_md5"`
	DeviceID        string              `json:"device_id"`
	Type            string              `json:"annotation_type"`
	Page            annotation.Position `json:"page"`
	Datetime        string              `json:"datetime"`
	DatetimeUpdated *string             `json:"datetime_updated"`
	Text            string              `json:"text"`
	Note            *string             `json:"note"`
	Chapter         *string             `json:"chapter"`
	Pageno          *int                `json:"pageno"`
	LastPageno      *int                `json:"last_pageno"`
	TotalPages      *int                `json:"total_pages"`
	DisplayPage     *int                `json:"display_page"`
	Drawer          *string             `json:"drawer"`
	Color           *string             `json:"color"`
	Pos0            *Marker             `json:"pos0"`
	Pos1            *Marker             `json:"pos1"`
	Deleted         bool                `json:"deleted"`
	DeletedAt       *time.Time          `json:"deleted_at"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// PresentAnnotation presents an annotation, placing it in a book currently
// paginated to currentPages
func PresentAnnotation(a database.Annotation, currentPages *int) Annotation {
	ret := Annotation{
		ID:              a.ID,
		BookMD5:         a.BookMD5,
		DeviceID:        a.DeviceID,
		Type:            a.AnnotationType,
		Page:            annotation.Position(a.Page),
		Datetime:        a.Datetime,
		DatetimeUpdated: a.DatetimeUpdated,
		Text:            a.Text,
		Note:            a.Note,
		Chapter:         a.Chapter,
		Pageno:          a.Pageno,
		LastPageno:      a.LastPageno,
		TotalPages:      a.TotalPages,
		DisplayPage:     annotation.DisplayPage(a.Pageno, a.TotalPages, currentPages),
		Drawer:          a.Drawer,
		Color:           a.Color,
		Pos0:            ParseMarker(a.Pos0),
		Pos1:            ParseMarker(a.Pos1),
		Deleted:         a.DeletedAt != nil,
		CreatedAt:       FormatTS(a.CreatedAt),
		UpdatedAt:       FormatTS(a.UpdatedAt),
	}

	if a.DeletedAt != nil {
		t := FormatTS(*a.DeletedAt)
		ret.DeletedAt = &t
	}

	return ret
}

// PresentAnnotations presents annotations of one book
func PresentAnnotations(annotations []database.Annotation, currentPages *int) []Annotation {
	ret := []Annotation{}

	for _, a := range annotations {
		ret = append(ret, PresentAnnotation(a, currentPages))
	}

	return ret
}
