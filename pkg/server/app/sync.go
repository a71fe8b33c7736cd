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
	"maps"
	"slices"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/annotation"
	"github.com/shelfsync/shelfsync/pkg/server/log"
	"gorm.io/gorm"
)

const (
	// AnnotationSyncFull means the annotations of a book are everything the
	// device has for it. Stored annotations missing from it are deleted.
	AnnotationSyncFull = "full"
	// AnnotationSyncIncremental means the annotations of a book are only
	// the ones changed on the device. Nothing is deleted.
	AnnotationSyncIncremental = "incremental"
)

// BookPayload is a book with the statistics of the syncing device. Omitted
// statistics keep their stored values.
type BookPayload struct {
	ID             *int64 `json:"id,omitempty"`
	MD5            string `json:"md5"`
	Title          string `json:"title"`
	Authors        string `json:"authors"`
	Series         string `json:"series"`
	Language       string `json:"language"`
	LastOpen       *int64 `json:"last_open,omitempty"`
	Pages          *int   `json:"pages,omitempty"`
	Notes          *int   `json:"notes,omitempty"`
	Highlights     *int   `json:"highlights,omitempty"`
	TotalReadTime  *int64 `json:"total_read_time,omitempty"`
	TotalReadPages *int   `json:"total_read_pages,omitempty"`
}

// StatPayload is a page view
type StatPayload struct {
	BookMD5    string `json:"book_md5"`
	DeviceID   string `json:"device_id,omitempty"`
	Page       *int   `json:"page"`
	StartTime  *int64 `json:"start_time"`
	Duration   *int64 `json:"duration"`
	TotalPages *int   `json:"total_pages,omitempty"`
}

// DevicePayload describes the syncing device
type DevicePayload struct {
	ID    string `json:"id"`
	Model string `json:"model,omitempty"`
}

// SyncPayload is what a device uploads on sync
type SyncPayload struct {
	Version        string                      `json:"version"`
	Device         DevicePayload               `json:"device"`
	AnnotationSync string                      `json:"annotation_sync,omitempty"`
	Books          []BookPayload               `json:"books"`
	Stats          []StatPayload               `json:"stats"`
	Annotations    map[string][]annotation.Raw `json:"annotations"`
}

// SyncResult summarizes a sync
type SyncResult struct {
	DeviceID    string `json:"device_id"`
	Books       int    `json:"books"`
	NewBooks    int64  `json:"new_books"`
	Stats       int    `json:"stats"`
	Annotations int    `json:"annotations"`
	Deleted     int64  `json:"deleted"`
}

// DeviceID returns the id of the syncing device. Payloads without a device
// fall back to the device of their page stats.
func (p SyncPayload) DeviceID() string {
	if p.Device.ID != "" {
		return p.Device.ID
	}

	for _, s := range p.Stats {
		if s.DeviceID != "" {
			return s.DeviceID
		}
	}

	return ""
}

// IsFull reports whether deleted annotations are to be detected
func (p SyncPayload) IsFull() bool {
	return p.AnnotationSync == "" || p.AnnotationSync == AnnotationSyncFull
}

// Validate rejects payloads from other plugin versions and payloads missing
// required fields
func (p SyncPayload) Validate(requiredVersion string) error {
	if p.Version != requiredVersion {
		return errors.Wrapf(ErrPluginVersionMismatch, "got %q, want %q", p.Version, requiredVersion)
	}

	deviceID := p.DeviceID()
	if deviceID == "" {
		return invalidf("device id is required")
	}

	switch p.AnnotationSync {
	case "", AnnotationSyncFull, AnnotationSyncIncremental:
	default:
		return invalidf("unknown annotation_sync %q", p.AnnotationSync)
	}

	for i, b := range p.Books {
		if b.MD5 == "" {
			return invalidf("books[%d]: md5 is required", i)
		}
		if b.Title == "" {
			return invalidf("books[%d]: title is required", i)
		}
	}

	for i, s := range p.Stats {
		if s.BookMD5 == "" {
			return invalidf("stats[%d]: book_md5 is required", i)
		}
		if s.Page == nil {
			return invalidf("stats[%d]: page is required", i)
		}
		if s.StartTime == nil {
			return invalidf("stats[%d]: start_time is required", i)
		}
		if s.Duration == nil {
			return invalidf("stats[%d]: duration is required", i)
		}
		if s.DeviceID != "" && s.DeviceID != deviceID {
			return invalidf("stats[%d]: device_id %q does not match the syncing device %q", i, s.DeviceID, deviceID)
		}
	}

	for md5, raws := range p.Annotations {
		if md5 == "" {
			return invalidf("annotations: book md5 is required")
		}
		for i, r := range raws {
			if err := r.Validate(); err != nil {
				return invalidf("annotations[%s][%d]: %s", md5, i, err.Error())
			}
		}
	}

	return nil
}

// Sync applies a device upload in one transaction: books, the device, book
// statistics, page stats, and then the annotations of every book included.
// Either all of it is stored or none of it.
func (a *App) Sync(p SyncPayload) (SyncResult, error) {
	if err := p.Validate(a.PluginVersion); err != nil {
		return SyncResult{}, err
	}

	ret := SyncResult{
		DeviceID: p.DeviceID(),
		Books:    len(p.Books),
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		newBooks, err := upsertBooks(tx, p.Books)
		if err != nil {
			return err
		}
		ret.NewBooks = newBooks

		if err := touchDevice(tx, ret.DeviceID, p.Device.Model, p.Version, a.Clock.Now()); err != nil {
			return err
		}

		for _, b := range p.Books {
			if err := upsertBookDevice(tx, ret.DeviceID, b); err != nil {
				return err
			}
		}

		ret.Stats, err = upsertPageStats(tx, ret.DeviceID, p.Stats)
		if err != nil {
			return err
		}

		for _, md5 := range slices.Sorted(maps.Keys(p.Annotations)) {
			raws := p.Annotations[md5]
			// a null list carries no snapshot; only [] reconciles to empty
			if raws == nil {
				continue
			}

			ok, err := bookExists(tx, md5)
			if err != nil {
				return err
			}
			if !ok {
				return invalidf("annotations: unknown book %s", md5)
			}

			n, err := a.UpsertAnnotations(tx, md5, ret.DeviceID, raws)
			if err != nil {
				return err
			}
			ret.Annotations += n

			if !p.IsFull() {
				continue
			}

			deleted, err := a.MarkDeletedAnnotations(tx, md5, ret.DeviceID, annotation.NewKeySet(raws))
			if err != nil {
				return err
			}
			ret.Deleted += deleted
		}

		return nil
	})
	if err != nil {
		return SyncResult{}, errors.Wrap(err, "syncing")
	}

	log.WithFields(log.Fields{
		"device_id":   ret.DeviceID,
		"books":       ret.Books,
		"new_books":   ret.NewBooks,
		"stats":       ret.Stats,
		"annotations": ret.Annotations,
		"deleted":     ret.Deleted,
	}).Info("Synced device.")

	return ret, nil
}
