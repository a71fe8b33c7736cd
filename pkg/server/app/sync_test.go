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
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/assert"
	"github.com/shelfsync/shelfsync/pkg/server/annotation"
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"github.com/shelfsync/shelfsync/pkg/server/testutils"
	"gorm.io/gorm"
)

func int64Ptr(i int64) *int64 { return &i }

func newPayload(annotations map[string][]annotation.Raw) SyncPayload {
	return SyncPayload{
		Version: TestPluginVersion,
		Device:  DevicePayload{ID: "device-1", Model: "Kobo Libra 2"},
		Books: []BookPayload{
			{MD5: "md5-1", Title: "Dune", Authors: "Frank Herbert", LastOpen: int64Ptr(1700000000), Pages: intPtr(600), TotalReadTime: int64Ptr(3600), TotalReadPages: intPtr(40)},
			{MD5: "md5-2", Title: "Emma", Authors: "Jane Austen", LastOpen: int64Ptr(1700000500), Pages: intPtr(420)},
		},
		Stats: []StatPayload{
			{BookMD5: "md5-1", Page: intPtr(10), StartTime: int64Ptr(1700000000), Duration: int64Ptr(60), TotalPages: intPtr(600)},
			{BookMD5: "md5-1", Page: intPtr(11), StartTime: int64Ptr(1700000060), Duration: int64Ptr(45), TotalPages: intPtr(600)},
		},
		Annotations: annotations,
	}
}

func mustSync(t *testing.T, a *App, p SyncPayload) SyncResult {
	t.Helper()

	res, err := a.Sync(p)
	if err != nil {
		t.Fatal(errors.Wrap(err, "syncing"))
	}

	return res
}

func TestSync(t *testing.T) {
	a, _ := newTestApp(t)

	res := mustSync(t, &a, newPayload(map[string][]annotation.Raw{
		"md5-1": {
			highlight("2024-05-01 10:00:00", "10", "one"),
			{Datetime: "2024-05-01 11:00:00", Page: "11"},
		},
	}))

	assert.Equal(t, res, SyncResult{
		DeviceID:    "device-1",
		Books:       2,
		NewBooks:    2,
		Stats:       2,
		Annotations: 2,
		Deleted:     0,
	}, "result mismatch")

	var device database.Device
	testutils.MustExec(t, a.DB.First(&device, "id = ?", "device-1"), "finding device")
	assert.Equal(t, device.Model, "Kobo Libra 2", "device model mismatch")
	assert.Equal(t, device.PluginVersion, TestPluginVersion, "device version mismatch")
	assert.Equal(t, device.LastSyncAt != nil && device.LastSyncAt.Equal(a.Clock.Now()), true, "last_sync_at mismatch")

	var bd database.BookDevice
	testutils.MustExec(t, a.DB.Where("book_md5 = ? AND device_id = ?", "md5-1", "device-1").First(&bd), "finding book device")
	assert.Equal(t, bd.Pages, 600, "pages mismatch")
	assert.Equal(t, bd.TotalReadTime, int64(3600), "total_read_time mismatch")
	assert.Equal(t, bd.TotalReadPages, 40, "total_read_pages mismatch")

	assert.Equal(t, testutils.MustCount(t, a.DB, &database.PageStat{}, "counting page stats"), int64(2), "page stat count mismatch")
	assert.Equal(t, testutils.MustCount(t, a.DB, &database.Annotation{}, "counting annotations"), int64(2), "annotation count mismatch")
}

func TestSyncBooksAreInsertedOnce(t *testing.T) {
	a, _ := newTestApp(t)
	mustSync(t, &a, newPayload(nil))

	p := newPayload(nil)
	p.Books[0].Title = "Dune (renamed)"
	res := mustSync(t, &a, p)

	var book database.Book
	testutils.MustExec(t, a.DB.Where("md5 = ?", "md5-1").First(&book), "finding book")
	assert.Equal(t, book.Title, "Dune", "known books should not change")
	assert.Equal(t, res.NewBooks, int64(0), "new book count mismatch")
	assert.Equal(t, testutils.MustCount(t, a.DB, &database.Book{}, "counting books"), int64(2), "book count mismatch")
}

func TestSyncKeepsOmittedStatistics(t *testing.T) {
	a, _ := newTestApp(t)
	mustSync(t, &a, newPayload(nil))

	// annotation-only sync: no reading time
	p := newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t1", "1", "one")},
	})
	p.Books = []BookPayload{{MD5: "md5-1", Title: "Dune", Pages: intPtr(640)}}
	p.Stats = nil
	mustSync(t, &a, p)

	var bd database.BookDevice
	testutils.MustExec(t, a.DB.Where("book_md5 = ? AND device_id = ?", "md5-1", "device-1").First(&bd), "finding book device")
	assert.Equal(t, bd.Pages, 640, "pages should be updated")
	assert.Equal(t, bd.TotalReadTime, int64(3600), "total_read_time should be kept")
	assert.Equal(t, bd.TotalReadPages, 40, "total_read_pages should be kept")
	assert.Equal(t, bd.LastOpen, int64(1700000000), "last_open should be kept")
}

func TestSyncMergesPageStats(t *testing.T) {
	a, _ := newTestApp(t)
	mustSync(t, &a, newPayload(nil))

	p := newPayload(nil)
	p.Stats = []StatPayload{
		{BookMD5: "md5-1", Page: intPtr(10), StartTime: int64Ptr(1700000000), Duration: int64Ptr(90), TotalPages: intPtr(610)},
	}
	mustSync(t, &a, p)

	var stat database.PageStat
	testutils.MustExec(t, a.DB.Where("page = ? AND start_time = ?", 10, 1700000000).First(&stat), "finding page stat")
	assert.Equal(t, testutils.MustCount(t, a.DB, &database.PageStat{}, "counting page stats"), int64(2), "page stat count mismatch")
	assert.Equal(t, stat.Duration, int64(90), "duration mismatch")
	assert.Equal(t, stat.TotalPages, 610, "total_pages mismatch")
	assert.Equal(t, stat.DeviceID, "device-1", "device mismatch")
}

func TestSyncDetectsDeletions(t *testing.T) {
	a, c := newTestApp(t)

	batch := []annotation.Raw{
		highlight("t1", "1", "one"),
		highlight("t2", "2", "two"),
		highlight("t3", "3", "three"),
	}
	mustSync(t, &a, newPayload(map[string][]annotation.Raw{"md5-1": batch}))

	c.Advance(time.Hour)
	res := mustSync(t, &a, newPayload(map[string][]annotation.Raw{"md5-1": batch[:2]}))
	assert.Equal(t, res.Deleted, int64(1), "deleted count mismatch")

	var deleted database.Annotation
	testutils.MustExec(t, a.DB.Where("datetime = ?", "t3").First(&deleted), "finding deleted annotation")
	deletedAt := *deleted.DeletedAt

	c.Advance(time.Hour)
	res = mustSync(t, &a, newPayload(map[string][]annotation.Raw{"md5-1": batch[:2]}))
	assert.Equal(t, res.Deleted, int64(0), "repeat should delete nothing")

	testutils.MustExec(t, a.DB.Where("datetime = ?", "t3").First(&deleted), "finding deleted annotation")
	assert.Equal(t, deleted.DeletedAt.Equal(deletedAt), true, "deleted_at should not change")

	active, err := a.GetAnnotations("md5-1", AnnotationFilter{})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, len(active), 2, "active count mismatch")
}

func TestSyncAbsentBookIsNotReconciled(t *testing.T) {
	a, _ := newTestApp(t)
	mustSync(t, &a, newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t1", "1", "one")},
	}))

	res := mustSync(t, &a, newPayload(map[string][]annotation.Raw{
		"md5-2": {highlight("t9", "9", "nine")},
	}))

	deleted, err := a.GetDeletedCount("md5-1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, res.Deleted, int64(0), "deleted count mismatch")
	assert.Equal(t, deleted, int64(0), "book absent from the sync should keep its annotations")
}

func TestSyncNullAnnotationListIsNotReconciled(t *testing.T) {
	a, _ := newTestApp(t)
	mustSync(t, &a, newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t1", "1", "one")},
	}))

	var annotations map[string][]annotation.Raw
	if err := json.Unmarshal([]byte(`{"md5-1": null}`), &annotations); err != nil {
		t.Fatal(errors.Wrap(err, "decoding annotations"))
	}
	res := mustSync(t, &a, newPayload(annotations))
	assert.Equal(t, res.Deleted, int64(0), "null list should delete nothing")

	active, err := a.GetAnnotations("md5-1", AnnotationFilter{})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, len(active), 1, "active count mismatch")

	res = mustSync(t, &a, newPayload(map[string][]annotation.Raw{"md5-1": {}}))
	assert.Equal(t, res.Deleted, int64(1), "empty list should reconcile the book")
}

func TestSyncIncremental(t *testing.T) {
	a, _ := newTestApp(t)
	mustSync(t, &a, newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t1", "1", "one"), highlight("t2", "2", "two")},
	}))

	p := newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t3", "3", "three")},
	})
	p.AnnotationSync = AnnotationSyncIncremental
	res := mustSync(t, &a, p)

	assert.Equal(t, res.Deleted, int64(0), "incremental sync should not delete")
	assert.Equal(t, testutils.MustCount(t, a.DB.Where("deleted_at IS NULL"), &database.Annotation{}, "counting"), int64(3), "active count mismatch")
}

func TestSyncRestoredAnnotationCanBeDeletedAgain(t *testing.T) {
	a, c := newTestApp(t)
	mustSync(t, &a, newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t1", "1", "one"), highlight("t2", "2", "two")},
	}))
	mustSync(t, &a, newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t1", "1", "one")},
	}))

	var record database.Annotation
	testutils.MustExec(t, a.DB.Where("datetime = ?", "t2").First(&record), "finding annotation")
	if _, err := a.RestoreAnnotation(record.ID); err != nil {
		t.Fatal(err)
	}

	c.Advance(time.Hour)
	res := mustSync(t, &a, newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t1", "1", "one")},
	}))

	testutils.MustExec(t, a.DB.First(&record, record.ID), "finding annotation")
	assert.Equal(t, res.Deleted, int64(1), "deleted count mismatch")
	assert.Equal(t, record.DeletedAt != nil && record.DeletedAt.Equal(c.Now()), true, "deleted_at mismatch")
}

func assertNothingStored(t *testing.T, db *gorm.DB) {
	t.Helper()

	for _, model := range []interface{}{&database.Book{}, &database.Device{}, &database.BookDevice{}, &database.PageStat{}, &database.Annotation{}} {
		assert.Equal(t, testutils.MustCount(t, db, model, "counting"), int64(0), "nothing should be stored")
	}
}

func TestSyncVersionMismatch(t *testing.T) {
	a, _ := newTestApp(t)

	p := newPayload(map[string][]annotation.Raw{"md5-1": {highlight("t1", "1", "one")}})
	p.Version = "0.1.9"

	_, err := a.Sync(p)

	assert.Equal(t, errors.Is(err, ErrPluginVersionMismatch), true, "error mismatch")
	assertNothingStored(t, a.DB)
}

func TestSyncInvalidPayload(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(p *SyncPayload)
	}{
		{"missing device", func(p *SyncPayload) { p.Device.ID = "" }},
		{"missing book md5", func(p *SyncPayload) { p.Books[1].MD5 = "" }},
		{"missing book title", func(p *SyncPayload) { p.Books[0].Title = "" }},
		{"missing stat page", func(p *SyncPayload) { p.Stats[1].Page = nil }},
		{"missing stat duration", func(p *SyncPayload) { p.Stats[0].Duration = nil }},
		{"missing stat start time", func(p *SyncPayload) { p.Stats[0].StartTime = nil }},
		{"stat from another device", func(p *SyncPayload) { p.Stats[0].DeviceID = "device-9" }},
		{"unknown annotation sync mode", func(p *SyncPayload) { p.AnnotationSync = "partial" }},
		{"annotation without datetime", func(p *SyncPayload) {
			p.Annotations["md5-1"] = append(p.Annotations["md5-1"], annotation.Raw{Page: "5"})
		}},
		{"annotation for an unknown book", func(p *SyncPayload) {
			p.Annotations["md5-404"] = []annotation.Raw{highlight("t1", "1", "one")}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := newTestApp(t)

			p := newPayload(map[string][]annotation.Raw{"md5-1": {highlight("t1", "1", "one")}})
			tc.modify(&p)

			_, err := a.Sync(p)

			assert.Equal(t, errors.Is(err, ErrInvalidPayload), true, "error mismatch")
			assertNothingStored(t, a.DB)
		})
	}
}

func TestSyncDeviceFromStats(t *testing.T) {
	a, _ := newTestApp(t)

	p := newPayload(nil)
	p.Device = DevicePayload{}
	p.Stats[0].DeviceID = "device-7"
	p.Stats[1].DeviceID = "device-7"

	res := mustSync(t, &a, p)

	assert.Equal(t, res.DeviceID, "device-7", "device mismatch")
	assert.Equal(t, testutils.MustCount(t, a.DB.Where("id = ?", "device-7"), &database.Device{}, "counting devices"), int64(1), "device should be created")
}

func TestSyncIsAtomicAcrossBooks(t *testing.T) {
	a, _ := newTestApp(t)

	calls := 0
	if err := a.DB.Callback().Create().Before("gorm:create").Register("test:fail_second_annotation_batch", func(db *gorm.DB) {
		if db.Statement.Schema == nil || db.Statement.Schema.Table != "annotations" {
			return
		}

		calls++
		if calls == 2 {
			db.AddError(errors.New("disk I/O error"))
		}
	}); err != nil {
		t.Fatal(errors.Wrap(err, "registering callback"))
	}

	_, err := a.Sync(newPayload(map[string][]annotation.Raw{
		"md5-1": {highlight("t1", "1", "one")},
		"md5-2": {highlight("t2", "2", "two")},
	}))

	if err == nil {
		t.Fatal("expected an error")
	}
	assert.Equal(t, calls, 2, "both books should have been attempted")
	assertNothingStored(t, a.DB)
}
