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
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBookDevice merges the statistics a device reported for a book.
// Only the fields present in the payload are written over, so a sync that
// carries no reading time keeps the one recorded before.
func upsertBookDevice(tx *gorm.DB, deviceID string, b BookPayload) error {
	row := database.BookDevice{
		BookMD5:  b.MD5,
		DeviceID: deviceID,
	}

	var columns []string
	if b.LastOpen != nil {
		row.LastOpen = *b.LastOpen
		columns = append(columns, "last_open")
	}
	if b.Pages != nil {
		row.Pages = *b.Pages
		columns = append(columns, "pages")
	}
	if b.Notes != nil {
		row.Notes = *b.Notes
		columns = append(columns, "notes")
	}
	if b.Highlights != nil {
		row.Highlights = *b.Highlights
		columns = append(columns, "highlights")
	}
	if b.TotalReadTime != nil {
		row.TotalReadTime = *b.TotalReadTime
		columns = append(columns, "total_read_time")
	}
	if b.TotalReadPages != nil {
		row.TotalReadPages = *b.TotalReadPages
		columns = append(columns, "total_read_pages")
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "book_md5"}, {Name: "device_id"}},
	}
	if len(columns) == 0 {
		onConflict.DoNothing = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(append(columns, "updated_at"))
	}

	if err := tx.Clauses(onConflict).Create(&row).Error; err != nil {
		return errors.Wrapf(err, "upserting statistics of book %s", b.MD5)
	}

	return nil
}

type pageStatKey struct {
	bookMD5   string
	page      int
	startTime int64
}

// upsertPageStats records page views. A view already known by device, book,
// page and start time gets its duration and page count replaced.
func upsertPageStats(tx *gorm.DB, deviceID string, stats []StatPayload) (int, error) {
	if len(stats) == 0 {
		return 0, nil
	}

	idx := map[pageStatKey]int{}
	rows := make([]database.PageStat, 0, len(stats))
	for _, s := range stats {
		row := database.PageStat{
			DeviceID:  deviceID,
			BookMD5:   s.BookMD5,
			Page:      *s.Page,
			StartTime: *s.StartTime,
			Duration:  *s.Duration,
		}
		if s.TotalPages != nil {
			row.TotalPages = *s.TotalPages
		}

		k := pageStatKey{bookMD5: row.BookMD5, page: row.Page, startTime: row.StartTime}
		if i, ok := idx[k]; ok {
			rows[i] = row
			continue
		}
		idx[k] = len(rows)
		rows = append(rows, row)
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "device_id"},
			{Name: "book_md5"},
			{Name: "page"},
			{Name: "start_time"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"duration", "total_pages", "updated_at"}),
	}).CreateInBatches(&rows, upsertBatchSize).Error; err != nil {
		return 0, errors.Wrap(err, "upserting page stats")
	}

	return len(rows), nil
}
