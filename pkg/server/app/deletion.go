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
	"github.com/shelfsync/shelfsync/pkg/server/annotation"
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"gorm.io/gorm"
)

// deleteChunkSize bounds the number of ids bound to one UPDATE statement
const deleteChunkSize = 500

// MarkDeletedAnnotations soft-deletes the active annotations of a book on a
// device that are missing from present. present must hold every annotation
// the device currently has for the book, otherwise the ones left out are
// deleted. Annotations already deleted are left untouched. It returns the
// number of annotations deleted.
func (a *App) MarkDeletedAnnotations(tx *gorm.DB, bookMD5, deviceID string, present annotation.KeySet) (int64, error) {
	var ret int64

	err := a.inTx(tx, func(tx *gorm.DB) error {
		var active []database.Annotation
		if err := tx.Select("id", "page", "datetime").
			Where("book_md5 = ? AND device_id = ? AND deleted_at IS NULL", bookMD5, deviceID).
			Find(&active).Error; err != nil {
			return errors.Wrap(err, "finding active annotations")
		}

		var missing []int
		for _, r := range active {
			k := annotation.PositionKey{Position: annotation.Position(r.Page), CreatedAt: r.Datetime}
			if !present.Has(k) {
				missing = append(missing, r.ID)
			}
		}

		now := a.Clock.Now()
		for start := 0; start < len(missing); start += deleteChunkSize {
			end := min(start+deleteChunkSize, len(missing))

			res := tx.Model(&database.Annotation{}).
				Where("id IN ? AND deleted_at IS NULL", missing[start:end]).
				Updates(map[string]interface{}{
					"deleted_at": now,
					"updated_at": now,
				})
			if err := res.Error; err != nil {
				return errors.Wrap(err, "marking annotations deleted")
			}

			ret += res.RowsAffected
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return ret, nil
}
