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

// upsertBooks inserts the books not yet known. Known books are left as they are.
func upsertBooks(tx *gorm.DB, books []BookPayload) (int64, error) {
	if len(books) == 0 {
		return 0, nil
	}

	seen := map[string]bool{}
	rows := make([]database.Book, 0, len(books))
	for _, b := range books {
		if seen[b.MD5] {
			continue
		}
		seen[b.MD5] = true

		rows = append(rows, database.Book{
			MD5:      b.MD5,
			Title:    b.Title,
			Authors:  b.Authors,
			Series:   b.Series,
			Language: b.Language,
		})
	}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "md5"}},
		DoNothing: true,
	}).CreateInBatches(&rows, upsertBatchSize)
	if err := res.Error; err != nil {
		return 0, errors.Wrap(err, "inserting books")
	}

	return res.RowsAffected, nil
}

func bookExists(tx *gorm.DB, md5 string) (bool, error) {
	var count int64
	if err := tx.Model(&database.Book{}).Where("md5 = ?", md5).Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "looking up book %s", md5)
	}

	return count > 0, nil
}

// GetBooks returns all books with the statistics of every device
func (a *App) GetBooks() ([]database.Book, error) {
	var ret []database.Book

	if err := a.DB.Preload("Devices").Order("title ASC, id ASC").Find(&ret).Error; err != nil {
		return nil, errors.Wrap(err, "finding books")
	}

	return ret, nil
}

// GetBook returns the book with the given id
func (a *App) GetBook(id int) (database.Book, error) {
	var ret database.Book

	err := a.DB.Preload("Devices").Where("id = ?", id).First(&ret).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ret, ErrNotFound
	} else if err != nil {
		return ret, errors.Wrap(err, "finding book")
	}

	return ret, nil
}

// GetBookByMD5 returns the book with the given md5 digest
func (a *App) GetBookByMD5(md5 string) (database.Book, error) {
	var ret database.Book

	err := a.DB.Where("md5 = ?", md5).First(&ret).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ret, ErrNotFound
	} else if err != nil {
		return ret, errors.Wrap(err, "finding book")
	}

	return ret, nil
}

// SetReferencePages overrides the current page count of a book. A nil value
// clears the override.
func (a *App) SetReferencePages(id int, pages *int) (database.Book, error) {
	if pages != nil && *pages <= 0 {
		return database.Book{}, ErrInvalidReferencePages
	}

	book, err := a.GetBook(id)
	if err != nil {
		return book, err
	}

	if err := a.DB.Model(&book).Update("reference_pages", pages).Error; err != nil {
		return book, errors.Wrap(err, "updating reference pages")
	}
	book.ReferencePages = pages

	return book, nil
}

// CurrentTotalPages returns the best known page count of a book in its
// current pagination: the override if one is set, otherwise the count from
// the device that opened the book last. It returns nil when neither is known.
func (a *App) CurrentTotalPages(book database.Book) (*int, error) {
	if book.ReferencePages != nil {
		p := *book.ReferencePages
		return &p, nil
	}

	var bd database.BookDevice
	err := a.DB.Where("book_md5 = ? AND pages > 0", book.MD5).
		Order("last_open DESC, id DESC").
		First(&bd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "finding latest page count")
	}

	return &bd.Pages, nil
}
