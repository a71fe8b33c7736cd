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
	"time"

	"github.com/shelfsync/shelfsync/pkg/server/database"
)

// BookDevice is the reading statistics of a book on one device
type BookDevice struct {
	DeviceID       string `json:"device_id"`
	LastOpen       int64  `json:"last_open"`
	Pages          int    `json:"pages"`
	Notes          int    `json:"notes"`
	Highlights     int    `json:"highlights"`
	TotalReadTime  int64  `json:"total_read_time"`
	TotalReadPages int    `json:"total_read_pages"`
}

// Book is a result of PresentBooks
type Book struct {
	ID             int          `json:"id"`
	MD5            string       `json:"md5"`
	Title          string       `json:"title"`
	Authors        string       `json:"authors"`
	Series         string       `json:"series"`
	Language       string       `json:"language"`
	ReferencePages *int         `json:"reference_pages"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Devices        []BookDevice `json:"devices"`
}

// BookDetail is a book with the summary of its annotations
type BookDetail struct {
	Book
	CurrentPages *int             `json:"current_pages"`
	Counts       map[string]int64 `json:"annotation_counts"`
	DeletedCount int64            `json:"deleted_count"`
}

// PresentBook presents a book
func PresentBook(book database.Book) Book {
	ret := Book{
		ID:             book.ID,
		MD5:            book.MD5,
		Title:          book.Title,
		Authors:        book.Authors,
		Series:         book.Series,
		Language:       book.Language,
		ReferencePages: book.ReferencePages,
		CreatedAt:      FormatTS(book.CreatedAt),
		UpdatedAt:      FormatTS(book.UpdatedAt),
		Devices:        []BookDevice{},
	}

	for _, d := range book.Devices {
		ret.Devices = append(ret.Devices, BookDevice{
			DeviceID:       d.DeviceID,
			LastOpen:       d.LastOpen,
			Pages:          d.Pages,
			Notes:          d.Notes,
			Highlights:     d.Highlights,
			TotalReadTime:  d.TotalReadTime,
			TotalReadPages: d.TotalReadPages,
		})
	}

	return ret
}

// PresentBooks presents books
func PresentBooks(books []database.Book) []Book {
	ret := []Book{}

	for _, book := range books {
		p := PresentBook(book)
		ret = append(ret, p)
	}

	return ret
}

// PresentBookDetail presents a book along with its annotation counts
func PresentBookDetail(book database.Book, currentPages *int, counts map[string]int64, deleted int64) BookDetail {
	return BookDetail{
		Book:         PresentBook(book),
		CurrentPages: currentPages,
		Counts:       counts,
		DeletedCount: deleted,
	}
}
