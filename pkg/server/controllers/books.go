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

package controllers

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/annotation"
	"github.com/shelfsync/shelfsync/pkg/server/app"
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"github.com/shelfsync/shelfsync/pkg/server/presenters"
)

// NewBooks creates a new Books controller
func NewBooks(app *app.App) *Books {
	return &Books{
		app: app,
	}
}

// Books is a books controller
type Books struct {
	app *app.App
}

func (b *Books) getBook(r *http.Request) (database.Book, error) {
	id, err := getID(r, "bookID")
	if err != nil {
		return database.Book{}, err
	}

	return b.app.GetBook(id)
}

// Index handles GET /api/books
func (b *Books) Index(w http.ResponseWriter, r *http.Request) {
	books, err := b.app.GetBooks()
	if err != nil {
		handleJSONError(w, err, "getting books")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentBooks(books))
}

func (b *Books) detail(book database.Book) (presenters.BookDetail, error) {
	currentPages, err := b.app.CurrentTotalPages(book)
	if err != nil {
		return presenters.BookDetail{}, err
	}
	counts, err := b.app.GetCountsByType(book.MD5)
	if err != nil {
		return presenters.BookDetail{}, err
	}
	deleted, err := b.app.GetDeletedCount(book.MD5)
	if err != nil {
		return presenters.BookDetail{}, err
	}

	return presenters.PresentBookDetail(book, currentPages, counts, deleted), nil
}

// Show handles GET /api/books/{bookID}
func (b *Books) Show(w http.ResponseWriter, r *http.Request) {
	book, err := b.getBook(r)
	if err != nil {
		handleJSONError(w, err, "getting book")
		return
	}

	detail, err := b.detail(book)
	if err != nil {
		handleJSONError(w, err, "summarizing book")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

type annotationsQuery struct {
	DeviceID       string `schema:"device_id"`
	Type           string `schema:"type"`
	IncludeDeleted bool   `schema:"include_deleted"`
}

func parseAnnotationsQuery(r *http.Request) (app.AnnotationFilter, error) {
	var q annotationsQuery
	if err := parseQuery(r, &q); err != nil {
		return app.AnnotationFilter{}, err
	}

	if q.Type != "" && !annotation.IsType(q.Type) {
		return app.AnnotationFilter{}, &queryParamError{
			key:     "type",
			value:   q.Type,
			message: "must be one of highlight, note, bookmark",
		}
	}

	return app.AnnotationFilter{
		DeviceID:       q.DeviceID,
		Type:           q.Type,
		IncludeDeleted: q.IncludeDeleted,
	}, nil
}

// Annotations handles GET /api/books/{bookID}/annotations
func (b *Books) Annotations(w http.ResponseWriter, r *http.Request) {
	book, err := b.getBook(r)
	if err != nil {
		handleJSONError(w, err, "getting book")
		return
	}

	filter, err := parseAnnotationsQuery(r)
	if err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	annotations, err := b.app.GetAnnotations(book.MD5, filter)
	if err != nil {
		handleJSONError(w, err, "getting annotations")
		return
	}

	currentPages, err := b.app.CurrentTotalPages(book)
	if err != nil {
		handleJSONError(w, err, "getting current page count")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentAnnotations(annotations, currentPages))
}

type referencePagesPayload struct {
	ReferencePages *int `json:"reference_pages"`
}

// UpdateReferencePages handles PUT /api/books/{bookID}/reference-pages
func (b *Books) UpdateReferencePages(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "bookID")
	if err != nil {
		handleJSONError(w, err, "getting book")
		return
	}

	var payload referencePagesPayload
	if err := parseJSON(w, r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	book, err := b.app.SetReferencePages(id, payload.ReferencePages)
	if err != nil {
		handleJSONError(w, errors.Wrap(err, "setting reference pages"), "updating book")
		return
	}

	detail, err := b.detail(book)
	if err != nil {
		handleJSONError(w, err, "summarizing book")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}
