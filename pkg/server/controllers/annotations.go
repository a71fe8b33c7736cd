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
	"github.com/shelfsync/shelfsync/pkg/server/app"
	"github.com/shelfsync/shelfsync/pkg/server/presenters"
)

// NewAnnotations creates a new Annotations controller
func NewAnnotations(app *app.App) *Annotations {
	return &Annotations{
		app: app,
	}
}

// Annotations is an annotations controller
type Annotations struct {
	app *app.App
}

// Restore handles PATCH /api/annotations/{annotationID}/restore
func (a *Annotations) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "annotationID")
	if err != nil {
		handleJSONError(w, err, "getting annotation")
		return
	}

	record, err := a.app.RestoreAnnotation(id)
	if err != nil {
		handleJSONError(w, err, "restoring annotation")
		return
	}

	var currentPages *int
	book, err := a.app.GetBookByMD5(record.BookMD5)
	if err == nil {
		currentPages, err = a.app.CurrentTotalPages(book)
	}
	if err != nil && !errors.Is(err, app.ErrNotFound) {
		handleJSONError(w, err, "getting current page count")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentAnnotation(record, currentPages))
}

// Delete handles DELETE /api/annotations/{annotationID}
func (a *Annotations) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getID(r, "annotationID")
	if err != nil {
		handleJSONError(w, err, "getting annotation")
		return
	}

	if err := a.app.DeleteAnnotation(id); err != nil {
		handleJSONError(w, err, "deleting annotation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
