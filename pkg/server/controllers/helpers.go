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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/app"
	"github.com/shelfsync/shelfsync/pkg/server/helpers"
	mw "github.com/shelfsync/shelfsync/pkg/server/middleware"
)

// maxPayloadSize bounds the size of a request body. A full snapshot of a
// large library stays well within it.
const maxPayloadSize = 32 << 20

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

type queryParamError struct {
	key     string
	value   string
	message string
}

func (e *queryParamError) Error() string {
	return fmt.Sprintf("invalid query param %s=%s. %s", e.key, e.value, e.message)
}

// parseJSON decodes the request body into v
func parseJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadSize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(app.ErrInvalidPayload, err.Error())
	}

	return nil
}

// parseQuery decodes the query string into v
func parseQuery(r *http.Request, v interface{}) error {
	if err := queryDecoder.Decode(v, r.URL.Query()); err != nil {
		var multi schema.MultiError
		if errors.As(err, &multi) {
			for key, e := range multi {
				return &queryParamError{key: key, value: r.URL.Query().Get(key), message: e.Error()}
			}
		}

		return &queryParamError{message: err.Error()}
	}

	return nil
}

// getID reads a row id from the route variables. Malformed ids cannot
// name a row, so they are reported as not found.
func getID(r *http.Request, name string) (int, error) {
	id, err := helpers.ParseID(mux.Vars(r)[name])
	if err != nil {
		return 0, errors.Wrap(app.ErrNotFound, err.Error())
	}

	return id, nil
}

// handleJSONError responds with the status code matching the error
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	var qpe *queryParamError

	var statusCode int
	switch {
	case errors.Is(err, app.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, app.ErrInvalidPayload),
		errors.Is(err, app.ErrPluginVersionMismatch),
		errors.Is(err, app.ErrInvalidReferencePages),
		errors.As(err, &qpe):
		statusCode = http.StatusBadRequest
	default:
		statusCode = http.StatusInternalServerError
	}

	mw.DoError(w, msg, err, statusCode)
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	mw.RespondJSON(w, statusCode, payload)
}
