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

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/log"
)

// errorResponse is the body of an error response
type errorResponse struct {
	Error string `json:"error"`
}

// DoError logs the error and responds with the given status code. Server
// errors hide their details from the client.
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	var message string
	if err == nil {
		message = msg
	} else {
		message = errors.Wrap(err, msg).Error()
	}

	fields := log.Fields{
		"statusCode": statusCode,
	}
	if statusCode >= http.StatusInternalServerError {
		log.WithFields(fields).Error(message)
		message = http.StatusText(statusCode)
	} else {
		log.WithFields(fields).Debug(message)
	}

	RespondJSON(w, statusCode, errorResponse{Error: message})
}

// RespondJSON encodes the payload as the JSON body of the response
func RespondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// NotFound responds with 404 to unknown routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	DoError(w, "not found", nil, http.StatusNotFound)
}
