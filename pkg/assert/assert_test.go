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

package assert

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
)

func TestEqualTypedNil(t *testing.T) {
	var err error
	var ptr *int

	Equal(t, err, nil, "nil error")
	Equal(t, ptr, nil, "nil pointer")
	Equalf(t, errors.Cause(err), nil, "nil cause")
}

func TestDeepEqual(t *testing.T) {
	DeepEqual(t, []string{"a", "b"}, []string{"a", "b"}, "slices")
	DeepEqual(t, map[string]int{"a": 1}, map[string]int{"a": 1}, "maps")
}

func TestStatusCodeEquals(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusTeapot)

	StatusCodeEquals(t, rec.Result(), http.StatusTeapot, "")
}
