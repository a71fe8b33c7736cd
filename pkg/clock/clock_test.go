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

package clock

import (
	"testing"
	"time"

	"github.com/shelfsync/shelfsync/pkg/assert"
)

func TestMock(t *testing.T) {
	c := NewMock()
	start := c.Now()

	c.Advance(90 * time.Second)
	assert.Equal(t, c.Now().Sub(start), 90*time.Second, "advance mismatch")

	ts := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	c.SetNow(ts)
	assert.Equal(t, c.Now().Equal(ts), true, "set now mismatch")
}

func TestNew(t *testing.T) {
	now := New().Now()
	assert.Equal(t, now.Location(), time.UTC, "real clock should be in UTC")
}
