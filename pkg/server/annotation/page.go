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

package annotation

import (
	"math"
)

// DisplayPage maps the page an annotation was made on to the current
// pagination of its book. Reflow is assumed to spread content evenly, so the
// page is scaled by the ratio of page counts and rounded. The stored page is
// returned as is when either count is unknown or the counts are equal.
func DisplayPage(pageno, totalPages, currentTotal *int) *int {
	if pageno == nil {
		return nil
	}
	if totalPages == nil || currentTotal == nil || *totalPages == 0 || *totalPages == *currentTotal {
		p := *pageno
		return &p
	}

	p := int(math.Round(float64(*pageno) * float64(*currentTotal) / float64(*totalPages)))
	return &p
}
