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
	"github.com/shelfsync/shelfsync/pkg/server/database"
)

// PositionKey identifies an annotation within one book on one device
type PositionKey struct {
	Position  Position
	CreatedAt string
}

// Key identifies an annotation across syncs. The creation timestamp is the
// string the device reported, compared verbatim.
type Key struct {
	BookMD5  string
	DeviceID string
	PositionKey
}

// KeyOf returns the identity of a raw annotation uploaded for a book by a device
func KeyOf(bookMD5, deviceID string, r Raw) Key {
	return Key{
		BookMD5:  bookMD5,
		DeviceID: deviceID,
		PositionKey: PositionKey{
			Position:  r.Page,
			CreatedAt: r.Datetime,
		},
	}
}

// KeyOfRecord returns the identity of a stored annotation
func KeyOfRecord(a database.Annotation) Key {
	return Key{
		BookMD5:  a.BookMD5,
		DeviceID: a.DeviceID,
		PositionKey: PositionKey{
			Position:  Position(a.Page),
			CreatedAt: a.Datetime,
		},
	}
}

// KeySet is a set of identities within one (book, device) pair
type KeySet map[PositionKey]struct{}

// NewKeySet returns the set of identities present in the given batch
func NewKeySet(raws []Raw) KeySet {
	s := make(KeySet, len(raws))
	for _, r := range raws {
		s.Add(PositionKey{Position: r.Page, CreatedAt: r.Datetime})
	}

	return s
}

// Add inserts a key
func (s KeySet) Add(k PositionKey) {
	s[k] = struct{}{}
}

// Has reports whether the set contains the key
func (s KeySet) Has(k PositionKey) bool {
	_, ok := s[k]
	return ok
}

// Dedupe collapses annotations sharing an identity into the last one in the
// batch. The first occurrence decides the position in the result.
func Dedupe(raws []Raw) []Raw {
	idx := make(map[PositionKey]int, len(raws))
	ret := make([]Raw, 0, len(raws))

	for _, r := range raws {
		k := PositionKey{Position: r.Page, CreatedAt: r.Datetime}
		if i, ok := idx[k]; ok {
			ret[i] = r
			continue
		}

		idx[k] = len(ret)
		ret = append(ret, r)
	}

	return ret
}
