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

package database

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/shelfsync/shelfsync/pkg/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// reversedFS returns directory entries in reverse order
type reversedFS struct {
	fstest.MapFS
}

func (u reversedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := u.MapFS.ReadDir(name)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func openMemory(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	return db
}

func TestParseMigrationFilename(t *testing.T) {
	testCases := []struct {
		filename string
		version  int
		wantErr  bool
	}{
		{"001-init.sql", 1, false},
		{"012-add-feature-v2.sql", 12, false},
		{"1-init.sql", 0, true},
		{"001init.sql", 0, true},
		{"001-.sql", 0, true},
		{"001-init.txt", 0, true},
		{"0a1-init.sql", 0, true},
		{"001_init.sql", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			v, err := parseMigrationFilename(tc.filename)

			assert.Equal(t, err != nil, tc.wantErr, "error mismatch")
			assert.Equal(t, v, tc.version, "version mismatch")
		})
	}
}

func TestMigrate_ordering(t *testing.T) {
	db := openMemory(t)
	if err := db.Exec("CREATE TABLE log (value INTEGER)").Error; err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	migrationsFs := reversedFS{
		MapFS: fstest.MapFS{
			"010-tenth.sql":  &fstest.MapFile{Data: []byte("INSERT INTO log (value) VALUES (3);")},
			"001-first.sql":  &fstest.MapFile{Data: []byte("INSERT INTO log (value) VALUES (1);")},
			"002-second.sql": &fstest.MapFile{Data: []byte("INSERT INTO log (value) VALUES (2);")},
		},
	}

	if err := migrate(db, migrationsFs); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	var values []int
	if err := db.Raw("SELECT value FROM log ORDER BY rowid").Scan(&values).Error; err != nil {
		t.Fatalf("failed to query log: %v", err)
	}

	assert.DeepEqual(t, values, []int{1, 2, 3}, "migrations should run in version order")
}

func TestMigrate_idempotency(t *testing.T) {
	db := openMemory(t)
	if err := db.Exec("CREATE TABLE counter (value INTEGER)").Error; err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	migrationsFs := fstest.MapFS{
		"001-insert-data.sql": &fstest.MapFile{Data: []byte("INSERT INTO counter (value) VALUES (100);")},
	}

	for i := 0; i < 2; i++ {
		if err := migrate(db, migrationsFs); err != nil {
			t.Fatalf("migration run %d failed: %v", i, err)
		}
	}

	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM counter").Scan(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	assert.Equal(t, count, int64(1), "migration should run once")
}

func TestMigrate_failureIsNotRecorded(t *testing.T) {
	db := openMemory(t)

	migrationsFs := fstest.MapFS{
		"001-bad-sql.sql": &fstest.MapFile{Data: []byte("INVALID SQL SYNTAX HERE;")},
	}

	if err := migrate(db, migrationsFs); err == nil {
		t.Fatal("expected error for invalid SQL, got nil")
	}

	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM schema_migrations").Scan(&count).Error; err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	assert.Equal(t, count, int64(0), "failed migration should not be recorded")
}

func TestMigrate_rejectsBadInput(t *testing.T) {
	testCases := []struct {
		name string
		fsys fs.FS
	}{
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"001-first.sql":  &fstest.MapFile{Data: []byte("SELECT 1;")},
				"001-second.sql": &fstest.MapFile{Data: []byte("SELECT 2;")},
			},
		},
		{
			name: "empty file",
			fsys: fstest.MapFS{
				"001-empty.sql": &fstest.MapFile{Data: []byte("   \n\t  ")},
			},
		},
		{
			name: "invalid filename",
			fsys: fstest.MapFS{
				"init.sql": &fstest.MapFile{Data: []byte("SELECT 1;")},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := migrate(openMemory(t), tc.fsys); err == nil {
				t.Fatal("expected an error, got nil")
			}
		})
	}
}

func TestMigrate_embedded(t *testing.T) {
	db := openMemory(t)
	InitSchema(db)

	if err := Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	assert.Equal(t, db.Migrator().HasIndex("annotations", "idx_annotations_active"), true, "missing partial index")
	assert.Equal(t, db.Migrator().HasIndex("page_stats", "idx_page_stats_book_start"), true, "missing page stat index")
}
