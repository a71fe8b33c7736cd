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

package app

import (
	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/server/annotation"
	"github.com/shelfsync/shelfsync/pkg/server/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertBatchSize bounds the number of rows in one INSERT statement
const upsertBatchSize = 100

// identityColumns identify an annotation across syncs
var identityColumns = []clause.Column{
	{Name: "book_md5"},
	{Name: "device_id"},
	{Name: "page"},
	{Name: "datetime"},
}

// contentColumns are replaced when a known annotation is uploaded again.
// The pagination snapshot and styling keep the values of the first upload.
var contentColumns = []string{
	"text",
	"note",
	"chapter",
	"last_pageno",
	"datetime_updated",
	"annotation_type",
	"updated_at",
}

// UpsertAnnotations inserts the annotations a device uploaded for a book, or
// revises the content of those already known. It runs in tx if given, and in
// its own transaction otherwise. It returns the number of distinct
// annotations written.
func (a *App) UpsertAnnotations(tx *gorm.DB, bookMD5, deviceID string, raws []annotation.Raw) (int, error) {
	if len(raws) == 0 {
		return 0, nil
	}

	// one statement must not touch the same row twice
	raws = annotation.Dedupe(raws)

	rows := make([]database.Annotation, 0, len(raws))
	for _, r := range raws {
		rows = append(rows, annotation.Adapt(bookMD5, deviceID, r))
	}

	err := a.inTx(tx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   identityColumns,
			DoUpdates: clause.AssignmentColumns(contentColumns),
		}).CreateInBatches(&rows, upsertBatchSize).Error; err != nil {
			return errors.Wrapf(err, "upserting annotations of book %s", bookMD5)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(rows), nil
}

// AnnotationFilter narrows down the annotations of a book
type AnnotationFilter struct {
	DeviceID       string
	Type           string
	IncludeDeleted bool
}

// GetAnnotations returns the annotations of a book, oldest first
func (a *App) GetAnnotations(bookMD5 string, f AnnotationFilter) ([]database.Annotation, error) {
	conn := a.DB.Where("book_md5 = ?", bookMD5)

	if f.DeviceID != "" {
		conn = conn.Where("device_id = ?", f.DeviceID)
	}
	if f.Type != "" {
		conn = conn.Where("annotation_type = ?", f.Type)
	}
	if !f.IncludeDeleted {
		conn = conn.Where("deleted_at IS NULL")
	}

	var ret []database.Annotation
	if err := conn.Order("datetime ASC, id ASC").Find(&ret).Error; err != nil {
		return nil, errors.Wrap(err, "finding annotations")
	}

	return ret, nil
}

// GetAnnotation returns the annotation with the given id
func (a *App) GetAnnotation(id int) (database.Annotation, error) {
	var ret database.Annotation

	err := a.DB.Where("id = ?", id).First(&ret).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ret, ErrNotFound
	} else if err != nil {
		return ret, errors.Wrap(err, "finding annotation")
	}

	return ret, nil
}

// GetCountsByType counts the active annotations of a book per type. Every
// type is present in the result.
func (a *App) GetCountsByType(bookMD5 string) (map[string]int64, error) {
	var rows []struct {
		AnnotationType string
		Count          int64
	}

	if err := a.DB.Model(&database.Annotation{}).
		Select("annotation_type, COUNT(*) AS count").
		Where("book_md5 = ? AND deleted_at IS NULL", bookMD5).
		Group("annotation_type").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "counting annotations by type")
	}

	ret := make(map[string]int64, len(annotation.Types))
	for _, t := range annotation.Types {
		ret[t] = 0
	}
	for _, r := range rows {
		ret[r.AnnotationType] = r.Count
	}

	return ret, nil
}

// GetDeletedCount counts the soft-deleted annotations of a book
func (a *App) GetDeletedCount(bookMD5 string) (int64, error) {
	var ret int64

	if err := a.DB.Model(&database.Annotation{}).
		Where("book_md5 = ? AND deleted_at IS NOT NULL", bookMD5).
		Count(&ret).Error; err != nil {
		return 0, errors.Wrap(err, "counting deleted annotations")
	}

	return ret, nil
}

// RestoreAnnotation makes a soft-deleted annotation active again
func (a *App) RestoreAnnotation(id int) (database.Annotation, error) {
	ret, err := a.GetAnnotation(id)
	if err != nil {
		return ret, err
	}

	if ret.DeletedAt == nil {
		return ret, nil
	}

	if err := a.DB.Model(&ret).Update("deleted_at", nil).Error; err != nil {
		return ret, errors.Wrap(err, "restoring annotation")
	}
	ret.DeletedAt = nil

	return ret, nil
}

// DeleteAnnotation permanently removes an annotation
func (a *App) DeleteAnnotation(id int) error {
	res := a.DB.Where("id = ?", id).Delete(&database.Annotation{})
	if err := res.Error; err != nil {
		return errors.Wrap(err, "deleting annotation")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
