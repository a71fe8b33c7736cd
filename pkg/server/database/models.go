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
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Book is a document known to at least one device, identified by the md5
// digest the reader computes over its content
type Book struct {
	Model
	MD5            string       `json:"md5" gorm:"column:md5;uniqueIndex;type:text;not null"`
	Title          string       `json:"title"`
	Authors        string       `json:"authors"`
	Series         string       `json:"series"`
	Language       string       `json:"language"`
	ReferencePages *int         `json:"reference_pages"`
	Devices        []BookDevice `json:"devices" gorm:"foreignKey:BookMD5;references:MD5"`
}

// Device is a reader that uploads statistics and annotations
type Device struct {
	ID            string     `json:"id" gorm:"primaryKey;type:text"`
	Model         string     `json:"model"`
	PluginVersion string     `json:"plugin_version"`
	LastSyncAt    *time.Time `json:"last_sync_at"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// BookDevice holds the reading statistics of a book as reported by one device
type BookDevice struct {
	Model
	BookMD5        string `json:"book_md5" gorm:"column:book_md5;uniqueIndex:idx_book_device;type:text;not null"`
	DeviceID       string `json:"device_id" gorm:"uniqueIndex:idx_book_device;type:text;not null"`
	LastOpen       int64  `json:"last_open"`
	Pages          int    `json:"pages"`
	Notes          int    `json:"notes"`
	Highlights     int    `json:"highlights"`
	TotalReadTime  int64  `json:"total_read_time"`
	TotalReadPages int    `json:"total_read_pages"`
}

// PageStat is a single page view recorded by a device
type PageStat struct {
	Model
	DeviceID   string `json:"device_id" gorm:"uniqueIndex:idx_page_stat;type:text;not null"`
	BookMD5    string `json:"book_md5" gorm:"column:book_md5;uniqueIndex:idx_page_stat;type:text;not null"`
	Page       int    `json:"page" gorm:"uniqueIndex:idx_page_stat;not null"`
	StartTime  int64  `json:"start_time" gorm:"uniqueIndex:idx_page_stat;not null"`
	Duration   int64  `json:"duration"`
	TotalPages int    `json:"total_pages"`
}

// Annotation is a highlight, note or bookmark made on a device. The columns
// tagged with idx_annotation_identity form its identity across syncs.
type Annotation struct {
	Model
	BookMD5  string `json:"book_md5" gorm:"column:book_md5;uniqueIndex:idx_annotation_identity;type:text;not null"`
	DeviceID string `json:"device_id" gorm:"uniqueIndex:idx_annotation_identity;type:text;not null"`
	Page     string `json:"page" gorm:"uniqueIndex:idx_annotation_identity;type:text;not null"`
	Datetime string `json:"datetime" gorm:"uniqueIndex:idx_annotation_identity;type:text;not null"`

	AnnotationType string `json:"annotation_type" gorm:"type:text;not null;index"`

	// content, replaced on every sync of the same identity
	Text            string  `json:"text"`
	Note            *string `json:"note"`
	Chapter         *string `json:"chapter"`
	LastPageno      *int    `json:"last_pageno"`
	DatetimeUpdated *string `json:"datetime_updated"`

	// pagination snapshot, written once
	Pageno     *int `json:"pageno"`
	TotalPages *int `json:"total_pages"`

	Drawer *string `json:"drawer"`
	Color  *string `json:"color"`
	Pos0   *string `json:"pos0" gorm:"column:pos0"`
	Pos1   *string `json:"pos1" gorm:"column:pos1"`

	DeletedAt *time.Time `json:"deleted_at"`
}
