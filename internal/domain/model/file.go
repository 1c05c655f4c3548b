package model

import (
	"io"
	"time"
)

// FileCategory tells customer material apart from delivered work.
type FileCategory string

const (
	FileCategoryResume       FileCategory = "resume"
	FileCategoryFinalProduct FileCategory = "final_product"
)

// Uploader identifies which side of the order supplied a file.
type Uploader string

const (
	UploaderCustomer Uploader = "customer"
	UploaderStaff    Uploader = "admin"
)

// OrderFile is metadata of a blob attached to an order.
type OrderFile struct {
	ID           int64
	OrderID      int64
	StoredName   string
	OriginalName string
	Category     FileCategory
	ContentType  string
	Size         int64
	UploadedBy   Uploader
	UploadedAt   time.Time
}

// Upload carries an incoming file before it is stored.
type Upload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Category     FileCategory
}

// Attachment is an upload together with its content.
type Attachment struct {
	Upload
	Body io.Reader
}
