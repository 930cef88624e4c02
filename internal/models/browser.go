// Package models contains data structures used across handlers
package models

import "time"

// BucketInfo represents a bucket row on the buckets page
type BucketInfo struct {
	Name          string
	CreationDate  time.Time
	HasUsage      bool
	FormattedSize string
}

// ObjectInfo represents an object with display metadata
type ObjectInfo struct {
	Key           string
	Size          int64
	FormattedSize string
	LastModified  time.Time
	ContentType   string
	DownloadURL   string
}
