// Package utils holds small helpers shared by handlers and middleware.
package utils

import "fmt"

const sizeUnits = "KMGTPE"

// FormatBytes renders a byte count with binary units, e.g. "1.5 GB".
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), sizeUnits[exp])
}

// FormatFileSize renders an object size. Backends report -1 when the size is
// not known.
func FormatFileSize(size int64) string {
	if size < 0 {
		return "unknown"
	}
	return FormatBytes(uint64(size))
}
