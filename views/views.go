// Package views embeds the HTML templates rendered by the browser.
package views

import "embed"

// FS holds the layouts, pages and partials directories.
//
//go:embed layouts pages partials
var FS embed.FS
