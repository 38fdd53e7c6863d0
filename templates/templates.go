// Package templates embeds the notification email templates.
package templates

import "embed"

// Emails holds emails/<name>[_<lang>].html and .txt
//
//go:embed emails/*.html emails/*.txt
var Emails embed.FS
