// Package appfs embeds the static files the apps ship with: SQL migrations, email templates and other assets.
package appfs

import "embed"

//go:embed migrations assets
var FS embed.FS
