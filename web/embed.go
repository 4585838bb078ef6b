// Package web embeds the HTML templates and static assets served by the site.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// TemplateFS holds templates/layouts, templates/pages and templates/fragments.
var TemplateFS fs.FS = templateFS

// StaticFS provides access to the embedded static asset files.
var StaticFS fs.FS = staticFS
