// Package web holds the console's HTML templates and static assets.
package web

import "embed"

// Templates holds layouts, partials and pages parsed by the view engine.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the assets served under /static.
//
//go:embed static/**/*
var Static embed.FS
