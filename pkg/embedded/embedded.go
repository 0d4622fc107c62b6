// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains the frontend bundle embedded in the Go binary.
// The dashboard build output is copied into pkg/embedded/frontend/dist
// during the release build and served directly via HTTP.
//
//go:embed frontend/dist
var Files embed.FS
