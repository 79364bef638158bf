// Package ui embeds the compiled browser client bundle.
//
// The client is built separately (web/) and its dist output is committed
// here so `go install` produces a single self-contained binary.
package ui

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var dist embed.FS

// Dist returns the bundle root as a filesystem.
func Dist() fs.FS {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
