package main

import "embed"

// configFS holds the demo settings, manifest and frame images
//
//go:embed configs
var configFS embed.FS
