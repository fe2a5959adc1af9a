package appfs

import "embed"

// files starting with "_" are only embedded when a pattern names them directly
//go:embed templates/email/*
var FS embed.FS
