package automata

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release version of the toolkit.
var Version = strings.TrimSpace(version)
