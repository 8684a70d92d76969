package weaver

import _ "embed"

// Version is the release of the library, embedded from the VERSION file.
//
//go:embed VERSION
var Version string
