package version

import (
	"runtime/debug"
)

// Version will be set at build time using -ldflags
var Version = "source"
var BuiltFromSource = false

func init() {
	if Version == "source" {
		BuiltFromSource = true
		readVersionFromBuildInfo()
	}
}

func readVersionFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
	}
}
