package main

import (
	"runtime/debug"

	"golang.org/x/mod/semver"
)

// version is reported when the binary carries no usable module version,
// e.g. under go run or go test.
const version = "0.1.0"

// versionString returns the main module version stamped at build time.
func versionString() string {
	var built string
	if info, ok := debug.ReadBuildInfo(); ok {
		built = info.Main.Version
	}
	return resolveVersion(built)
}

// resolveVersion canonicalises built when it is a valid semantic version,
// including pseudo-versions, and falls back to the version constant for
// "(devel)", empty or malformed input.
func resolveVersion(built string) string {
	if semver.IsValid(built) {
		return semver.Canonical(built)
	}
	if v := semver.Canonical("v" + version); v != "" {
		return v
	}
	return "devel"
}
