// Package version reports the codewalk build version.
package version

import "runtime/debug"

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/codewalk/pkg/version.Version=v0.2.0"
var Version = "v0.1.0-dev"

// String returns the version, preferring the module version recorded by
// `go install` when the default was not overridden.
func String() string {
	if Version != "v0.1.0-dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
