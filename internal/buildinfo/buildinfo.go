// Package buildinfo exposes the process identity fed into
// GlobalState.Version/BuildTimestamp (spec §3): the running binary's version
// and build time, injected via linker flags at release build time and
// falling back to sane defaults for `go run`/local builds. Grounded on the
// teacher's internal/identity package (GetHostname/GetVersion shape), traded
// for the ldflags convention used across the rest of the retrieval pack in
// place of the teacher's metadata.json file read, since SnapDog ships as a
// single static binary with no adjacent config directory to stage that file
// in.
package buildinfo

import "os"

// version and buildTimestamp are overridden at build time with:
//
//	go build -ldflags "-X .../internal/buildinfo.version=1.2.3 -X .../internal/buildinfo.buildTimestamp=2026-07-30T12:00:00Z"
var (
	version        = "dev"
	buildTimestamp = "unknown"
)

// Version returns the injected semantic version, or "dev" outside a release build.
func Version() string { return version }

// BuildTimestamp returns the injected RFC3339 build time, or "unknown" outside a release build.
func BuildTimestamp() string { return buildTimestamp }

// Hostname returns the OS hostname, falling back to "snapdog" if unavailable.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "snapdog"
	}
	return h
}
