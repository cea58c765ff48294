// Package version reports build information of the enumerate command.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/apokryfos/Enumerable/version.Version=1.0.0" ./cmd/enumerate
//
// Values left unset fall back to the VCS stamps embedded by the Go toolchain.
package version
