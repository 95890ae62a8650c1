// Package version reports the socialauth build.
//
// Version and Commit are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/socialauth/version.Version=v0.3.0" ./cmd/socialauth
//
// Unstamped builds fall back to the module's VCS settings.
package version
