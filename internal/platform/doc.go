// Package platform defines the closed set of build target platforms and the
// fixed ABI labels each of them supports. It also maps the running host's
// GOOS/GOARCH onto that set.
package platform
