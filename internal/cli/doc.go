// Package cli defines the Cobra command tree for the modrules CLI. Each file
// in this package builds one top-level command (resolve, validate, platforms,
// config, version). Commands delegate to internal packages for the actual
// work and only handle flag parsing, output formatting and logging setup.
package cli
