// Package rules resolves a plugin module's declared build inputs for one
// target platform: include paths, upstream module names and, for platforms
// with a native SDK, the per-architecture prebuilt libraries, the SDK include
// directory and the plugin manifest property consumed by packaging.
//
// Resolution is a pure computation over the descriptor and the target. The
// only filesystem access is the check that the module root is a directory.
package rules
