// Package testutil provides utilities for testing jsploader components.
//
// Key components:
//   - TestEnvironment: a VFS tree, an RFS and a web application folder,
//     isolated from the user's XDG directories
//   - FileTree: declarative VFS content
//   - Loader: a loader initialised against the environment with the
//     passthrough engine
//
// Usage guidelines:
//   - Prefer EnvMemoryOnly; use EnvIsolated when a command reads its
//     configuration or the VFS from disk
//   - All test data should be defined inline, not in external files
package testutil
