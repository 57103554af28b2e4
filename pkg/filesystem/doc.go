// Package filesystem provides access to the real filesystem (RFS) where
// materialised templates are stored.
//
// The FS interface is implemented on top of afero, so the same code runs
// against the operating system filesystem in production and against an
// in-memory filesystem in tests.
package filesystem
