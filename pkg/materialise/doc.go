// Package materialise copies VFS templates into the RFS repository where the
// template engine can compile them.
//
// A materialisation checks whether the RFS copy is stale, rewrites the
// include, page and cms directives of the template so they point at RFS
// copies, recursively materialises every referenced template and writes the
// result in the storage encoding of the template.
//
// All top-level materialisations of a Materialiser are serialised by a
// single mutex. Recursion for referenced templates runs under the lock held
// by the top-level call. Each template is visited at most once per
// top-level call, which breaks reference cycles.
package materialise
