// Package preflight provides readiness checks for the filesystem paths that
// voxcache depends on.
//
// The CLI "voxcache check" command runs RunAll and prints one line per
// result. Checks never modify the cache; the scan lock probe takes and
// immediately releases a shared lock.
package preflight
