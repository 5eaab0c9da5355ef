// Package main hosts the voxcache CLI entrypoint and command graph.
//
// Every query command loads the annotation asset, scans the segment cache and
// builds a fresh index before answering; nothing is persisted between
// invocations. Positions printed by one invocation are tagged with the build
// id of that invocation's index and are stable across invocations only while
// the cache directory is unchanged.
//
// Logs go to stderr (and the configured log directory); stdout carries only
// command output, which --json switches to machine-readable form.
package main
