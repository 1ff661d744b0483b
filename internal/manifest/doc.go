// Package manifest provides Lua package-manifest parsing for release
// packaging.
//
// A manifest declares the metadata handed to the OS package builder:
// product name, vendor, package relationships, lifecycle scripts. Manifests
// execute in a sandboxed Lua VM with a read-only "target" table injected so
// relationships can vary per platform. A built-in manifest carries the
// influxdb2 defaults so the pipeline runs without one on disk.
package manifest
