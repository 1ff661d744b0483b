// Package release holds the run-wide build context, release version
// validation, and the sequential fail-fast step pipeline that drives a
// packaging run.
package release
