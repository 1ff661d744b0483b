// Package archive stages release files and produces the platform archive:
// tar+gzip everywhere except Windows targets, which get zip. Archives are
// written from an explicit, sorted file list so they never contain a root
// directory entry or empty directories.
package archive
