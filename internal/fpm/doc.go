// Package fpm wraps the external fpm packaging tool behind an
// interface-based client and owns the Linux package build: staging the
// installation filesystem tree, one fpm invocation per output format, and
// the rename from fpm's default output filenames to the canonical artifact
// naming scheme.
package fpm
