// Package platform provides target platform validation and host platform
// detection for release packaging.
//
// A Target is the platform/architecture pair a pipeline run packages for
// (supplied by the caller); Info describes the machine the pipeline runs on
// (detected, used for diagnostics). The package also owns the architecture
// name translations that differ between the build system and the Linux
// package formats.
package platform

import "context"

// Supported operating system identifiers (build-system spelling).
const (
	OSLinux   = "linux"
	OSDarwin  = "darwin"
	OSWindows = "windows"
)

// Supported architecture identifiers (build-system spelling).
const (
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

// Target is the platform a pipeline run packages for.
type Target struct {
	OS   string // "linux", "darwin", "windows"
	Arch string // "amd64", "arm64" (normalized)
}

// IsLinux returns true if the target OS is Linux.
func (t Target) IsLinux() bool {
	return t.OS == OSLinux
}

// IsWindows returns true if the target OS is Windows.
func (t Target) IsWindows() bool {
	return t.OS == OSWindows
}

// Info contains detected host platform information.
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // "amd64", "arm64" (normalized)
	ArchRaw  string // original GOARCH spelling
	Platform string // distro ID (Linux only, e.g., "ubuntu")
	Family   string // distro family (Linux only, e.g., "debian")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// IsLinux returns true if the host is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == OSLinux
}

// Detector is the interface for host platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
