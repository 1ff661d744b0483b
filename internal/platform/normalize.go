package platform

import (
	"fmt"
	"strings"
)

// rpmArchMap translates build-system architecture names to RPM convention.
// Architectures not listed pass through unchanged.
var rpmArchMap = map[string]string{
	ArchARM64: "aarch64",
	ArchAMD64: "x86_64",
}

// NormalizeArch converts architecture spellings to build-system names.
// Only amd64 and arm64 targets are packaged.
func NormalizeArch(arch string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(arch)) {
	case "amd64", "x86_64":
		return ArchAMD64, nil
	case "arm64", "aarch64":
		return ArchARM64, nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s (supported: amd64, arm64)", arch)
	}
}

// NormalizeOS validates an OS name. Only GOOS spellings are accepted:
// the bin/ directory layout and the staging names are built from the
// same value, so an alias here would point staging at a directory the
// build never created.
func NormalizeOS(os string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(os)) {
	case "linux":
		return OSLinux, nil
	case "darwin":
		return OSDarwin, nil
	case "windows":
		return OSWindows, nil
	default:
		return "", fmt.Errorf("unsupported platform: %s (supported: linux, darwin, windows)", os)
	}
}

// ParseTarget validates and normalizes a platform/architecture pair.
func ParseTarget(os, arch string) (Target, error) {
	normOS, err := NormalizeOS(os)
	if err != nil {
		return Target{}, err
	}
	normArch, err := NormalizeArch(arch)
	if err != nil {
		return Target{}, err
	}
	return Target{OS: normOS, Arch: normArch}, nil
}

// RPMArch translates a build-system architecture name to RPM convention
// (arm64 -> aarch64, amd64 -> x86_64). Unknown names pass through.
func RPMArch(arch string) string {
	if rpm, ok := rpmArchMap[arch]; ok {
		return rpm
	}
	return arch
}

// DebArch returns the Debian architecture name. Debian uses the
// build-system spelling unchanged.
func DebArch(arch string) string {
	return arch
}
