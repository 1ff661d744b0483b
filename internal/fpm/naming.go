package fpm

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
)

// Format is an output package format.
type Format string

// Supported output formats.
const (
	FormatDeb Format = "deb"
	FormatRPM Format = "rpm"
)

// RPMVersion converts a version string to RPM's version grammar, which
// forbids hyphens. fpm applies the same substitution to its output names.
func RPMVersion(version string) string {
	return strings.ReplaceAll(version, "-", "_")
}

// DefaultName returns the filename fpm produces for a package before any
// renaming. The arch argument uses the build-system spelling; format
// specific translation happens here.
//
//	deb: <name>_<version>-<iteration>_<arch>.deb
//	rpm: <name>-<rpmversion>-<iteration>.<rpmarch>.rpm
func DefaultName(format Format, name, version, arch string, iteration int) string {
	switch format {
	case FormatDeb:
		return fmt.Sprintf("%s_%s-%d_%s.deb", name, version, iteration, platform.DebArch(arch))
	case FormatRPM:
		return fmt.Sprintf("%s-%s-%d.%s.rpm", name, RPMVersion(version), iteration, platform.RPMArch(arch))
	default:
		return ""
	}
}

// CanonicalName returns the project's artifact name for a package: hyphen
// separated, no iteration suffix.
//
//	deb: <name>-<version>.<arch>.deb
//	rpm: <name>-<rpmversion>.<rpmarch>.rpm
func CanonicalName(format Format, name, version, arch string) string {
	switch format {
	case FormatDeb:
		return fmt.Sprintf("%s-%s.%s.deb", name, version, platform.DebArch(arch))
	case FormatRPM:
		return fmt.Sprintf("%s-%s.%s.rpm", name, RPMVersion(version), platform.RPMArch(arch))
	default:
		return ""
	}
}
