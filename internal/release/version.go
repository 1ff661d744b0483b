package release

import (
	"fmt"
	"regexp"
)

// releaseVersionRegex matches the strict MAJOR.MINOR.PATCH grammar the OS
// package managers accept. No "v" prefix, no prerelease suffix.
var releaseVersionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidateVersion checks a version string against the release grammar.
// Non-release builds accept any non-empty version; release builds require
// strict MAJOR.MINOR.PATCH so a broken package is never published.
func ValidateVersion(version string, releaseBuild bool) error {
	if version == "" {
		return fmt.Errorf("version must not be empty")
	}
	if !releaseBuild {
		return nil
	}
	if !releaseVersionRegex.MatchString(version) {
		return fmt.Errorf("release version %q must match MAJOR.MINOR.PATCH (no prefix, no prerelease suffix)", version)
	}
	return nil
}
