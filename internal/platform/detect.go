package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual host detection.
type RealDetector struct{}

// NewDetector creates a new host platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect returns information about the machine the pipeline runs on.
// OS and architecture come from the runtime; Linux distribution details
// come from gopsutil. Distro detection failure is not fatal: packaging
// targets are chosen by the caller, so host details are informational.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      runtime.GOOS,
		ArchRaw: runtime.GOARCH,
	}

	arch, err := NormalizeArch(runtime.GOARCH)
	if err != nil {
		return nil, fmt.Errorf("host detection failed: %w", err)
	}
	info.Arch = arch

	if runtime.GOOS == OSLinux {
		platform, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("host detection cancelled: %w", ctx.Err())
			}
			// Graceful fallback: OS/arch is enough for diagnostics.
			return info, nil
		}

		info.Platform = strings.ToLower(strings.TrimSpace(platform))
		info.Family = strings.ToLower(strings.TrimSpace(family))
		info.Version = strings.ToLower(strings.TrimSpace(version))
	}

	return info, nil
}
