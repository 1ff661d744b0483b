package platform

import (
	"testing"
)

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"amd64", "amd64", "amd64", false},
		{"x86_64", "x86_64", "amd64", false},
		{"arm64", "arm64", "arm64", false},
		{"aarch64", "aarch64", "arm64", false},
		{"uppercase", "AMD64", "amd64", false},
		{"padded", "  arm64  ", "arm64", false},
		{"i386 unsupported", "i386", "", true},
		{"arm unsupported", "arm", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeArch(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NormalizeArch() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("NormalizeArch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeOS(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"linux", "linux", "linux", false},
		{"darwin", "darwin", "darwin", false},
		{"windows", "windows", "windows", false},
		{"uppercase", "Linux", "linux", false},
		{"macos unsupported", "macos", "", true},
		{"freebsd unsupported", "freebsd", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeOS(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NormalizeOS() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("NormalizeOS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRPMArch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"arm64 to aarch64", "arm64", "aarch64"},
		{"amd64 to x86_64", "amd64", "x86_64"},
		{"riscv64 passthrough", "riscv64", "riscv64"},
		{"empty passthrough", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RPMArch(tt.input); got != tt.want {
				t.Errorf("RPMArch(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDebArch(t *testing.T) {
	for _, arch := range []string{"amd64", "arm64", "s390x"} {
		if got := DebArch(arch); got != arch {
			t.Errorf("DebArch(%q) = %v, want unchanged", arch, got)
		}
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		os      string
		arch    string
		want    Target
		wantErr bool
	}{
		{"linux amd64", "linux", "amd64", Target{OS: "linux", Arch: "amd64"}, false},
		{"windows arm64", "windows", "arm64", Target{OS: "windows", Arch: "arm64"}, false},
		{"darwin aarch64 normalized", "darwin", "aarch64", Target{OS: "darwin", Arch: "arm64"}, false},
		{"bad os", "plan9", "amd64", Target{}, true},
		{"bad arch", "linux", "mips", Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.os, tt.arch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTarget() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseTarget() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTargetPredicates(t *testing.T) {
	linux := Target{OS: OSLinux, Arch: ArchAMD64}
	windows := Target{OS: OSWindows, Arch: ArchAMD64}

	if !linux.IsLinux() || linux.IsWindows() {
		t.Error("linux target predicates wrong")
	}
	if !windows.IsWindows() || windows.IsLinux() {
		t.Error("windows target predicates wrong")
	}
}
