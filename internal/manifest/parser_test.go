package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
)

func linuxAMD64Parser() *Parser {
	return NewParser(platform.Target{OS: platform.OSLinux, Arch: platform.ArchAMD64})
}

func TestParseStringComplete(t *testing.T) {
	code := `
relpack = {
    package = {
        name = "influxdb2",
        vendor = "InfluxData",
        description = "Distributed time-series database.",
        url = "https://influxdata.com",
        maintainer = "support@influxdb.com",
        license = "MIT",
        depends = {"curl"},
        recommends = {"influxdb2-cli"},
        conflicts = {"influxdb"},
        directories = {"/var/lib/influxdb"},
        rpm_attrs = {"750,influxdb,influxdb:/var/lib/influxdb"},
    },
    scripts_dir = "scripts",
}
`
	m, err := linuxAMD64Parser().ParseString(code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if m.Package.Name != "influxdb2" {
		t.Errorf("Name = %q, want influxdb2", m.Package.Name)
	}
	if m.Package.Vendor != "InfluxData" {
		t.Errorf("Vendor = %q, want InfluxData", m.Package.Vendor)
	}
	if len(m.Package.Depends) != 1 || m.Package.Depends[0] != "curl" {
		t.Errorf("Depends = %v, want [curl]", m.Package.Depends)
	}
	if m.ScriptsDir != "scripts" {
		t.Errorf("ScriptsDir = %q, want scripts", m.ScriptsDir)
	}
}

func TestParseStringTargetTable(t *testing.T) {
	code := `
relpack = {
    package = {
        name = "influxdb2",
        depends = { target.os .. "-base" },
        directories = { "/arch/" .. target.rpm_arch },
    },
}
`
	m, err := linuxAMD64Parser().ParseString(code)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if len(m.Package.Depends) != 1 || m.Package.Depends[0] != "linux-base" {
		t.Errorf("Depends = %v, want [linux-base]", m.Package.Depends)
	}
	if len(m.Package.Directories) != 1 || m.Package.Directories[0] != "/arch/x86_64" {
		t.Errorf("Directories = %v, want [/arch/x86_64]", m.Package.Directories)
	}
}

func TestParseStringTargetReadOnly(t *testing.T) {
	code := `
target.os = "plan9"
relpack = { package = { name = "influxdb2" } }
`
	if _, err := linuxAMD64Parser().ParseString(code); err == nil {
		t.Fatal("expected error writing to target table")
	}
}

func TestParseStringSandbox(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"os removed", `relpack = { package = { name = os.getenv("HOME") } }`},
		{"io removed", `relpack = { package = { name = io.open("/etc/passwd") } }`},
		{"require removed", `relpack = { package = { name = require("socket") } }`},
		{"dofile removed", `dofile("/etc/passwd")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := linuxAMD64Parser().ParseString(tt.code); err == nil {
				t.Error("expected sandbox error, got none")
			}
		})
	}
}

func TestParseStringErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
	}{
		{"syntax error", `relpack = {`, "Lua syntax error"},
		{"missing table", `x = 1`, "missing or invalid 'relpack' table"},
		{"missing package", `relpack = {}`, "missing 'relpack.package'"},
		{"name not string", `relpack = { package = { name = 42 } }`, "invalid 'package.name'"},
		{"depends not table", `relpack = { package = { name = "influxdb2", depends = "curl" } }`, "invalid 'package.depends'"},
		{"empty name", `relpack = { package = { name = "" } }`, "invalid manifest"},
		{"name with underscore", `relpack = { package = { name = "influx_db" } }`, "invalid manifest"},
		{"bad url", `relpack = { package = { name = "influxdb2", url = "not a url" } }`, "invalid manifest"},
		{"bad rpm attr", `relpack = { package = { name = "influxdb2", rpm_attrs = {"750:/x"} } }`, "invalid manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := linuxAMD64Parser().ParseString(tt.code)
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relpack.lua")
	code := `relpack = { package = { name = "influxdb2" } }`
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := linuxAMD64Parser().ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if m.Package.Name != "influxdb2" {
		t.Errorf("Name = %q, want influxdb2", m.Package.Name)
	}

	if _, err := linuxAMD64Parser().ParseFile(filepath.Join(dir, "missing.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultManifestValid(t *testing.T) {
	m := Default()
	if err := m.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if m.Package.Name != "influxdb2" {
		t.Errorf("default name = %q, want influxdb2", m.Package.Name)
	}
}
