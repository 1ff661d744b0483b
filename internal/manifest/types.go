package manifest

import (
	"fmt"
	"net/url"
	"strings"
)

// Manifest is the complete package manifest.
type Manifest struct {
	// Package metadata handed to the OS package builder.
	Package Package `json:"package"`

	// Directory holding pre-install, post-install and post-uninstall
	// scripts. Relative paths resolve against the source tree root.
	ScriptsDir string `json:"scripts_dir,omitempty"`
}

// Package describes one OS package.
type Package struct {
	Name        string `json:"name"`
	Vendor      string `json:"vendor,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Maintainer  string `json:"maintainer,omitempty"`
	License     string `json:"license,omitempty"`

	// Package relationships.
	Depends    []string `json:"depends,omitempty"`
	Recommends []string `json:"recommends,omitempty"`
	Conflicts  []string `json:"conflicts,omitempty"`

	// Directories the package owns at runtime (e.g. /var/lib/<name>).
	Directories []string `json:"directories,omitempty"`

	// RPM %attr declarations, "mode,user,group:path" per entry.
	RPMAttrs []string `json:"rpm_attrs,omitempty"`
}

// Validate checks the manifest for fields the package builder cannot work
// without or that would break the artifact naming contract.
func (m *Manifest) Validate() error {
	name := strings.TrimSpace(m.Package.Name)
	if name == "" {
		return fmt.Errorf("package.name is required")
	}
	if strings.ContainsAny(name, "/\\ ") {
		return fmt.Errorf("package.name %q must not contain spaces or path separators", name)
	}
	// Underscores would collide with the staging directory name
	// separator (<name>_<os>_<arch>).
	if strings.ContainsAny(name, "_") {
		return fmt.Errorf("package.name %q must not contain underscores", name)
	}

	if m.Package.URL != "" {
		u, err := url.Parse(m.Package.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("package.url %q is not a valid URL", m.Package.URL)
		}
	}

	for _, attr := range m.Package.RPMAttrs {
		if !strings.Contains(attr, ":") || len(strings.Split(strings.SplitN(attr, ":", 2)[0], ",")) != 3 {
			return fmt.Errorf("package.rpm_attrs entry %q must be \"mode,user,group:path\"", attr)
		}
	}

	return nil
}

// Default returns the built-in influxdb2 manifest, used when no manifest
// file is supplied.
func Default() *Manifest {
	return &Manifest{
		Package: Package{
			Name:        "influxdb2",
			Vendor:      "InfluxData",
			Description: "Distributed time-series database.",
			URL:         "https://influxdata.com",
			Maintainer:  "support@influxdb.com",
			License:     "MIT",
			Depends:     []string{"curl"},
			Recommends:  []string{"influxdb2-cli"},
			Conflicts:   []string{"influxdb"},
			Directories: []string{"/var/lib/influxdb"},
			RPMAttrs:    []string{"750,influxdb,influxdb:/var/lib/influxdb"},
		},
		ScriptsDir: "scripts",
	}
}
