package release

import (
	"errors"
	"fmt"
	"os"

	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
)

// Environment variables consumed by a packaging run.
const (
	EnvRelease     = "RELEASE"
	EnvVersion     = "VERSION"
	EnvPlatform    = "PLAT"
	EnvArch        = "ARCH"
	EnvGPGKey      = "GPG_PRIVATE_KEY"
	EnvPassphrase  = "PASSPHRASE"
	EnvArtifactDir = "RELPACK_ARTIFACTS"
	EnvSourceDir   = "RELPACK_SOURCE"
	EnvManifest    = "RELPACK_MANIFEST"
)

// Defaults for the optional directories.
const (
	DefaultArtifactDir = "/artifacts"
	DefaultSourceDir   = "."
)

// ErrMissingVariable wraps every missing-required-variable failure.
var ErrMissingVariable = errors.New("required environment variable not set")

// Context is the immutable configuration of one packaging run.
type Context struct {
	Release bool
	Version string
	Target  platform.Target

	SourceDir    string // tree holding LICENSE, README.md, bin/
	ArtifactDir  string // shared output directory
	ManifestPath string // optional Lua manifest, empty means built-in

	GPGKeyArmor string // armored private key, raw (escapes unexpanded)
	Passphrase  string
}

// LookupFunc is the environment access used by Load, os.LookupEnv shaped.
type LookupFunc func(key string) (string, bool)

// LoadFromEnv builds a Context from the process environment.
func LoadFromEnv() (*Context, error) {
	return Load(os.LookupEnv)
}

// Load builds and validates a Context. Required variables that are unset
// or empty produce a configuration error; the caller turns that into a
// non-zero exit. Signing material is required only on release builds.
func Load(lookup LookupFunc) (*Context, error) {
	rc := &Context{}

	if v, ok := lookup(EnvRelease); ok && v != "" {
		rc.Release = true
	}

	version, err := required(lookup, EnvVersion)
	if err != nil {
		return nil, err
	}
	rc.Version = version

	plat, err := required(lookup, EnvPlatform)
	if err != nil {
		return nil, err
	}
	arch, err := required(lookup, EnvArch)
	if err != nil {
		return nil, err
	}
	target, err := platform.ParseTarget(plat, arch)
	if err != nil {
		return nil, err
	}
	rc.Target = target

	rc.ArtifactDir = optional(lookup, EnvArtifactDir, DefaultArtifactDir)
	rc.SourceDir = optional(lookup, EnvSourceDir, DefaultSourceDir)
	rc.ManifestPath = optional(lookup, EnvManifest, "")

	if rc.Release {
		rc.GPGKeyArmor, err = required(lookup, EnvGPGKey)
		if err != nil {
			return nil, err
		}
		rc.Passphrase, err = required(lookup, EnvPassphrase)
		if err != nil {
			return nil, err
		}
	}

	if err := ValidateVersion(rc.Version, rc.Release); err != nil {
		return nil, err
	}

	return rc, nil
}

func required(lookup LookupFunc, key string) (string, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, key)
	}
	return v, nil
}

func optional(lookup LookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return fallback
}
