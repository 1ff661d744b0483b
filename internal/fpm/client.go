package fpm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZebulonRouseFrantzich/relpack/internal/manifest"
	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
)

// ErrFPMNotFound means the fpm binary is not on PATH.
var ErrFPMNotFound = errors.New("fpm binary not found")

// Request describes one fpm invocation.
type Request struct {
	Format    Format
	Package   manifest.Package
	Version   string
	Arch      string // build-system spelling; translated per format
	Iteration int

	// InputDir is the staged installation tree packaged as /.
	InputDir string

	// ScriptsDir holds pre-install.sh, post-install.sh and
	// post-uninstall.sh. Empty means no lifecycle scripts.
	ScriptsDir string

	// OutputDir is where fpm writes its default-named output file.
	OutputDir string
}

// Packager is the interface for building OS packages.
// Following Go best practices: accept interfaces, return structs.
type Packager interface {
	// Package runs one build and returns the path of the produced file,
	// named with the tool's default scheme.
	Package(ctx context.Context, req Request) (string, error)
}

// Client implements Packager by invoking the external fpm binary.
type Client struct {
	bin string
}

// NewClient creates a client that invokes "fpm" from PATH.
func NewClient() *Client {
	return &Client{bin: "fpm"}
}

// NewClientWithBinary creates a client for a specific fpm binary path.
func NewClientWithBinary(bin string) *Client {
	return &Client{bin: bin}
}

// Available reports whether the fpm binary can be found.
func (c *Client) Available() error {
	if _, err := exec.LookPath(c.bin); err != nil {
		return fmt.Errorf("%w: %s", ErrFPMNotFound, c.bin)
	}
	return nil
}

// Package invokes fpm once. Any non-zero exit is fatal to the run; the
// tool's own output is surfaced as the diagnostic.
func (c *Client) Package(ctx context.Context, req Request) (string, error) {
	args, err := buildArgs(req)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Dir = req.OutputDir

	// Scrub the environment: fpm only needs the basics plus the Ruby
	// gem paths it may be installed under. Signing secrets in the CI
	// environment must never reach child processes that don't sign.
	cmd.Env = scrubbedEnv()

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("fpm %s failed: %w\n%s", req.Format, err, strings.TrimSpace(string(out)))
	}

	outPath := filepath.Join(req.OutputDir, DefaultName(req.Format, req.Package.Name, req.Version, req.Arch, req.Iteration))
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("fpm %s reported success but %s is missing: %w", req.Format, outPath, err)
	}

	return outPath, nil
}

// buildArgs constructs the fpm argument list for a request. Kept separate
// from the invocation so the argument contract is independently testable.
func buildArgs(req Request) ([]string, error) {
	if req.Format != FormatDeb && req.Format != FormatRPM {
		return nil, fmt.Errorf("unsupported package format: %q", req.Format)
	}
	if req.InputDir == "" {
		return nil, fmt.Errorf("input directory is required")
	}

	pkg := req.Package
	args := []string{
		"--log", "error",
		"-s", "dir",
		"-t", string(req.Format),
		"--name", pkg.Name,
		"--version", req.Version,
		"--iteration", strconv.Itoa(req.Iteration),
	}

	// fpm would translate amd64/arm64 itself for rpm output, but the
	// produced filename must stay a pure function of our inputs, so the
	// translation is applied explicitly.
	switch req.Format {
	case FormatDeb:
		args = append(args, "--architecture", platform.DebArch(req.Arch))
	case FormatRPM:
		args = append(args, "--architecture", platform.RPMArch(req.Arch))
	}

	if pkg.Vendor != "" {
		args = append(args, "--vendor", pkg.Vendor)
	}
	if pkg.Description != "" {
		args = append(args, "--description", pkg.Description)
	}
	if pkg.URL != "" {
		args = append(args, "--url", pkg.URL)
	}
	if pkg.Maintainer != "" {
		args = append(args, "--maintainer", pkg.Maintainer)
	}
	if pkg.License != "" {
		args = append(args, "--license", pkg.License)
	}

	if req.ScriptsDir != "" {
		args = append(args,
			"--before-install", filepath.Join(req.ScriptsDir, "pre-install.sh"),
			"--after-install", filepath.Join(req.ScriptsDir, "post-install.sh"),
			"--after-remove", filepath.Join(req.ScriptsDir, "post-uninstall.sh"),
		)
	}

	for _, dep := range pkg.Depends {
		args = append(args, "--depends", dep)
	}
	for _, rec := range pkg.Recommends {
		args = append(args, "--deb-recommends", rec)
	}
	for _, con := range pkg.Conflicts {
		args = append(args, "--conflicts", con)
	}
	for _, dir := range pkg.Directories {
		args = append(args, "--directories", dir)
	}

	if req.Format == FormatRPM {
		for _, attr := range pkg.RPMAttrs {
			args = append(args, "--rpm-attr", attr)
		}
		// Default modes for everything not covered by an attr.
		args = append(args,
			"--rpm-defattrfile", "750",
			"--rpm-defattrdir", "750",
		)
	}

	args = append(args, "--chdir", req.InputDir, ".")
	return args, nil
}

func scrubbedEnv() []string {
	env := []string{
		"HOME=" + os.Getenv("HOME"),
		"PATH=" + os.Getenv("PATH"),
		"USER=" + os.Getenv("USER"),
		"LANG=" + os.Getenv("LANG"),
	}
	for _, key := range []string{"GEM_HOME", "GEM_PATH"} {
		if v := os.Getenv(key); v != "" {
			env = append(env, key+"="+v)
		}
	}
	return env
}

