package fpm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ZebulonRouseFrantzich/relpack/internal/manifest"
)

// Iteration is the package revision handed to fpm. It is fixed and
// stripped from the canonical artifact names.
const Iteration = 1

// Build describes one Linux package build (both output formats).
type Build struct {
	Package manifest.Package
	Version string
	Arch    string // build-system spelling

	SourceDir   string // tree holding bin/<name>_linux_<arch>/
	ScriptsDir  string // resolved lifecycle scripts dir, empty for none
	ArtifactDir string // shared output directory
	WorkDir     string // per-run workspace
}

// Builder stages the installation tree and drives a Packager once per
// output format, renaming each produced file to its canonical name.
type Builder struct {
	packager Packager
}

// NewBuilder creates a package builder on top of a Packager.
func NewBuilder(packager Packager) *Builder {
	return &Builder{packager: packager}
}

// BuildAll produces the deb and rpm artifacts and returns their paths.
// Any failure aborts immediately; a half-packaged release must not be
// published.
func (b *Builder) BuildAll(ctx context.Context, build Build) ([]string, error) {
	fsDir, err := stageFS(build)
	if err != nil {
		return nil, err
	}

	outDir := filepath.Join(build.WorkDir, "packages")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create package output dir: %w", err)
	}
	if err := os.MkdirAll(build.ArtifactDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	var artifacts []string
	for _, format := range []Format{FormatDeb, FormatRPM} {
		produced, err := b.packager.Package(ctx, Request{
			Format:     format,
			Package:    build.Package,
			Version:    build.Version,
			Arch:       build.Arch,
			Iteration:  Iteration,
			InputDir:   fsDir,
			ScriptsDir: build.ScriptsDir,
			OutputDir:  outDir,
		})
		if err != nil {
			return nil, err
		}

		canonical := filepath.Join(build.ArtifactDir,
			CanonicalName(format, build.Package.Name, build.Version, build.Arch))
		if err := moveFile(produced, canonical); err != nil {
			return nil, fmt.Errorf("rename %s package: %w", format, err)
		}
		artifacts = append(artifacts, canonical)
	}

	return artifacts, nil
}

// stageFS builds the installation tree: fs/usr/bin/<binaries>.
// The tree is packaged as the filesystem root.
func stageFS(build Build) (string, error) {
	fsDir := filepath.Join(build.WorkDir, "fs")
	binDir := filepath.Join(fsDir, "usr", "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", fmt.Errorf("create fs tree: %w", err)
	}

	srcBinDir := filepath.Join(build.SourceDir, "bin",
		fmt.Sprintf("%s_linux_%s", build.Package.Name, build.Arch))
	binaries, err := filepath.Glob(filepath.Join(srcBinDir, "*"))
	if err != nil {
		return "", fmt.Errorf("glob binaries: %w", err)
	}
	if len(binaries) == 0 {
		return "", fmt.Errorf("no binaries found in %s", srcBinDir)
	}

	for _, bin := range binaries {
		info, err := os.Stat(bin)
		if err != nil {
			return "", fmt.Errorf("stat binary %s: %w", bin, err)
		}
		if info.IsDir() {
			continue
		}
		if err := copyExecutable(bin, filepath.Join(binDir, filepath.Base(bin))); err != nil {
			return "", fmt.Errorf("stage binary %s: %w", bin, err)
		}
	}

	return fsDir, nil
}

// moveFile renames src to dst. The workspace lives in the system temp
// directory while the artifact directory is typically a mounted volume,
// so a cross-device rename falls back to copy and remove.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}

func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
