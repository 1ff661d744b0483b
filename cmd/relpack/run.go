package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/relpack/internal/archive"
	"github.com/ZebulonRouseFrantzich/relpack/internal/fpm"
	"github.com/ZebulonRouseFrantzich/relpack/internal/git"
	"github.com/ZebulonRouseFrantzich/relpack/internal/manifest"
	"github.com/ZebulonRouseFrantzich/relpack/internal/release"
	"github.com/ZebulonRouseFrantzich/relpack/internal/signing"
)

// pipelineDeps are the external collaborators of a packaging run,
// injectable for tests.
type pipelineDeps struct {
	guard    git.Guard
	archiver *archive.Builder
	packager fpm.Packager
	signer   signing.Signer
}

// runRun handles the `relpack run` subcommand
func runRun(args []string) error {
	showHelp := false
	verbose := false

	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			showHelp = true
		case "--verbose", "-v":
			verbose = true
		default:
			return fmt.Errorf("unknown option: %s\nRun 'relpack run --help' for usage", arg)
		}
	}

	if showHelp {
		printRunHelp()
		return nil
	}

	rc, err := release.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := release.NewWriterLogger(os.Stderr, verbose)

	m, err := loadManifest(rc)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp("", "relpack-")
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	signer := signing.NewGPGClient(rc.GPGKeyArmor, rc.Passphrase)
	defer signer.Cleanup()

	deps := pipelineDeps{
		guard:    git.NewClient(rc.SourceDir),
		archiver: archive.NewBuilder(),
		packager: fpm.NewClient(),
		signer:   signer,
	}

	// Wall-clock limits are the CI runner's job; the context is plumbed
	// through so external tool invocations stay cancellable.
	ctx := context.Background()

	pipeline := release.NewPipeline(buildSteps(rc, m, deps, workDir, logger), logger)
	if err := pipeline.Run(ctx); err != nil {
		return err
	}

	logger.Info("pipeline complete", "artifacts", rc.ArtifactDir)
	return nil
}

// buildSteps assembles the sequential steps of one packaging run.
func buildSteps(rc *release.Context, m *manifest.Manifest, deps pipelineDeps, workDir string, logger release.Logger) []release.Step {
	product := m.Package.Name

	return []release.Step{
		{
			Name: "validate version",
			Run: func(ctx context.Context) error {
				return release.ValidateVersion(rc.Version, rc.Release)
			},
		},
		{
			Name: "release guard",
			Skip: func() (bool, string) {
				if !rc.Release {
					return true, "not a release build"
				}
				return false, ""
			},
			Run: func(ctx context.Context) error {
				return deps.guard.CheckRelease(ctx, rc.Version)
			},
		},
		{
			Name: "build archive",
			Run: func(ctx context.Context) error {
				path, err := deps.archiver.Build(ctx, archive.Spec{
					Product:     product,
					Version:     rc.Version,
					Target:      rc.Target,
					SourceDir:   rc.SourceDir,
					ArtifactDir: rc.ArtifactDir,
					WorkDir:     workDir,
				})
				if err != nil {
					return err
				}
				logger.Info("archive built", "artifact", filepath.Base(path))
				return nil
			},
		},
		{
			Name: "build linux packages",
			Skip: func() (bool, string) {
				if !rc.Target.IsLinux() {
					return true, "target is not linux"
				}
				return false, ""
			},
			Run: func(ctx context.Context) error {
				artifacts, err := fpm.NewBuilder(deps.packager).BuildAll(ctx, fpm.Build{
					Package:     m.Package,
					Version:     rc.Version,
					Arch:        rc.Target.Arch,
					SourceDir:   rc.SourceDir,
					ScriptsDir:  resolveScriptsDir(rc, m, logger),
					ArtifactDir: rc.ArtifactDir,
					WorkDir:     workDir,
				})
				if err != nil {
					return err
				}
				for _, artifact := range artifacts {
					logger.Info("package built", "artifact", filepath.Base(artifact))
				}
				return nil
			},
		},
		{
			Name: "write checksums",
			Run: func(ctx context.Context) error {
				path, err := signing.WriteChecksums(rc.ArtifactDir, product, rc.Version)
				if err != nil {
					return err
				}
				logger.Info("checksums written", "artifact", filepath.Base(path))
				return nil
			},
		},
		{
			Name: "sign artifacts",
			Skip: func() (bool, string) {
				if !rc.Release {
					return true, "not a release build"
				}
				return false, ""
			},
			Run: func(ctx context.Context) error {
				sigs, err := deps.signer.SignAll(ctx, rc.ArtifactDir)
				if err != nil {
					return err
				}
				logger.Info("artifacts signed", "signatures", len(sigs))
				return nil
			},
		},
	}
}

// loadManifest parses the configured Lua manifest or falls back to the
// built-in one.
func loadManifest(rc *release.Context) (*manifest.Manifest, error) {
	if rc.ManifestPath == "" {
		return manifest.Default(), nil
	}
	return manifest.NewParser(rc.Target).ParseFile(rc.ManifestPath)
}

// resolveScriptsDir resolves the manifest's lifecycle scripts directory
// against the source tree. A manifest without scripts, or a declared
// directory that does not exist, yields packages without lifecycle hooks.
func resolveScriptsDir(rc *release.Context, m *manifest.Manifest, logger release.Logger) string {
	if m.ScriptsDir == "" {
		return ""
	}

	dir := m.ScriptsDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(rc.SourceDir, dir)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Warn("scripts directory missing, packaging without lifecycle hooks", "dir", dir)
		return ""
	}
	return dir
}

func printRunHelp() {
	fmt.Println("Usage: relpack run [options]")
	fmt.Println()
	fmt.Println("Runs the packaging pipeline: validates the version, stages and")
	fmt.Println("archives the binaries, builds deb/rpm packages on Linux targets,")
	fmt.Println("writes the checksum manifest, and signs everything on release")
	fmt.Println("builds.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --verbose, -v   Show debug output")
	fmt.Println("  --help, -h      Show this help")
}
