// Package testutil provides utilities for testing the packaging pipeline
// in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points every pipeline environment variable at per-test
// temp directories and clears release/signing variables so tests never
// read the CI environment they might actually be running in.
//
// The cleanup is handled by t.TempDir() and t.Setenv(), so callers don't
// need to undo anything.
func SetupTestEnv(t *testing.T) (sourceDir, artifactDir string) {
	t.Helper()

	tmpDir := t.TempDir()
	sourceDir = filepath.Join(tmpDir, "source")
	artifactDir = filepath.Join(tmpDir, "artifacts")

	for _, dir := range []string{sourceDir, artifactDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	t.Setenv("RELPACK_SOURCE", sourceDir)
	t.Setenv("RELPACK_ARTIFACTS", artifactDir)
	t.Setenv("RELPACK_MANIFEST", "")

	// Never inherit release state or signing secrets from the outside.
	for _, key := range []string{"RELEASE", "GPG_PRIVATE_KEY", "PASSPHRASE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	return sourceDir, artifactDir
}

// WriteSourceTree lays out a minimal packaging source tree: LICENSE,
// README.md and one binary for the given product/platform/arch.
func WriteSourceTree(t *testing.T, sourceDir, product, plat, arch string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(sourceDir, "LICENSE"), []byte("license"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sourceDir, "README.md"), []byte("readme"), 0o644); err != nil {
		t.Fatal(err)
	}

	binDir := filepath.Join(sourceDir, "bin", product+"_"+plat+"_"+arch)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, "influxd"), []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
}
