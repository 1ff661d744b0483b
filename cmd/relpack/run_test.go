package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/ZebulonRouseFrantzich/relpack/internal/archive"
	"github.com/ZebulonRouseFrantzich/relpack/internal/fpm"
	"github.com/ZebulonRouseFrantzich/relpack/internal/manifest"
	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
	"github.com/ZebulonRouseFrantzich/relpack/internal/release"
	"github.com/ZebulonRouseFrantzich/relpack/internal/testutil"
)

// fakePackager writes fpm's default-named output without invoking fpm.
type fakePackager struct {
	invocations int
}

func (f *fakePackager) Package(ctx context.Context, req fpm.Request) (string, error) {
	f.invocations++
	out := filepath.Join(req.OutputDir, fpm.DefaultName(req.Format, req.Package.Name, req.Version, req.Arch, req.Iteration))
	if err := os.WriteFile(out, []byte("package"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// fakeSigner writes an .asc next to every artifact.
type fakeSigner struct {
	signed int
}

func (f *fakeSigner) SignAll(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var sigs []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".asc") {
			continue
		}
		sig := filepath.Join(dir, entry.Name()+".asc")
		if err := os.WriteFile(sig, []byte("signature"), 0o644); err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	f.signed = len(sigs)
	return sigs, nil
}

// fakeGuard approves or rejects releases.
type fakeGuard struct {
	err     error
	checked bool
}

func (f *fakeGuard) IsRepo(ctx context.Context) (bool, error)         { return false, nil }
func (f *fakeGuard) HeadCommit(ctx context.Context) (string, error)   { return "", nil }
func (f *fakeGuard) CheckRelease(ctx context.Context, v string) error { f.checked = true; return f.err }

func testContext(t *testing.T, plat, arch, version string, releaseBuild bool) *release.Context {
	t.Helper()

	sourceDir, artifactDir := testutil.SetupTestEnv(t)
	testutil.WriteSourceTree(t, sourceDir, "influxdb2", plat, arch)

	target, err := platform.ParseTarget(plat, arch)
	if err != nil {
		t.Fatal(err)
	}
	return &release.Context{
		Release:     releaseBuild,
		Version:     version,
		Target:      target,
		SourceDir:   sourceDir,
		ArtifactDir: artifactDir,
	}
}

func runSteps(t *testing.T, rc *release.Context, deps pipelineDeps) error {
	t.Helper()
	pipeline := release.NewPipeline(
		buildSteps(rc, manifest.Default(), deps, t.TempDir(), release.NewNopLogger()),
		release.NewNopLogger(),
	)
	return pipeline.Run(context.Background())
}

func listArtifacts(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunLinuxSnapshot(t *testing.T) {
	rc := testContext(t, "linux", "amd64", "2.7.1", false)
	deps := pipelineDeps{
		guard:    &fakeGuard{},
		archiver: archive.NewBuilder(),
		packager: &fakePackager{},
		signer:   &fakeSigner{},
	}

	if err := runSteps(t, rc, deps); err != nil {
		t.Fatalf("pipeline error = %v", err)
	}

	want := []string{
		"influxdb2-2.7.1-linux-amd64.tar.gz",
		"influxdb2-2.7.1.amd64.deb",
		"influxdb2-2.7.1.sha256",
		"influxdb2-2.7.1.x86_64.rpm",
	}
	got := listArtifacts(t, rc.ArtifactDir)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("artifacts = %v, want %v", got, want)
	}
}

func TestRunLinuxRelease(t *testing.T) {
	rc := testContext(t, "linux", "amd64", "2.7.1", true)
	guard := &fakeGuard{}
	signer := &fakeSigner{}
	deps := pipelineDeps{
		guard:    guard,
		archiver: archive.NewBuilder(),
		packager: &fakePackager{},
		signer:   signer,
	}

	if err := runSteps(t, rc, deps); err != nil {
		t.Fatalf("pipeline error = %v", err)
	}

	if !guard.checked {
		t.Error("release guard did not run on a release build")
	}

	// One signature per artifact, checksum manifest included.
	if signer.signed != 4 {
		t.Errorf("signed = %d artifacts, want 4", signer.signed)
	}
	got := listArtifacts(t, rc.ArtifactDir)
	if len(got) != 8 {
		t.Errorf("artifact count = %d (%v), want 8", len(got), got)
	}
	for _, name := range []string{
		"influxdb2-2.7.1-linux-amd64.tar.gz.asc",
		"influxdb2-2.7.1.amd64.deb.asc",
		"influxdb2-2.7.1.x86_64.rpm.asc",
		"influxdb2-2.7.1.sha256.asc",
	} {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing signature %s", name)
		}
	}
}

func TestRunReleaseBadVersionAbortsEarly(t *testing.T) {
	rc := testContext(t, "linux", "amd64", "2.7.1-beta", true)
	packager := &fakePackager{}
	deps := pipelineDeps{
		guard:    &fakeGuard{},
		archiver: archive.NewBuilder(),
		packager: packager,
		signer:   &fakeSigner{},
	}

	if err := runSteps(t, rc, deps); err == nil {
		t.Fatal("pipeline accepted prerelease version on release build")
	}

	if packager.invocations != 0 {
		t.Error("packager ran after validation failure")
	}
	if got := listArtifacts(t, rc.ArtifactDir); len(got) != 0 {
		t.Errorf("artifacts produced before abort: %v", got)
	}
}

func TestRunReleaseGuardFailureAborts(t *testing.T) {
	rc := testContext(t, "linux", "amd64", "2.7.1", true)
	deps := pipelineDeps{
		guard:    &fakeGuard{err: errors.New("tag missing")},
		archiver: archive.NewBuilder(),
		packager: &fakePackager{},
		signer:   &fakeSigner{},
	}

	if err := runSteps(t, rc, deps); err == nil {
		t.Fatal("pipeline ignored release guard failure")
	}
	if got := listArtifacts(t, rc.ArtifactDir); len(got) != 0 {
		t.Errorf("artifacts produced after guard failure: %v", got)
	}
}

func TestRunDarwinSkipsPackages(t *testing.T) {
	rc := testContext(t, "darwin", "arm64", "2.7.1", false)
	packager := &fakePackager{}
	deps := pipelineDeps{
		guard:    &fakeGuard{},
		archiver: archive.NewBuilder(),
		packager: packager,
		signer:   &fakeSigner{},
	}

	if err := runSteps(t, rc, deps); err != nil {
		t.Fatalf("pipeline error = %v", err)
	}

	if packager.invocations != 0 {
		t.Error("linux package builder ran for a darwin target")
	}
	want := []string{
		"influxdb2-2.7.1-darwin-arm64.tar.gz",
		"influxdb2-2.7.1.sha256",
	}
	got := listArtifacts(t, rc.ArtifactDir)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("artifacts = %v, want %v", got, want)
	}
}

func TestRunWindowsBuildsZip(t *testing.T) {
	rc := testContext(t, "windows", "amd64", "2.7.1", false)
	deps := pipelineDeps{
		guard:    &fakeGuard{},
		archiver: archive.NewBuilder(),
		packager: &fakePackager{},
		signer:   &fakeSigner{},
	}

	if err := runSteps(t, rc, deps); err != nil {
		t.Fatalf("pipeline error = %v", err)
	}

	got := listArtifacts(t, rc.ArtifactDir)
	if len(got) != 2 || got[0] != "influxdb2-2.7.1-windows-amd64.zip" {
		t.Errorf("artifacts = %v, want zip + checksums", got)
	}
}

func TestRunMissingBinariesAborts(t *testing.T) {
	rc := testContext(t, "linux", "amd64", "2.7.1", false)
	if err := os.RemoveAll(filepath.Join(rc.SourceDir, "bin")); err != nil {
		t.Fatal(err)
	}

	deps := pipelineDeps{
		guard:    &fakeGuard{},
		archiver: archive.NewBuilder(),
		packager: &fakePackager{},
		signer:   &fakeSigner{},
	}

	err := runSteps(t, rc, deps)
	if !errors.Is(err, archive.ErrNoBinaries) {
		t.Fatalf("pipeline error = %v, want ErrNoBinaries", err)
	}
	if got := listArtifacts(t, rc.ArtifactDir); len(got) != 0 {
		t.Errorf("artifacts produced without binaries: %v", got)
	}
}

func TestRunRejectsUnknownOption(t *testing.T) {
	testutil.SetupTestEnv(t)
	if err := runRun([]string{"--frobnicate"}); err == nil {
		t.Error("unknown option accepted")
	}
}
