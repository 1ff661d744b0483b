package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
)

// ErrNoBinaries means the binary glob matched nothing. A silently empty
// archive is worse than a hard failure, so staging refuses to proceed.
var ErrNoBinaries = errors.New("no binaries found for target")

// Spec describes one archive build.
type Spec struct {
	Product     string
	Version     string
	Target      platform.Target
	SourceDir   string // tree holding LICENSE, README.md, bin/
	ArtifactDir string // shared output directory
	WorkDir     string // per-run workspace for staging
}

// StageName returns the staging directory name, <product>_<os>_<arch>.
// It is also the directory prefix of every archive entry.
func (s Spec) StageName() string {
	return fmt.Sprintf("%s_%s_%s", s.Product, s.Target.OS, s.Target.Arch)
}

// BinDir returns the directory the prebuilt binaries are expected in.
func (s Spec) BinDir() string {
	return filepath.Join(s.SourceDir, "bin", s.StageName())
}

// stage copies the license, readme and every target binary into a fresh
// staging directory under the workspace and returns the staged file paths
// in sorted order.
func stage(spec Spec) (stageDir string, files []string, err error) {
	stageDir = filepath.Join(spec.WorkDir, spec.StageName())
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}

	for _, doc := range []string{"LICENSE", "README.md"} {
		src := filepath.Join(spec.SourceDir, doc)
		dst := filepath.Join(stageDir, doc)
		if err := copyFile(src, dst); err != nil {
			return "", nil, fmt.Errorf("stage %s: %w", doc, err)
		}
		files = append(files, dst)
	}

	binaries, err := filepath.Glob(filepath.Join(spec.BinDir(), "*"))
	if err != nil {
		return "", nil, fmt.Errorf("glob binaries: %w", err)
	}
	if len(binaries) == 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrNoBinaries, spec.BinDir())
	}

	for _, bin := range binaries {
		info, err := os.Stat(bin)
		if err != nil {
			return "", nil, fmt.Errorf("stat binary %s: %w", bin, err)
		}
		if info.IsDir() {
			continue
		}
		dst := filepath.Join(stageDir, filepath.Base(bin))
		if err := copyFile(bin, dst); err != nil {
			return "", nil, fmt.Errorf("stage binary %s: %w", bin, err)
		}
		files = append(files, dst)
	}

	sort.Strings(files)
	return stageDir, files, nil
}

// copyFile copies src to dst preserving the source file mode.
func copyFile(src, dst string) error {
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
		return err
	}
	return out.Close()
}
