package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
)

// Name returns the archive filename for a product/version/target triple:
// <product>-<version>-<os>-<arch>.tar.gz, or .zip on Windows targets.
// It is a pure function so downstream consumers can derive artifact paths
// without listing the artifact directory.
func Name(product, version string, target platform.Target) string {
	ext := "tar.gz"
	if target.IsWindows() {
		ext = "zip"
	}
	return fmt.Sprintf("%s-%s-%s-%s.%s", product, version, target.OS, target.Arch, ext)
}

// Builder produces platform archives.
type Builder struct{}

// NewBuilder creates an archive builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build stages the release files and writes the archive into the artifact
// directory, returning the artifact path. Entries are stored as
// <product>_<os>_<arch>/<file> with no entry for the directory itself.
func (b *Builder) Build(ctx context.Context, spec Spec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	_, files, err := stage(spec)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(spec.ArtifactDir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	outPath := filepath.Join(spec.ArtifactDir, Name(spec.Product, spec.Version, spec.Target))

	if spec.Target.IsWindows() {
		err = writeZip(ctx, outPath, spec.StageName(), files)
	} else {
		err = writeTarGz(ctx, outPath, spec.StageName(), files)
	}
	if err != nil {
		// A failed build must not leave a partial artifact behind.
		os.Remove(outPath)
		return "", err
	}

	return outPath, nil
}

// writeTarGz writes the staged files into a gzip-compressed tarball.
func writeTarGz(ctx context.Context, outPath, prefix string, files []string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	gzw := gzip.NewWriter(out)
	tw := tar.NewWriter(gzw)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("stat %s: %w", file, err)
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("tar header %s: %w", file, err)
		}
		header.Name = path.Join(prefix, filepath.Base(file))
		header.Mode = int64(normalizeMode(info.Mode()))

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("write tar header %s: %w", file, err)
		}

		in, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open %s: %w", file, err)
		}
		if _, err := io.Copy(tw, in); err != nil {
			in.Close()
			return fmt.Errorf("write %s: %w", file, err)
		}
		in.Close()
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("close gzip: %w", err)
	}
	return out.Close()
}

// writeZip writes the staged files into a zip archive.
func writeZip(ctx context.Context, outPath, prefix string, files []string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("stat %s: %w", file, err)
		}

		header := &zip.FileHeader{
			Name:     path.Join(prefix, filepath.Base(file)),
			Method:   zip.Deflate,
			Modified: info.ModTime(),
		}
		header.SetMode(normalizeMode(info.Mode()))

		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("zip header %s: %w", file, err)
		}

		in, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open %s: %w", file, err)
		}
		if _, err := io.Copy(w, in); err != nil {
			in.Close()
			return fmt.Errorf("write %s: %w", file, err)
		}
		in.Close()
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return out.Close()
}

// normalizeMode collapses file modes to 0644 or, for executables, 0755.
func normalizeMode(mode os.FileMode) os.FileMode {
	if mode&0o111 != 0 {
		return 0o755
	}
	return 0o644
}
