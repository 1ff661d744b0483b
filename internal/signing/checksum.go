package signing

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ChecksumName returns the checksum manifest filename for a release:
// <product>-<version>.sha256.
func ChecksumName(product, version string) string {
	return fmt.Sprintf("%s-%s.sha256", product, version)
}

// WriteChecksums writes a SHA-256 manifest covering every file in dir and
// returns its path. Lines are "<hex>  <filename>", sorted by filename.
// Signature files and any previous manifest are excluded.
func WriteChecksums(dir, product, version string) (string, error) {
	manifestName := ChecksumName(product, version)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read artifact dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == manifestName ||
			strings.HasSuffix(name, ".asc") || strings.HasSuffix(name, ".sha256") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return "", fmt.Errorf("no artifacts to checksum in %s", dir)
	}

	var b strings.Builder
	for _, name := range names {
		sum, err := fileSHA256(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s  %s\n", sum, name)
	}

	outPath := filepath.Join(dir, manifestName)
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write checksum manifest: %w", err)
	}

	return outPath, nil
}

// VerifyChecksums checks every entry of a checksum manifest against the
// files next to it. The first mismatch or missing file aborts.
func VerifyChecksums(manifestPath string) error {
	dir := filepath.Dir(manifestPath)

	f, err := os.Open(manifestPath)
	if err != nil {
		return fmt.Errorf("open checksum manifest: %w", err)
	}
	defer f.Close()

	checked := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		want, name := parts[0], parts[1]

		got, err := fileSHA256(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("checksum %s: %w", name, err)
		}
		if !strings.EqualFold(got, want) {
			return fmt.Errorf("checksum mismatch for %s:\nactual:   %s\nexpected: %s", name, got, want)
		}
		checked++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan checksum manifest: %w", err)
	}

	if checked == 0 {
		return fmt.Errorf("checksum manifest %s lists no files", filepath.Base(manifestPath))
	}

	return nil
}

// fileSHA256 calculates the SHA-256 checksum of a file.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
