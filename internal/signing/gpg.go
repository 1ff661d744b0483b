package signing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Errors surfaced by the signer.
var (
	ErrGPGNotFound   = errors.New("gpg binary not found")
	ErrNoKeyMaterial = errors.New("signing key material is empty or unparseable")
	ErrKeyNotPrivate = errors.New("signing key contains no private key")
)

// Signer is the interface for producing detached artifact signatures.
type Signer interface {
	// SignAll signs every artifact in dir and returns the signature
	// paths. Existing .asc files are not re-signed.
	SignAll(ctx context.Context, dir string) ([]string, error)
}

// GPGClient implements Signer by invoking the external gpg binary against
// an ephemeral, isolated GnuPG home directory.
type GPGClient struct {
	bin        string
	keyArmor   string // raw value from the environment, escapes unexpanded
	passphrase string

	homeDir  string // created on import
	imported bool
}

// NewGPGClient creates a signer for the given key material. Nothing is
// imported until ImportKey runs.
func NewGPGClient(keyArmor, passphrase string) *GPGClient {
	return &GPGClient{bin: "gpg", keyArmor: keyArmor, passphrase: passphrase}
}

// Available reports whether the gpg binary can be found.
func (c *GPGClient) Available() error {
	if _, err := exec.LookPath(c.bin); err != nil {
		return fmt.Errorf("%w: %s", ErrGPGNotFound, c.bin)
	}
	return nil
}

// KeyID parses the key material and returns the primary key's ID without
// touching gpg. Used to reject garbage before anything is imported and to
// give logs something identifiable.
func (c *GPGClient) KeyID() (string, error) {
	armored := ExpandEscapes(c.keyArmor)

	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armored))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoKeyMaterial, err)
	}
	if len(keyring) == 0 {
		return "", ErrNoKeyMaterial
	}
	if keyring[0].PrivateKey == nil {
		return "", ErrKeyNotPrivate
	}

	return keyring[0].PrimaryKey.KeyIdString(), nil
}

// ImportKey validates the key material and imports it into a fresh
// GnuPG home under the system temp directory.
func (c *GPGClient) ImportKey(ctx context.Context) error {
	if _, err := c.KeyID(); err != nil {
		return err
	}

	home, err := os.MkdirTemp("", "relpack-gnupg-")
	if err != nil {
		return fmt.Errorf("create gnupg home: %w", err)
	}
	if err := os.Chmod(home, 0o700); err != nil {
		return fmt.Errorf("restrict gnupg home: %w", err)
	}
	c.homeDir = home

	cmd := exec.CommandContext(ctx, c.bin, "--batch", "--homedir", c.homeDir, "--import")
	cmd.Stdin = strings.NewReader(ExpandEscapes(c.keyArmor))
	cmd.Env = scrubbedEnv()

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("gpg import failed: %w\n%s", err, strings.TrimSpace(string(out)))
	}

	c.imported = true
	return nil
}

// SignDetached produces an armored detached signature next to the
// artifact and returns the signature path.
func (c *GPGClient) SignDetached(ctx context.Context, path string) (string, error) {
	if !c.imported {
		return "", fmt.Errorf("signing key not imported")
	}

	sigPath := path + ".asc"
	cmd := exec.CommandContext(ctx, c.bin,
		"--batch", "--yes",
		"--homedir", c.homeDir,
		"--pinentry-mode", "loopback",
		"--passphrase-fd", "0",
		"--armor",
		"--output", sigPath,
		"--detach-sign", path,
	)
	cmd.Stdin = strings.NewReader(c.passphrase)
	cmd.Env = scrubbedEnv()

	out, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(sigPath)
		return "", fmt.Errorf("gpg sign %s failed: %w\n%s", filepath.Base(path), err, strings.TrimSpace(string(out)))
	}

	return sigPath, nil
}

// SignAll imports the key if needed and signs every file in dir in sorted
// order. Signature files themselves are skipped, so re-running signs
// nothing twice. Artifacts are never modified, only .asc files appear.
func (c *GPGClient) SignAll(ctx context.Context, dir string) ([]string, error) {
	if !c.imported {
		if err := c.ImportKey(ctx); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read artifact dir: %w", err)
	}

	var targets []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".asc") {
			continue
		}
		targets = append(targets, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(targets)

	var sigs []string
	for _, target := range targets {
		sig, err := c.SignDetached(ctx, target)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}

	return sigs, nil
}

// Cleanup removes the ephemeral GnuPG home. Safe to call when nothing was
// imported.
func (c *GPGClient) Cleanup() {
	if c.homeDir != "" {
		os.RemoveAll(c.homeDir)
	}
}

func scrubbedEnv() []string {
	return []string{
		"HOME=" + os.Getenv("HOME"),
		"PATH=" + os.Getenv("PATH"),
		"USER=" + os.Getenv("USER"),
		"LANG=" + os.Getenv("LANG"),
	}
}
