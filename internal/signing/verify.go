package signing

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// Verifier checks detached artifact signatures against a public keyring.
type Verifier struct {
	keyringPath string
}

// NewVerifier creates a verifier for the given public keyring file,
// armored or binary.
func NewVerifier(keyringPath string) *Verifier {
	return &Verifier{keyringPath: keyringPath}
}

// VerifyDetached checks one artifact against its detached signature.
func (v *Verifier) VerifyDetached(artifactPath, sigPath string) error {
	keyring, err := v.loadKeyring()
	if err != nil {
		return err
	}

	artifact, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer artifact.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	// Try armored first, then binary.
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, artifact, sig, nil)
	if err != nil {
		artifact.Seek(0, io.SeekStart)
		sig.Seek(0, io.SeekStart)
		_, err = openpgp.CheckDetachedSignature(keyring, artifact, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("verify %s: %w", filepath.Base(artifactPath), err)
	}

	return nil
}

// VerifyDir checks that every artifact in dir has a valid detached
// signature. Files ending in .asc are the signatures themselves. Returns
// the number of verified artifacts; the first failure aborts.
func (v *Verifier) VerifyDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read artifact dir: %w", err)
	}

	var artifacts []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".asc") {
			continue
		}
		artifacts = append(artifacts, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(artifacts)

	if len(artifacts) == 0 {
		return 0, fmt.Errorf("no artifacts in %s", dir)
	}

	for _, artifact := range artifacts {
		sigPath := artifact + ".asc"
		if _, err := os.Stat(sigPath); err != nil {
			return 0, fmt.Errorf("missing signature for %s", filepath.Base(artifact))
		}
		if err := v.VerifyDetached(artifact, sigPath); err != nil {
			return 0, err
		}
	}

	return len(artifacts), nil
}

// loadKeyring loads the public keyring, armored or binary.
func (v *Verifier) loadKeyring() (openpgp.EntityList, error) {
	f, err := os.Open(v.keyringPath)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		f.Seek(0, io.SeekStart)
		keyring, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}
