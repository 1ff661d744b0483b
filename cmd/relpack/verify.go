package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZebulonRouseFrantzich/relpack/internal/release"
	"github.com/ZebulonRouseFrantzich/relpack/internal/signing"
)

// runVerify handles the `relpack verify` subcommand
func runVerify(args []string) error {
	showHelp := false
	keyringPath := ""
	dir := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			showHelp = true
		case "--keyring", "-k":
			if i+1 >= len(args) {
				return fmt.Errorf("--keyring requires a path")
			}
			i++
			keyringPath = args[i]
		default:
			if len(args[i]) > 0 && args[i][0] != '-' && dir == "" {
				dir = args[i]
			} else {
				return fmt.Errorf("unknown option: %s\nRun 'relpack verify --help' for usage", args[i])
			}
		}
	}

	if showHelp {
		printVerifyHelp()
		return nil
	}

	if keyringPath == "" {
		return fmt.Errorf("a public keyring is required; pass --keyring <path>")
	}
	if dir == "" {
		if v, ok := os.LookupEnv(release.EnvArtifactDir); ok && v != "" {
			dir = v
		} else {
			dir = release.DefaultArtifactDir
		}
	}

	// Checksum manifests are covered by signatures, but check their
	// contents too so a stale manifest is caught even when re-signed.
	manifests, err := filepath.Glob(filepath.Join(dir, "*.sha256"))
	if err != nil {
		return fmt.Errorf("glob checksum manifests: %w", err)
	}
	for _, m := range manifests {
		if err := signing.VerifyChecksums(m); err != nil {
			return err
		}
		fmt.Printf("checksums OK: %s\n", filepath.Base(m))
	}

	count, err := signing.NewVerifier(keyringPath).VerifyDir(dir)
	if err != nil {
		return err
	}

	fmt.Printf("signatures OK: %d artifact(s) in %s\n", count, dir)
	return nil
}

func printVerifyHelp() {
	fmt.Println("Usage: relpack verify --keyring <public-key> [artifact-dir]")
	fmt.Println()
	fmt.Println("Verifies the detached .asc signature of every artifact in the")
	fmt.Println("artifact directory against the given public keyring, and checks")
	fmt.Println("any checksum manifest found there. The directory defaults to")
	fmt.Println("RELPACK_ARTIFACTS, then /artifacts.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --keyring, -k <path>   Armored or binary public keyring")
	fmt.Println("  --help, -h             Show this help")
}
