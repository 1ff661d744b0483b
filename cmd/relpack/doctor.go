package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ZebulonRouseFrantzich/relpack/internal/fpm"
	"github.com/ZebulonRouseFrantzich/relpack/internal/git"
	"github.com/ZebulonRouseFrantzich/relpack/internal/platform"
	"github.com/ZebulonRouseFrantzich/relpack/internal/release"
	"github.com/ZebulonRouseFrantzich/relpack/internal/signing"
)

// runDoctor handles the `relpack doctor` subcommand
func runDoctor(args []string) error {
	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			fmt.Println("Usage: relpack doctor")
			fmt.Println()
			fmt.Println("Reports the host platform, the availability of the external")
			fmt.Println("packaging and signing tools, and the git state of the source")
			fmt.Println("tree. Informational only; always exits zero.")
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect host platform: %w", err)
	}

	fmt.Printf("host: %s/%s", info.OS, info.Arch)
	if info.Platform != "" {
		fmt.Printf(" (%s %s, %s family)", info.Platform, info.Version, info.Family)
	}
	fmt.Println()

	if err := fpm.NewClient().Available(); err != nil {
		fmt.Println("fpm: missing (linux package builds will fail)")
	} else {
		fmt.Println("fpm: found")
	}

	if err := signing.NewGPGClient("", "").Available(); err != nil {
		fmt.Println("gpg: missing (release signing will fail)")
	} else {
		fmt.Println("gpg: found")
	}

	sourceDir := release.DefaultSourceDir
	if v, ok := os.LookupEnv(release.EnvSourceDir); ok && v != "" {
		sourceDir = v
	}
	guard := git.NewClient(sourceDir)
	if ok, err := guard.IsRepo(ctx); err == nil && ok {
		if head, err := guard.HeadCommit(ctx); err == nil {
			fmt.Printf("source: git repository at %s, HEAD %s\n", sourceDir, head[:12])
		} else {
			fmt.Printf("source: git repository at %s, HEAD unresolved\n", sourceDir)
		}
	} else {
		fmt.Printf("source: %s (not a git repository, release guard will skip)\n", sourceDir)
	}

	return nil
}
