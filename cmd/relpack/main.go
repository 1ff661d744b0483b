package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	// Handle subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("relpack %s\n", Version)
			fmt.Println("Release packaging pipeline")
			return
		case "run":
			// Handle relpack run subcommand
			if err := runRun(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "verify":
			// Handle relpack verify subcommand
			if err := runVerify(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "doctor":
			// Handle relpack doctor subcommand
			if err := runDoctor(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// Default: show help
	fmt.Println("relpack - Release packaging pipeline")
	fmt.Println()
	fmt.Println("Assembles prebuilt binaries into platform archives, builds Linux")
	fmt.Println("distribution packages, and signs release artifacts.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  relpack --version            Show version information")
	fmt.Println("  relpack run [options]        Run the packaging pipeline")
	fmt.Println("  relpack verify [options]     Verify artifact signatures and checksums")
	fmt.Println("  relpack doctor               Check the packaging environment")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  VERSION, PLAT, ARCH          Required build context")
	fmt.Println("  RELEASE                      Set for release builds (validates and signs)")
	fmt.Println("  GPG_PRIVATE_KEY, PASSPHRASE  Signing material (release builds)")
	fmt.Println("  RELPACK_SOURCE               Source tree root (default .)")
	fmt.Println("  RELPACK_ARTIFACTS            Artifact directory (default /artifacts)")
	fmt.Println("  RELPACK_MANIFEST             Lua package manifest (default built-in)")
}
