// Package cli implements the atakama-pkg command line: packaging, signing
// and verifying plugin packages, plus an interactive project scaffold.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the atakama-pkg command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "atakama-pkg",
		Short: "Atakama plugin packaging helper",
		Long: `atakama-pkg builds, signs and verifies Atakama plugin packages.

An Atakama plugin package (.apkg) is a zip holding an installable plugin
bundle and an RSA signature over it, alongside the signer's certificate
proving authority. It is installed by unpacking the bundle into the host's
plugins folder after both the certificate and the signature check out.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(newPackCommand())
	rootCmd.AddCommand(newUnpackCommand())
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newInitCommand())

	return rootCmd
}
