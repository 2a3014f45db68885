package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"atakama.com/sdk/packager"
)

// PackFlags holds command-line flags for the pack command.
type PackFlags struct {
	Src        string
	Pkg        string
	Key        string
	Crt        string
	SelfSigned bool
}

func newPackCommand() *cobra.Command {
	flags := &PackFlags{}

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build and sign a plugin package",
		Long: `Build an .apkg from a plugin source directory or a prebuilt bundle.

Examples:
  atakama-pkg pack --src ./my-detector --key key.pem --crt crt.pem
  atakama-pkg pack --pkg dist/my-detector.zip --key key.pem --crt crt.pem
  atakama-pkg pack --src ./my-detector --key key.pem --crt crt.pem --self-signed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &packager.Packager{
				Src:        flags.Src,
				Pkg:        flags.Pkg,
				Key:        flags.Key,
				Crt:        flags.Crt,
				SelfSigned: flags.SelfSigned,
			}
			out, err := p.Pack()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("wrote package %s", out)))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Src, "src", "", "Plugin source root folder")
	cmd.Flags().StringVar(&flags.Pkg, "pkg", "", "Prebuilt bundle file path")
	cmd.Flags().StringVar(&flags.Key, "key", "", "PEM private key file")
	cmd.Flags().StringVar(&flags.Crt, "crt", "", "PEM certificate file")
	cmd.Flags().BoolVar(&flags.SelfSigned, "self-signed", false, "Allow a self-signed certificate")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("crt")

	return cmd
}
