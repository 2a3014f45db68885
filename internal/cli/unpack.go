package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"atakama.com/sdk/packager"
)

// UnpackFlags holds command-line flags for the unpack command.
type UnpackFlags struct {
	Dest       string
	SelfSigned bool
}

func newUnpackCommand() *cobra.Command {
	flags := &UnpackFlags{}

	cmd := &cobra.Command{
		Use:   "unpack <package.apkg>",
		Short: "Verify a plugin package and extract it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := packager.Unpack(args[0], flags.Dest, flags.SelfSigned); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				successStyle.Render(fmt.Sprintf("unpacked %s into %s", args[0], flags.Dest)))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Dest, "dest", "plugins", "Destination plugins folder")
	cmd.Flags().BoolVar(&flags.SelfSigned, "self-signed", false, "Allow a self-signed certificate")

	return cmd
}

func newVerifyCommand() *cobra.Command {
	var selfSigned bool

	cmd := &cobra.Command{
		Use:   "verify <package.apkg>",
		Short: "Verify a plugin package without installing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := packager.Verify(args[0], selfSigned); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("verification failed"))
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("%s verifies", args[0])))
			return nil
		},
	}

	cmd.Flags().BoolVar(&selfSigned, "self-signed", false, "Allow a self-signed certificate")

	return cmd
}
