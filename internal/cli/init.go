package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// InitFlags holds command-line flags for the init command.
type InitFlags struct {
	Name string
	Kind string
	Dir  string
}

func newInitCommand() *cobra.Command {
	flags := &InitFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new detector plugin project",
		Long: `Create a new detector plugin project: a manifest and a detector stub.

Run without flags for the interactive wizard, or pass --name and --type to
scaffold directly:

  atakama-pkg init
  atakama-pkg init --name pdf-detector --type name-match`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.Name != "" {
				kind, err := parseKind(flags.Kind)
				if err != nil {
					return err
				}
				if err := scaffold(flags.Dir, flags.Name, kind); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(),
					successStyle.Render(fmt.Sprintf("created %s/%s", flags.Dir, flags.Name)))
				return nil
			}
			return runWizard(flags.Dir)
		},
	}

	cmd.Flags().StringVar(&flags.Name, "name", "", "Plugin name (skips the wizard)")
	cmd.Flags().StringVar(&flags.Kind, "type", string(kindNameMatch),
		"Detector flavor: name-match, subprocess or http")
	cmd.Flags().StringVar(&flags.Dir, "dir", ".", "Parent directory for the project")

	return cmd
}

func parseKind(s string) (detectorKind, error) {
	for _, k := range allKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown detector type %q (want name-match, subprocess or http)", s)
}

// runWizard drives the interactive scaffold.
func runWizard(dir string) error {
	model := newWizardModel(dir)

	program := tea.NewProgram(model)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	m := final.(wizardModel)
	if m.aborted {
		return fmt.Errorf("aborted")
	}
	return m.err
}
