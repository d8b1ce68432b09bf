package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command for browsing the layout trace.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags layoutFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [document.json]",
		Short: "Step through how each event moved the layout",
		Long: `Step through how each event moved the layout.

Shows one row per event with the vertical cursor after it and the number of
open sections and activations. Useful for finding the event that makes a
diagram grow unexpectedly. Use --plain to print the table without the
interactive viewer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts.Trace = true
			opts.Logger = c.Logger

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			ctx := cmd.Context()
			d, err := runner.Parse(ctx, args[0], data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			l, err := runner.ComputeLayout(ctx, d, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			m := NewTraceModel(d, l)
			if plain {
				m.Height = len(m.Steps)
				fmt.Fprintln(stdout, m.View())
				return nil
			}
			return runTUI(ctx, m)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the trace table instead of opening the viewer")
	flags.register(cmd)
	cmd.Flags().Lookup("trace").Hidden = true

	return cmd
}

// runTUI runs a bubbletea program until the user quits or ctx is done.
func runTUI(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
