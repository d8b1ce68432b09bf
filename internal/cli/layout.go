package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lifeline/pkg/diagram"
	"github.com/matzehuels/lifeline/pkg/pipeline"
)

// layoutFlags are shared by every command that computes a layout.
type layoutFlags struct {
	configPath string
	trace      bool
	noCache    bool
	refresh    bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "layout config file (TOML); see 'lifeline config'")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "record the per-event layout trace")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and recompute")
}

// options returns pipeline options with the config loaded.
func (f *layoutFlags) options() (pipeline.Options, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{Config: cfg, Trace: f.trace, Refresh: f.refresh}, nil
}

// layoutCommand creates the layout command for computing diagram layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [document.json]",
		Short: "Compute the layout of a sequence document",
		Long: `Compute the layout of a sequence document.

The layout command reads a JSON event document and writes the computed
geometry to a layout.json file that 'visualize' can render without the
source document. Use --trace to include the accumulator state after each
event (see also 'inspect').

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the document, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	spinner := newSpinner(ctx, "Parsing "+filepath.Base(input)+"...")
	spinner.Start()

	d, err := runner.Parse(ctx, input, data)
	if err != nil {
		spinner.StopWithError("Invalid document")
		return fmt.Errorf("%s: %w", input, err)
	}

	spinner.SetMessage("Computing layout...")
	l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("%s: %w", input, err)
	}
	if spinner.Cancelled() {
		spinner.Stop()
		return ctx.Err()
	}
	spinner.StopWithSuccess("Layout complete")

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := diagram.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printFile(outputPath)
	printStats(len(d.ActorOrder()), len(d.Events), l.Extent.Width, l.Extent.Height, cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
