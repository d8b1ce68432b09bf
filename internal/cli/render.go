package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lifeline/pkg/errors"
	"github.com/matzehuels/lifeline/pkg/pipeline"
)

// formatExt is the file suffix written for each format. The draw list gets
// its own suffix so it never overwrites the JSON input document.
var formatExt = map[string]string{
	pipeline.FormatSVG:      ".svg",
	pipeline.FormatJSON:     ".draw.json",
	pipeline.FormatDOT:      ".dot",
	pipeline.FormatOverview: ".overview.svg",
}

// renderCommand creates the render command (document → artifacts).
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lflags   layoutFlags
		rflags   renderFlags
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render [document.json]",
		Short: "Render a sequence document to SVG, JSON or an overview",
		Long: `Render a sequence document in one step.

Formats:
  svg       the sequence diagram (default)
  json      flat draw list with coordinates for other renderers
  dot       participant overview as Graphviz DOT
  overview  participant overview rendered to SVG

Pass "-" as the output to write a single format to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := lflags.options()
			if err != nil {
				return err
			}
			if err := rflags.apply(&opts); err != nil {
				return err
			}
			opts.Detailed = detailed
			return c.runRender(cmd.Context(), args[0], opts, output, lflags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label overview edges with message texts")
	lflags.register(cmd)
	rflags.register(cmd, "output format(s): svg (default), json, dot, overview (comma-separated)")

	return cmd
}

// runRender runs the full pipeline and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
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

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, input, data, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("%s: %w", input, err)
	}
	spinner.Stop()
	prog.done("rendered", "file", input)

	if output == "-" {
		if len(opts.Formats) != 1 {
			return errors.New(errors.ErrCodeInvalidInput, "stdout output needs exactly one format, got %d", len(opts.Formats))
		}
		_, err := stdout.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}
	printStats(result.Stats.ActorCount, result.Stats.EventCount,
		result.Layout.Extent.Width, result.Layout.Extent.Height, result.CacheInfo.LayoutHit)
	return nil
}

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes each format next to the input (or at output).
// With a single format, output names the file itself.
func writeArtifacts(p artifactWriteParams) error {
	paths := artifactPaths(p.formats, p.input, p.output)
	for _, format := range p.formats {
		path := paths[format]
		if err := writeOutput(path, p.artifacts[format]); err != nil {
			return err
		}
	}

	status := "Rendered"
	if p.cacheHit {
		status = "Rendered (cached)"
	}
	printSuccess("%s", status)
	for _, format := range p.formats {
		printFile(paths[format])
	}
	return nil
}

// artifactPaths maps each format to its output file.
func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + formatExt[f]
	}
	return paths
}

// basePath derives the base output path. If output is empty it strips the
// extension (and any .layout suffix) from input; otherwise it strips a known
// format extension from output.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	// Longest first, so ".overview.svg" wins over ".svg".
	for _, ext := range []string{".overview.svg", ".draw.json", ".svg", ".dot", ".json"} {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// writeOutput validates path and writes data to it.
func writeOutput(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
