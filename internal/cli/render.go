package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	inputFlags
	output  string   // output file (single format) or base path (multiple)
	formats []string // svg, png, pdf, json
	index   float64  // fractional timeline index
	scale   float64  // PNG scale factor
	locale  string   // BCP 47 tag for counter digit grouping
	embed   bool     // inline images as data URIs
	refresh bool     // bypass cached artifacts
}

// renderCommand creates the render command for a single frame.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render <dataset>",
		Short: "Render one frame of a race",
		Long: `Render composes the frame at a fractional timeline index and writes it as
SVG, PNG, PDF or JSON. Index 2.5 is halfway between the third and fourth step.

PNG and PDF output require rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.inputFlags.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().Float64VarP(&opts.index, "index", "i", 0, "fractional timeline index")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "locale for counter digit grouping (default en)")
	cmd.Flags().BoolVar(&opts.embed, "embed", false, "embed images as data URIs")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

func (o *renderOpts) pipelineOptions(input string) pipeline.Options {
	opts := o.inputFlags.options(input)
	opts.Index = o.index
	opts.Formats = o.formats
	opts.Scale = o.scale
	opts.Locale = o.locale
	opts.Embed = o.embed
	opts.Refresh = o.refresh
	return opts
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s at %g...", filepath.Base(input), opts.index))
	spinner.Start()
	result, err := runner.Execute(ctx, opts.pipelineOptions(input))
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, input)
	if err != nil {
		return err
	}

	printSuccess("Rendered frame %s", StyleNumber.Render(fmt.Sprintf("%g", opts.index)))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Entities, result.Stats.Steps, result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each format's bytes and returns the paths in format
// order. A single format goes to output as given; several formats share
// output's base path with one extension each.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return nil, fmt.Errorf("no %s artifact rendered", f)
		}
		path := base + "." + f
		if len(formats) == 1 && output != "" {
			path = output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
