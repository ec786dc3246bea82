package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/render/nodelink"
	"github.com/matzehuels/barrace/pkg/settings"
	"github.com/matzehuels/barrace/pkg/timeline"
)

const formatDOT = "dot"

type graphOpts struct {
	output   string
	format   string
	settings string
	loop     bool
	current  string
	scale    float64
}

// timelineGraphCommand creates the timeline-graph command, which draws the
// playback state machine.
func (c *CLI) timelineGraphCommand() *cobra.Command {
	opts := graphOpts{format: "svg", loop: true, scale: 1}

	cmd := &cobra.Command{
		Use:   "timeline-graph",
		Short: "Draw the timeline's playback state machine",
		Long: `Timeline-graph renders the states a race's playback moves through (stopped,
playing and the loop holds) and the events between them, using Graphviz.
With --settings the loop flag is taken from the settings file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.settings != "" {
				s, err := settings.Load(opts.settings)
				if err != nil {
					return err
				}
				opts.loop = s.Timeline.Loop
			}
			data, err := renderTimelineGraph(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.output, err)
			}
			printSuccess("Rendered timeline graph")
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, png, pdf, dot")
	cmd.Flags().StringVarP(&opts.settings, "settings", "s", "", "settings file to take the loop flag from")
	cmd.Flags().BoolVar(&opts.loop, "loop", opts.loop, "include the loop hold states")
	cmd.Flags().StringVar(&opts.current, "highlight", "", "state to highlight: stopped, playing, waiting-loop-end, waiting-loop-start")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

func renderTimelineGraph(ctx context.Context, opts graphOpts) ([]byte, error) {
	nopts := nodelink.Options{Loop: opts.loop}
	if opts.current != "" {
		s, err := parseState(opts.current)
		if err != nil {
			return nil, err
		}
		nopts.Current = &s
	}
	dot := nodelink.ToDOT(nopts)

	switch strings.ToLower(opts.format) {
	case formatDOT:
		return []byte(dot), nil
	case "svg":
		return nodelink.RenderSVG(ctx, dot)
	case "png":
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	case "pdf":
		return nodelink.RenderPDF(ctx, dot)
	}
	return nil, fmt.Errorf("invalid format: %s (must be 'svg', 'png', 'pdf', or 'dot')", opts.format)
}

func parseState(name string) (timeline.State, error) {
	for _, s := range timeline.States(true) {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}
