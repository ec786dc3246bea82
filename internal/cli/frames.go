package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/pipeline"
	"github.com/matzehuels/barrace/pkg/timeline"
)

const (
	// manifestName is the plan written next to an exported frame sequence.
	manifestName = "plan.json"
	framePattern = "frame_%05d.%s"
)

type framesOpts struct {
	renderOpts
	dir string
	fps int
}

// manifest describes an exported sequence so it can be encoded to video with
// a constant frame rate.
type manifest struct {
	FPS     int             `json:"fps"`
	Formats []string        `json:"formats"`
	Hash    string          `json:"hash"`
	Frames  []manifestFrame `json:"frames"`
}

type manifestFrame struct {
	File  string         `json:"file"`
	AtMs  int64          `json:"atMs"`
	Index float64        `json:"index"`
	State timeline.State `json:"state"`
}

// framesCommand creates the frames command, which exports a whole timeline
// pass as numbered frame files.
func (c *CLI) framesCommand() *cobra.Command {
	var formatsStr string
	opts := framesOpts{
		renderOpts: renderOpts{scale: pipeline.DefaultScale},
		dir:        "frames",
		fps:        pipeline.DefaultFPS,
	}

	cmd := &cobra.Command{
		Use:   "frames <dataset>",
		Short: "Export every frame of one timeline pass",
		Long: `Frames samples one pass of the timeline at a fixed frame rate and renders
each sample to a numbered file (frame_00000.svg, ...). With loop enabled the
pass includes the holds at both ends, so the sequence loops seamlessly.

A plan.json manifest lists every file with its time, index and playback state.
Encode the result with, for example:

  ffmpeg -framerate 30 -i frames/frame_%05d.png race.mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runFrames(cmd.Context(), args[0], &opts)
		},
	}

	opts.inputFlags.bind(cmd)
	cmd.Flags().StringVarP(&opts.dir, "output", "o", opts.dir, "output directory")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().IntVar(&opts.fps, "fps", opts.fps, "frames per second")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "locale for counter digit grouping (default en)")
	cmd.Flags().BoolVar(&opts.embed, "embed", false, "embed images as data URIs")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")

	return cmd
}

func (c *CLI) runFrames(ctx context.Context, input string, opts *framesOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := opts.pipelineOptions(input)
	popts.FPS = opts.fps
	in, err := runner.Load(ctx, popts)
	if err != nil {
		return err
	}
	plan, hit, err := runner.PlanWithCacheInfo(ctx, in, opts.fps)
	if err != nil {
		return err
	}
	logger.Debug("planned sequence", "frames", len(plan), "cached", hit)

	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return err
	}

	var written atomic.Int64
	total := len(plan)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d frames...", total))
	spinner.Start()
	err = runner.RenderSequence(ctx, in, popts, timeline.Indices(plan), func(i int, artifacts map[string][]byte) error {
		for _, f := range opts.formats {
			path := filepath.Join(opts.dir, fmt.Sprintf(framePattern, i, f))
			if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		n := written.Add(1)
		spinner.SetMessage(fmt.Sprintf("Rendered %d/%d frames...", n, total))
		return nil
	})
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	m := newManifest(plan, opts.fps, opts.formats, in.Hash)
	manifestPath := filepath.Join(opts.dir, manifestName)
	if err := writeManifest(manifestPath, m); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Rendered %d frames", total))
	printSuccess("Exported %s frames at %d fps", StyleNumber.Render(fmt.Sprint(total)), opts.fps)
	printFile(filepath.Join(opts.dir, "frame_*."+strings.Join(opts.formats, "|")))
	printFile(manifestPath)
	printStats(len(in.Dataset.Entities), in.Dataset.Len(), false)
	if len(opts.formats) == 1 && opts.formats[0] == pipeline.FormatPNG {
		printNextStep("Encode video", fmt.Sprintf("ffmpeg -framerate %d -i %s %s", opts.fps,
			filepath.Join(opts.dir, "frame_%05d.png"), "race.mp4"))
	}
	return nil
}

func newManifest(plan []timeline.Frame, fps int, formats []string, hash string) manifest {
	m := manifest{FPS: fps, Formats: formats, Hash: hash, Frames: make([]manifestFrame, len(plan))}
	for i, f := range plan {
		m.Frames[i] = manifestFrame{
			File:  fmt.Sprintf(framePattern, i, formats[0]),
			AtMs:  f.At.Milliseconds(),
			Index: f.Index,
			State: f.State,
		}
	}
	return m
}

func writeManifest(path string, m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
