package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/pipeline"
	"github.com/matzehuels/barrace/pkg/render/race"
	"github.com/matzehuels/barrace/pkg/timeline"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var in inputFlags
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate <dataset>",
		Short: "Check a dataset and settings without rendering",
		Long: `Validate loads a dataset (CSV or JSON) and optional settings (TOML or JSON),
runs every validation the renderer would, and prints a summary: frame size,
timeline length and each entity's value at the first and last step.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := in.options(args[0])
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			inputs, err := pipeline.Load(opts)
			if err != nil {
				return err
			}
			if quiet {
				return nil
			}
			printValidation(inputs)
			return nil
		},
	}

	in.bind(cmd)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing, only set the exit status")

	return cmd
}

func printValidation(in *pipeline.Inputs) {
	ds, s := in.Dataset, in.Settings
	w, h := s.FrameSize()
	opts := timeline.FromSettings(s.Timeline, ds.Len())

	printSuccess("Valid race")
	printKeyValue("Frame", fmt.Sprintf("%dx%d (%s)", w, h, s.AspectRatio))
	printKeyValue("Steps", strconv.Itoa(ds.Len()))
	printKeyValue("Duration", opts.Duration.String())
	if opts.Loop {
		printKeyValue("Loop", fmt.Sprintf("hold %s, then %s", opts.LoopDelayAfter, opts.LoopDelayBefore))
	} else {
		printKeyValue("Loop", "off")
	}
	printKeyValue("Hash", in.Hash[:12])
	printNewline()
	fmt.Println(entityTable(in))
}

// entityTable lists every entity with its values at the first and last step.
func entityTable(in *pipeline.Inputs) string {
	ds := in.Dataset
	p := race.NewPrinter(race.DefaultLocale)
	first, last := ds.StepLabel(0), ds.StepLabel(ds.Len()-1)
	if first == "" {
		first = "first"
	}
	if last == "" {
		last = "last"
	}

	rows := make([][]string, 0, len(ds.Entities))
	for i := range ds.Entities {
		e := &ds.Entities[i]
		rows = append(rows, []string{
			e.Label,
			race.FormatCounter(p, e.ValueAt(0)),
			race.FormatCounter(p, e.ValueAt(ds.Len()-1)),
		})
	}
	return renderTable([]string{"Entity", first, last}, rows)
}
