package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/pipeline"
)

// inputFlags are the flags naming a race's inputs. The dataset itself is the
// command's positional argument.
type inputFlags struct {
	settings   string
	emptyCells string
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.settings, "settings", "s", "", "settings file (.toml or .json); defaults apply when omitted")
	cmd.Flags().StringVar(&f.emptyCells, "empty-cells", "", "empty cell handling: interpolate, zero (overrides settings)")
}

// options returns pipeline options for the dataset at path.
func (f *inputFlags) options(path string) pipeline.Options {
	return pipeline.Options{
		DatasetPath:  path,
		SettingsPath: f.settings,
		EmptyCells:   dataset.EmptyCellHandling(f.emptyCells),
	}
}
