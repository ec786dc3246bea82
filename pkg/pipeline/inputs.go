package pipeline

import (
	"bytes"
	"path/filepath"

	"github.com/matzehuels/barrace/pkg/cache"
	"github.com/matzehuels/barrace/pkg/dataset"
	"github.com/matzehuels/barrace/pkg/render/race"
	"github.com/matzehuels/barrace/pkg/settings"
)

// Inputs are the loaded, validated inputs of a race.
type Inputs struct {
	Dataset  *dataset.Dataset
	Settings *settings.Settings

	// Hash identifies dataset and settings together; it prefixes every
	// frame cache key.
	Hash string

	// BaseDir resolves relative image paths. It is the dataset's directory,
	// or empty for inline datasets.
	BaseDir string

	composer *race.Composer
}

// Load reads the settings and dataset named by opts. Settings are read first
// because their emptyCellHandling decides how the dataset's blanks are filled.
// Inline Dataset and Settings take precedence over paths.
func Load(opts Options) (*Inputs, error) {
	s := opts.Settings
	if s == nil {
		var err error
		if s, err = settings.Load(opts.SettingsPath); err != nil {
			return nil, err
		}
	}

	ds := opts.Dataset
	var base string
	if ds == nil {
		h := opts.EmptyCells
		if h == "" {
			h = s.Values.EmptyCellHandling
		}
		var err error
		if ds, err = dataset.Load(opts.DatasetPath, h); err != nil {
			return nil, err
		}
		base = filepath.Dir(opts.DatasetPath)
	}
	return NewInputs(ds, s, base)
}

// NewInputs validates ds and s and hashes them.
func NewInputs(ds *dataset.Dataset, s *settings.Settings, base string) (*Inputs, error) {
	c, err := race.NewComposer(ds, s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dataset.WriteJSON(&buf, ds); err != nil {
		return nil, err
	}
	return &Inputs{
		Dataset:  ds,
		Settings: s,
		Hash:     cache.HashInputs(buf.Bytes(), s.Bytes()),
		BaseDir:  base,
		composer: c,
	}, nil
}

// Composer returns the frame composer for the inputs.
func (in *Inputs) Composer() *race.Composer { return in.composer }
