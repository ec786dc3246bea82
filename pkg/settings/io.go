package settings

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/barrace/pkg/errors"
)

// Format is a settings file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"unsupported settings extension %q (want .toml or .json)", filepath.Ext(path))
	}
}

// Load reads and validates a settings file. Keys missing from the file keep
// their [Default] values. An empty path returns the defaults.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "settings %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Decode(bytes.NewReader(data), format)
}

// Decode reads settings in the given format over the defaults and validates
// the result. Unknown keys are rejected.
func Decode(r io.Reader, format Format) (*Settings, error) {
	s := Default()
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown settings key %q", undecoded[0].String())
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown settings format %q", format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode writes settings as TOML.
func Encode(w io.Writer, s *Settings) error {
	return toml.NewEncoder(w).Encode(s)
}

// EncodeJSON writes settings as indented JSON.
func EncodeJSON(w io.Writer, s *Settings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Bytes returns the canonical JSON encoding, used as cache key input.
func (s *Settings) Bytes() []byte {
	data, _ := json.Marshal(s)
	return data
}
