package production

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/comalice/boundsx"
)

// ErrUnsupportedFormat is returned for a file extension no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format is a serialization format chosen by file extension.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf maps a path's extension to a Format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// Decode unmarshals data in format f into v.
func Decode(f Format, data []byte, v any) error {
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	case FormatTOML:
		err = toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%q: %w", f, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("%s unmarshal: %w", f, err)
	}
	return nil
}

// LoadConfig reads an engine config from a JSON, YAML or TOML file. Missing
// fields take defaults and the result is validated.
func LoadConfig(path string) (boundsx.Config, error) {
	f, err := FormatOf(path)
	if err != nil {
		return boundsx.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return boundsx.Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseConfig(f, data)
}

// ParseConfig decodes and validates a config document.
func ParseConfig(f Format, data []byte) (boundsx.Config, error) {
	var cfg boundsx.Config
	if err := Decode(f, data, &cfg); err != nil {
		return boundsx.Config{}, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return boundsx.Config{}, err
	}
	return cfg, nil
}
