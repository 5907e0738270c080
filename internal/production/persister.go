// Package production provides production integrations: config loading,
// change publishing, state dump persistence and visualization.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/boundsx"
)

// ErrInvalidName is returned for a dump name that is not a plain file name.
var ErrInvalidName = errors.New("invalid dump name")

// JSONPersister is a file-based store for engine dumps using JSON serialization.
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(ctx context.Context, name string, state boundsx.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return writeDump(ctx, p.dir, name, ".json", data)
}

func (p *JSONPersister) Load(ctx context.Context, name string) (boundsx.State, error) {
	data, err := readDump(ctx, p.dir, name, ".json")
	if err != nil {
		return boundsx.State{}, err
	}
	var state boundsx.State
	if err := json.Unmarshal(data, &state); err != nil {
		return boundsx.State{}, fmt.Errorf("json unmarshal: %w", err)
	}
	return state, nil
}

// YAMLPersister is a file-based store for engine dumps using YAML serialization.
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, name string, state boundsx.State) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	return writeDump(ctx, p.dir, name, ".yaml", data)
}

func (p *YAMLPersister) Load(ctx context.Context, name string) (boundsx.State, error) {
	data, err := readDump(ctx, p.dir, name, ".yaml")
	if err != nil {
		return boundsx.State{}, err
	}
	var state boundsx.State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return boundsx.State{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return state, nil
}

// LoadDumpFile reads a dump written by either persister, picking the
// decoder by extension.
func LoadDumpFile(path string) (boundsx.State, error) {
	f, err := FormatOf(path)
	if err != nil {
		return boundsx.State{}, err
	}
	if f == FormatTOML {
		return boundsx.State{}, fmt.Errorf("dump %s: %w", path, ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return boundsx.State{}, fmt.Errorf("read %s: %w", path, err)
	}
	var state boundsx.State
	if err := Decode(f, data, &state); err != nil {
		return boundsx.State{}, err
	}
	return state, nil
}

func dumpPath(dir, name, ext string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return filepath.Join(dir, name+ext), nil
}

func writeDump(ctx context.Context, dir, name, ext string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn, err := dumpPath(dir, name, ext)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func readDump(ctx context.Context, dir, name, ext string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fn, err := dumpPath(dir, name, ext)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("dump %q: %w", name, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	return data, nil
}
