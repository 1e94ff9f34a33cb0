package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/vidtree/pkg/errors"
)

// Format identifies a catalogue encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"unsupported catalogue extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Read decodes a catalogue from r, normalizes its paths and validates it.
// Read does not close r.
func Read(r io.Reader, format Format) (*Catalog, error) {
	var c Catalog
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported catalogue format %q", format)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.normalize()
	if c.Videos == nil {
		c.Videos = []Video{}
	}
	return &c, nil
}

// ReadFile reads the catalogue at path; the format follows the extension.
func ReadFile(path string) (*Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalogue %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	c, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
