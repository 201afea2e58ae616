package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a catalogue report file and builds a KnotSet from it.
//
// Files ending in .yaml or .yml are read as YAML; everything else is read as JSON.
func Load(pathname string, opts Opts) (*KnotSet, error) {
	report, err := LoadReport(pathname)
	if err != nil {
		return nil, err
	}
	cat, err := New(report, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "catalogue %q", pathname)
	}
	return cat, nil
}

// LoadReport reads and parses a catalogue report file.
func LoadReport(pathname string) (*Report, error) {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	switch strings.ToLower(filepath.Ext(pathname)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, report)
	default:
		err = json.Unmarshal(buf, report)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", pathname)
	}
	return report, nil
}
