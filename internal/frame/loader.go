package frame

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options tune individual loaders.
type Options struct {
	// Sheet selects a worksheet by name for spreadsheet formats; empty means the first.
	Sheet string
	// Python is the interpreter used for formats only Python can read (pickle).
	Python string
}

// Loader reads one family of file formats.
type Loader interface {
	Formats() []string
	Load(ctx context.Context, path string, opt Options) (*Frame, error)
}

// ErrUnsupported indicates no loader is registered for a format.
var ErrUnsupported = errors.New("unsupported data format")

// supported is the advertised format list, in display order.
var supported = []string{"csv", "xlsx", "xls", "json", "parquet", "feather", "pickle", "pkl"}

var registry = map[string]Loader{}

// Register adds a loader for each of its formats.
func Register(l Loader) {
	for _, f := range l.Formats() {
		registry[f] = l
	}
}

// SupportedFormats lists the format tags accepted by Load.
func SupportedFormats() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

// FormatOf maps a file extension to a format tag. Unknown extensions read as csv.
func FormatOf(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if _, ok := registry[ext]; ok {
		return ext
	}
	return "csv"
}

// IsSample reports whether path asks for the built-in sample dataset.
func IsSample(path string) bool {
	p := strings.TrimSpace(path)
	return p == "" || strings.EqualFold(p, "none")
}

// Load reads path into a Frame, or returns the sample dataset for "none".
func Load(ctx context.Context, path string, opt Options) (*Frame, error) {
	if IsSample(path) {
		return Sample(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("data file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("data file %s is a directory", path)
	}
	format := FormatOf(path)
	l, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupported)
	}
	f, err := l.Load(ctx, path, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s as %s: %w", filepath.Base(path), format, err)
	}
	if f.Name == "" {
		f.Name = filepath.Base(path)
	}
	return f, nil
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
	Register(xlsLoader{})
	Register(jsonLoader{})
	Register(arrowLoader{})
	Register(pickleLoader{})
}
