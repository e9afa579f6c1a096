// Package parser loads tabular files from disk into datasets. Formats are
// registered as Loader implementations; selection is by file extension.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

// Loader reads one on-disk format into a Dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*dataset.Dataset, error)
}

// Options carries per-load settings shared across formats.
type Options struct {
	// Delimiter overrides field separation for delimited text; zero means
	// infer from the file extension.
	Delimiter rune
	// SheetName selects a worksheet by name; it wins over SheetIndex.
	SheetName string
	// SheetIndex selects a worksheet by 1-based position; zero means first.
	SheetIndex int
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoadFile selects a loader based on filename and returns the parsed dataset.
func LoadFile(path string, opt Options) (*dataset.Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// ErrUnsupported indicates a file format no loader claims.
var ErrUnsupported = errors.New("unsupported dataset format")
