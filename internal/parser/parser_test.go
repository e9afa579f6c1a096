package parser_test

import (
	"errors"
	"testing"

	"github.com/tabcheck/tabcheck/internal/parser"
)

func TestLoadFileUnsupportedFormat(t *testing.T) {
	p := writeFile(t, "notes.pdf", "%PDF-1.4")

	_, err := parser.LoadFile(p, parser.Options{})
	if !errors.Is(err, parser.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestLoadFileExtensionIsCaseInsensitive(t *testing.T) {
	p := writeFile(t, "UPPER.CSV", "a,b\n1,2\n")

	ds, err := parser.LoadFile(p, parser.Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", ds.Len())
	}
}
