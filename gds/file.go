package gds

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/maskforge/maskforge"
	"github.com/maskforge/maskforge/design"
)

// WriteFile writes the hierarchical design to path. A ".gds.gz" suffix
// selects transparent gzip compression.
func WriteFile(path string, d *design.Design) error {
	return writeFile(path, func(w io.Writer) error {
		return Encode(w, d)
	})
}

// WriteFlatFile writes a flattened snapshot to path, with the same
// suffix handling as WriteFile.
func WriteFlatFile(path, name string, g maskforge.Grid, f *design.Flat) error {
	return writeFile(path, func(w io.Writer) error {
		return EncodeFlat(w, name, g, f)
	})
}

func writeFile(path string, encode func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gds: %w", err)
	}
	defer file.Close()

	var w io.Writer = file
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gds.gz") {
		gz = gzip.NewWriter(file)
		w = gz
	}
	if err := encode(w); err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("gds: %w", err)
		}
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("gds: %w", err)
	}
	maskforge.Logger().Info("wrote layout", "path", path)
	return nil
}

// ReadFile decodes a stream file written by WriteFile, decompressing
// ".gds.gz" transparently.
func ReadFile(path string) (*design.Design, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gds: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gds.gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("gds: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return Decode(r)
}
