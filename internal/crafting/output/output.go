// Package output writes and reads the crafting_data.json catalog file.
package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/rsned/crafting-data/pkg/crafting"
)

// CompressedExt selects zstd compression for WriteFile and ReadFile.
const CompressedExt = ".zst"

const indent = "  "

// Encode renders catalog as indented JSON in catalog order.
func Encode(catalog *crafting.Catalog) ([]byte, error) {
	raw, err := catalog.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", indent); err != nil {
		return nil, fmt.Errorf("indenting catalog: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteFile writes catalog to path, creating parent directories. Paths ending
// in CompressedExt are zstd-compressed. It returns the number of bytes
// written to disk.
func WriteFile(path string, catalog *crafting.Catalog) (int64, error) {
	data, err := Encode(catalog)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cw := &countingWriter{w: f}
	if err := write(cw, data, strings.HasSuffix(path, CompressedExt)); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing %s: %w", path, err)
	}
	return cw.n, nil
}

func write(w io.Writer, data []byte, compress bool) error {
	if !compress {
		_, err := w.Write(data)
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadFile loads a catalog written by WriteFile, keeping its entry order.
func ReadFile(path string) (*crafting.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReaderSize(f, 256*1024)
	if strings.HasSuffix(path, CompressedExt) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	catalog := crafting.NewCatalog()
	if err := catalog.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return catalog, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
