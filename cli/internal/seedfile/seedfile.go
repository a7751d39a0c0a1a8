// Package seedfile reads rows to seed from JSON, JSON lines or CSV files,
// optionally compressed with gzip, zstd or lz4.
package seedfile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"

	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// ErrUnknownFormat is returned for files whose extension names no format
var ErrUnknownFormat = errors.New("unknown seed file format")

// Format is the row encoding of a seed file
type Format string

const (
	FormatJSON  Format = "json"  // one array of objects, or concatenated objects
	FormatJSONL Format = "jsonl" // one object per line
	FormatCSV   Format = "csv"   // header row, then one row per record
)

// Compression is the stream compression of a seed file
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// Reader yields one row per call. Next returns io.EOF after the last row.
type Reader interface {
	Next() (*types.Attributes, error)
	Close() error
}

// Detect derives format and compression from a file name such as
// users.csv.gz or events.jsonl.zst
func Detect(name string) (Format, Compression, error) {
	base := strings.ToLower(filepath.Base(name))

	comp := CompressionNone
	switch ext := filepath.Ext(base); ext {
	case ".gz", ".gzip":
		comp = CompressionGzip
	case ".zst", ".zstd":
		comp = CompressionZstd
	case ".lz4":
		comp = CompressionLZ4
	}
	if comp != CompressionNone {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	switch filepath.Ext(base) {
	case ".json":
		return FormatJSON, comp, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, comp, nil
	case ".csv":
		return FormatCSV, comp, nil
	default:
		return "", comp, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// Open opens name on fs and returns a Reader for its detected format
func Open(fs afero.Fs, name string) (Reader, error) {
	format, comp, err := Detect(name)
	if err != nil {
		return nil, err
	}

	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f, format, comp)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return r, nil
}

// NewReader decodes rows of format from src. Closing the Reader closes src
// when it is an io.Closer.
func NewReader(src io.Reader, format Format, comp Compression) (Reader, error) {
	stream, closeStream, err := decompress(src, comp)
	if err != nil {
		return nil, err
	}

	closers := []func() error{closeStream}
	if c, ok := src.(io.Closer); ok {
		closers = append(closers, c.Close)
	}
	closeAll := func() error {
		var errs []error
		for _, fn := range closers {
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	switch format {
	case FormatJSON, FormatJSONL:
		return newJSONReader(stream, closeAll), nil
	case FormatCSV:
		return newCSVReader(stream, closeAll)
	default:
		closeAll()
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func decompress(src io.Reader, comp Compression) (io.Reader, func() error, error) {
	noop := func() error { return nil }

	switch comp {
	case CompressionNone:
		return src, noop, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, nil, err
		}
		return dec, func() error { dec.Close(); return nil }, nil
	case CompressionLZ4:
		return lz4.NewReader(src), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown compression %q", comp)
	}
}

// ReadAll drains r
func ReadAll(r Reader) ([]*types.Attributes, error) {
	var rows []*types.Attributes
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}
