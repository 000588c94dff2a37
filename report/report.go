// Package report writes accumulated differences to tabular report files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qri-io/docdiff"
)

// Header is the fixed column header of CSV reports
var Header = []string{"attribute", "difference type", "wcs value", "microservice value"}

// Record is a difference tagged with the pair it was found in
type Record struct {
	Pair string
	docdiff.Difference
}

// Sink consumes the ordered differences of one batch
type Sink interface {
	Write(records []Record) error
}

// Options adds optional columns to reports
type Options struct {
	// IncludePath adds a "path" column with the structural or key path
	IncludePath bool
	// IncludePair adds a "pair" column naming the compared documents
	IncludePair bool
}

// CSV writes a CSV report, one row per difference after a header row
type CSV struct {
	w    io.Writer
	opts Options
}

// NewCSV creates a CSV sink writing to w
func NewCSV(w io.Writer, opts Options) *CSV {
	return &CSV{w: w, opts: opts}
}

// Write writes the header & every record. The header is written even when
// there are no records
func (c *CSV) Write(records []Record) error {
	cw := csv.NewWriter(c.w)

	header := append([]string{}, Header...)
	if c.opts.IncludePath {
		header = append(header, "path")
	}
	if c.opts.IncludePair {
		header = append(header, "pair")
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write report header")
	}

	for _, r := range records {
		row := r.Row()
		if c.opts.IncludePath {
			row = append(row, r.Path)
		}
		if c.opts.IncludePair {
			row = append(row, r.Pair)
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write report row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush report")
}

// JSON writes a JSON report: an array of differences in their compact array
// form, wrapped with the pair name when IncludePair is set
type JSON struct {
	w    io.Writer
	opts Options
}

// NewJSON creates a JSON sink writing to w
func NewJSON(w io.Writer, opts Options) *JSON {
	return &JSON{w: w, opts: opts}
}

type pairedDifference struct {
	Pair       string             `json:"pair"`
	Difference docdiff.Difference `json:"difference"`
}

// Write encodes every record as one JSON array
func (j *JSON) Write(records []Record) error {
	var v interface{}
	if j.opts.IncludePair {
		out := make([]pairedDifference, len(records))
		for i, r := range records {
			out[i] = pairedDifference{Pair: r.Pair, Difference: r.Difference}
		}
		v = out
	} else {
		out := make(docdiff.Differences, len(records))
		for i, r := range records {
			out[i] = r.Difference
		}
		v = out
	}

	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "failed to write report")
}

// File is a Sink backed by a file on disk
type File struct {
	Sink
	f *os.File
}

// Create creates (or truncates) the report file at path. A ".json"
// extension writes JSON, anything else CSV
func Create(path string, opts Options) (*File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create report directory %v", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create report %v", path)
	}

	var sink Sink
	if strings.EqualFold(filepath.Ext(path), ".json") {
		sink = NewJSON(f, opts)
	} else {
		sink = NewCSV(f, opts)
	}
	return &File{Sink: sink, f: f}, nil
}

// Name is the path of the report file
func (f *File) Name() string { return f.f.Name() }

// Close closes the report file
func (f *File) Close() error { return f.f.Close() }
