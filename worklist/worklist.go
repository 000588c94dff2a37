// Package worklist reads the lists of document pairs a batch compares, and
// the attribute exclusion list.
package worklist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Columns names the two work-list columns that identify a pair
type Columns struct {
	Reference string
	Candidate string
}

var (
	// MarkupFiles columns list markup file names
	MarkupFiles = Columns{Reference: "wcs_xml", Candidate: "micro_xml"}
	// Database columns list document identifiers
	Database = Columns{Reference: "wcs_order_id", Candidate: "micro_order_id"}
	// ObjectFiles columns list nested-object file names
	ObjectFiles = Columns{Reference: "wcs_json", Candidate: "micro_json"}
)

// Pair is one comparison to make
type Pair struct {
	// Reference & Candidate are file names or identifiers, depending on the
	// work-list
	Reference string
	Candidate string
	// Line is the 1-based line of the work-list the pair was read from, 0
	// for pairs that didn't come from a file
	Line int
}

func (p Pair) String() string {
	return p.Reference + " vs " + p.Candidate
}

// SchemaError is returned when a work-list lacks required columns. It's
// fatal: no pair of such a list can be compared
type SchemaError struct {
	Missing []string
	Found   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("work-list must contain %s columns, found: %s",
		quoteJoin(e.Missing), quoteJoin(e.Found))
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}

// newCSVReader strips a leading byte order mark, spreadsheets tend to write
// one & it would otherwise be glued to the first column name
func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// header reads the header row & maps column names to their index
func header(cr *csv.Reader) (map[string]int, []string, error) {
	names, err := cr.Read()
	if err == io.EOF {
		return map[string]int{}, nil, nil
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read header")
	}
	idx := make(map[string]int, len(names))
	for i, n := range names {
		n = strings.TrimSpace(n)
		names[i] = n
		if _, dup := idx[n]; !dup {
			idx[n] = i
		}
	}
	return idx, names, nil
}

// Read reads the pairs of a CSV work-list. Rows with both columns blank are
// skipped, values are trimmed
func Read(r io.Reader, cols Columns) ([]Pair, error) {
	cr := newCSVReader(r)
	idx, found, err := header(cr)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, c := range []string{cols.Reference, cols.Candidate} {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Found: found}
	}

	var pairs []Pair
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pairs, errors.Wrap(err, "failed to read work-list")
		}
		line, _ := cr.FieldPos(0)
		p := Pair{
			Reference: field(row, idx[cols.Reference]),
			Candidate: field(row, idx[cols.Candidate]),
			Line:      line,
		}
		if p.Reference == "" && p.Candidate == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ReadFile reads the work-list at path
func ReadFile(path string, cols Columns) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open work-list %v", path)
	}
	defer f.Close()
	return Read(f, cols)
}
