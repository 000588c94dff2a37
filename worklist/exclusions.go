package worklist

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/qri-io/docdiff"
)

// ExclusionColumn is the column of the exclusion list holding attribute
// names
const ExclusionColumn = "attribute"

var (
	// ErrConfigMissing is returned alongside an empty set when the exclusion
	// list file doesn't exist. Callers carry on without exclusions
	ErrConfigMissing = errors.New("exclusion list not found")
	// ErrNoAttributeColumn is returned alongside an empty set when the
	// exclusion list has no "attribute" column
	ErrNoAttributeColumn = errors.New("exclusion list has no 'attribute' column")
)

// ReadExclusions reads attribute names from the "attribute" column of a CSV
// exclusion list. Blank names are skipped
func ReadExclusions(r io.Reader) (docdiff.ExclusionSet, error) {
	cr := newCSVReader(r)
	idx, _, err := header(cr)
	if err != nil {
		return docdiff.ExclusionSet{}, err
	}
	col, ok := idx[ExclusionColumn]
	if !ok {
		return docdiff.ExclusionSet{}, ErrNoAttributeColumn
	}

	excl := docdiff.ExclusionSet{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return excl, errors.Wrap(err, "failed to read exclusion list")
		}
		if name := field(row, col); name != "" {
			excl[name] = struct{}{}
		}
	}
	return excl, nil
}

// ReadExclusionsFile reads the exclusion list at path. The returned set is
// never nil, even when an error is returned
func ReadExclusionsFile(path string) (docdiff.ExclusionSet, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return docdiff.ExclusionSet{}, errors.Wrapf(ErrConfigMissing, "%s", path)
	}
	if err != nil {
		return docdiff.ExclusionSet{}, errors.Wrapf(err, "failed to open exclusion list %v", path)
	}
	defer f.Close()

	excl, err := ReadExclusions(f)
	if err != nil {
		return excl, errors.Wrapf(err, "%s", path)
	}
	return excl, nil
}
