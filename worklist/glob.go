package worklist

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// Glob pairs every file under refDir matching pattern with the file at the
// same relative path under candDir. Pairs are sorted by relative path. A
// reference file without a counterpart is still listed, so the comparison
// reports the candidate unavailable instead of dropping it silently
func Glob(refDir, candDir, pattern string) ([]Pair, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(refDir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to glob %v", refDir)
	}
	sort.Strings(matches)

	pairs := make([]Pair, 0, len(matches))
	for _, m := range matches {
		rel := filepath.FromSlash(m)
		pairs = append(pairs, Pair{
			Reference: filepath.Join(refDir, rel),
			Candidate: filepath.Join(candDir, rel),
		})
	}
	return pairs, nil
}
