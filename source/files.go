package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qri-io/docdiff"
)

// Files reads documents from a directory. Names are resolved against Dir
// unless they're absolute
type Files struct {
	Dir string
}

// Path resolves a document name to a file path
func (fs Files) Path(name string) string {
	if filepath.IsAbs(name) || fs.Dir == "" {
		return name
	}
	return filepath.Join(fs.Dir, name)
}

func (fs Files) open(ctx context.Context, name string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.Wrap(ErrUnavailable, "empty file name")
	}
	path := fs.Path(name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrUnavailable, "file %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %v", path)
	}
	return f, nil
}

// ReadMarkup reads & parses the markup document called name. The format is
// picked by extension, defaulting to XML
func (fs Files) ReadMarkup(ctx context.Context, name string) (*docdiff.Element, error) {
	f, err := fs.open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMarkup(name, f, FormatOf(name))
}

// ReadObject reads & parses the nested-object document called name. The
// format is picked by extension, defaulting to JSON
func (fs Files) ReadObject(ctx context.Context, name string) (interface{}, error) {
	f, err := fs.open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseObject(name, f, FormatOf(name))
}
