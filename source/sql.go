package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// drivers selectable by name from configuration
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/pkg/errors"
	"github.com/qri-io/docdiff"
)

// OpenDB opens & pings a database. driver is one of mysql, postgres, sqlite
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %v database", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %v database", driver)
	}
	return db, nil
}

// SQL fetches documents stored one per row, addressed by an identifier
// column
type SQL struct {
	db    *sql.DB
	table string
	query string
}

// NewSQL creates a relational document source. table & column names are
// interpolated into the query as given, callers must validate them
func NewSQL(db *sql.DB, driver, table, idColumn, contentColumn string) *SQL {
	placeholder := "?"
	if driver == "postgres" {
		placeholder = "$1"
	}
	return &SQL{
		db:    db,
		table: table,
		query: fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", contentColumn, table, idColumn, placeholder),
	}
}

// Query is the statement run for every fetch
func (s *SQL) Query() string { return s.query }

// Fetch returns the raw payload stored for id. Missing rows, NULL & blank
// payloads all return ErrUnavailable
func (s *SQL) Fetch(ctx context.Context, id string) (string, error) {
	var content sql.NullString
	err := s.db.QueryRowContext(ctx, s.query, id).Scan(&content)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(ErrUnavailable, "no %s row for id %s", s.table, id)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch id %v", id)
	}
	if !content.Valid || strings.TrimSpace(content.String) == "" {
		return "", errors.Wrapf(ErrUnavailable, "empty %s content for id %s", s.table, id)
	}
	return content.String, nil
}

// ReadMarkup fetches & parses the XML document stored for id
func (s *SQL) ReadMarkup(ctx context.Context, id string) (*docdiff.Element, error) {
	payload, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return ParseMarkup(id, strings.NewReader(payload), FormatXML)
}

// ReadObject fetches & parses the JSON document stored for id
func (s *SQL) ReadObject(ctx context.Context, id string) (interface{}, error) {
	payload, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return ParseObject(id, strings.NewReader(payload), FormatJSON)
}
