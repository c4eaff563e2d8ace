// Package index reads the legislator index: a CSV file with a header row
// carrying at least the nickname and chamber_id columns.
package index

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xhad/chamber/internal/models"
)

var requiredColumns = []string{"nickname", "chamber_id"}

// DataSourceError reports an index file that is missing or malformed.
// It is fatal: nothing can be fetched without the index.
type DataSourceError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *DataSourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("index %s: %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("index %s: %s", e.Path, e.Reason)
}

func (e *DataSourceError) Unwrap() error {
	return e.Cause
}

// Reader yields index entries in file order. Each call to Each re-reads
// the file, so a Reader can be iterated any number of times.
type Reader struct {
	path string
}

// Open checks that the index exists and that its header names the
// required columns.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataSourceError{Path: path, Reason: "cannot read file", Cause: err}
	}
	if err := checkHeader(path, data); err != nil {
		return nil, err
	}
	return &Reader{path: path}, nil
}

func (r *Reader) Path() string {
	return r.path
}

// Each calls fn for every entry in file order. An error returned by fn
// stops the iteration and is returned as is.
func (r *Reader) Each(fn func(models.LegislatorIndexEntry) error) error {
	entries, err := r.load()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

// All returns every entry of the index.
func (r *Reader) All() ([]models.LegislatorIndexEntry, error) {
	return r.load()
}

func (r *Reader) load() ([]models.LegislatorIndexEntry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, &DataSourceError{Path: r.path, Reason: "cannot read file", Cause: err}
	}
	if err := checkHeader(r.path, data); err != nil {
		return nil, err
	}

	var entries []models.LegislatorIndexEntry
	if err := gocsv.UnmarshalBytes(data, &entries); err != nil {
		return nil, &DataSourceError{Path: r.path, Reason: "malformed row", Cause: err}
	}

	for i := range entries {
		entries[i].Nickname = strings.TrimSpace(entries[i].Nickname)
		if entries[i].Nickname == "" || entries[i].ChamberID <= 0 {
			return nil, &DataSourceError{
				Path:   r.path,
				Reason: fmt.Sprintf("row %d: nickname and a positive chamber_id are required", i+2),
			}
		}
	}

	return entries, nil
}

func checkHeader(path string, data []byte) error {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		if errors.Is(err, csv.ErrFieldCount) {
			return &DataSourceError{Path: path, Reason: "malformed header", Cause: err}
		}
		return &DataSourceError{Path: path, Reason: "missing header row", Cause: err}
	}

	present := make(map[string]bool, len(header))
	for _, column := range header {
		present[strings.TrimSpace(column)] = true
	}

	var missing []string
	for _, column := range requiredColumns {
		if !present[column] {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return &DataSourceError{
			Path:   path,
			Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}

	return nil
}
