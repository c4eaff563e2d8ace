package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/pkg/fsutil"
	"github.com/xhad/chamber/pkg/textutil"
)

// AggregateFile holds every record of a run, in parse order.
const AggregateFile = "all.json"

// JSONStore writes one file per legislator plus the aggregate collection.
type JSONStore struct {
	dir string
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

func (s *JSONStore) Dir() string {
	return s.dir
}

// FileName is "<chamber_id>-<slug of full name>.json".
func FileName(record *models.LegislatorRecord) string {
	return fmt.Sprintf("%d-%s.json", record.ChamberID, textutil.Slug(record.FullName))
}

// Save writes the record file and returns its path.
func (s *JSONStore) Save(record *models.LegislatorRecord) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode record %d: %w", record.ChamberID, err)
	}

	path := filepath.Join(s.dir, FileName(record))
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SaveAll writes the aggregate file. A nil slice is written as [].
func (s *JSONStore) SaveAll(records []*models.LegislatorRecord) (string, error) {
	if records == nil {
		records = []*models.LegislatorRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}

	path := filepath.Join(s.dir, AggregateFile)
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a single record file.
func (s *JSONStore) Load(path string) (*models.LegislatorRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var record models.LegislatorRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &record, nil
}

// LoadAll reads the aggregate file.
func (s *JSONStore) LoadAll() ([]*models.LegislatorRecord, error) {
	path := filepath.Join(s.dir, AggregateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var records []*models.LegislatorRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return records, nil
}
