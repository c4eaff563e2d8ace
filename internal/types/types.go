package types

import (
	"context"

	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/pkg/scraper"
)

// Core interfaces
type EntryFetcher interface {
	FetchEntry(ctx context.Context, entry models.LegislatorIndexEntry) []scraper.Result
}

type PageParser interface {
	DetailFiles() ([]string, error)
	ChamberID(path string) (int, error)
	ParseFile(path string) (*models.LegislatorRecord, error)
}

type RecordWriter interface {
	Save(record *models.LegislatorRecord) (string, error)
	SaveAll(records []*models.LegislatorRecord) (string, error)
}

type RecordSink interface {
	Save(ctx context.Context, records []*models.LegislatorRecord) error
	Close()
}

// Reporter receives progress from the pipeline; it never alters control
// flow.
type Reporter interface {
	PhaseStarted(phase string, total int)
	Fetched(entry models.LegislatorIndexEntry, result scraper.Result)
	Parsed(record *models.LegislatorRecord, path string)
	Failed(err error)
	// Advance marks one index entry or detail page as done.
	Advance()
	PhaseFinished(phase string)
}
