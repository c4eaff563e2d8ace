// Package pipeline runs the two phases of a scrape: fetching raw pages for
// every indexed legislator, then parsing the fetched detail pages into
// records. Both phases are strictly sequential.
package pipeline

import (
	"context"
	"fmt"

	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/internal/types"
	"github.com/xhad/chamber/pkg/index"
)

const (
	PhaseFetch   = "fetch"
	PhaseParse   = "parse"
	PhasePublish = "publish"
)

type RunnerConfig struct {
	IndexFile string
	NoGet     bool
	NoParse   bool
	// IDs limits both phases to these chamber ids when non-empty. The
	// aggregate file is left untouched in that case.
	IDs []int
}

// Summary counts what a run did.
type Summary struct {
	Entries       int
	Fetched       int
	FetchFailures int
	Parsed        int
	ParseFailures int
	Published     int
}

// Failures is the number of per-entry errors that were reported and skipped.
func (s Summary) Failures() int {
	return s.FetchFailures + s.ParseFailures
}

type Runner struct {
	config   RunnerConfig
	fetcher  types.EntryFetcher
	parser   types.PageParser
	records  types.RecordWriter
	sinks    []types.RecordSink
	reporter types.Reporter
	only     map[int]bool
}

type Option func(*Runner)

func WithSinks(sinks ...types.RecordSink) Option {
	return func(r *Runner) {
		r.sinks = append(r.sinks, sinks...)
	}
}

func WithReporter(reporter types.Reporter) Option {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

func NewRunner(config RunnerConfig, fetcher types.EntryFetcher, parser types.PageParser, records types.RecordWriter, opts ...Option) *Runner {
	r := &Runner{
		config:   config,
		fetcher:  fetcher,
		parser:   parser,
		records:  records,
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(config.IDs) > 0 {
		r.only = make(map[int]bool, len(config.IDs))
		for _, id := range config.IDs {
			r.only[id] = true
		}
	}
	return r
}

// Run executes the enabled phases. Only setup problems and write failures
// are returned as errors; per-entry failures are reported and counted.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	if !r.config.NoGet {
		if err := r.Fetch(ctx, &summary); err != nil {
			return summary, err
		}
	}
	if !r.config.NoParse {
		if err := r.Parse(ctx, &summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (r *Runner) selected(id int) bool {
	return r.only == nil || r.only[id]
}

// Fetch downloads the pages of every index entry, one entry at a time.
func (r *Runner) Fetch(ctx context.Context, summary *Summary) error {
	reader, err := index.Open(r.config.IndexFile)
	if err != nil {
		return err
	}
	entries, err := reader.All()
	if err != nil {
		return err
	}

	var selected []models.LegislatorIndexEntry
	for _, entry := range entries {
		if r.selected(entry.ChamberID) {
			selected = append(selected, entry)
		}
	}

	r.reporter.PhaseStarted(PhaseFetch, len(selected))
	defer r.reporter.PhaseFinished(PhaseFetch)

	for _, entry := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}

		summary.Entries++
		for _, result := range r.fetcher.FetchEntry(ctx, entry) {
			if result.Err != nil {
				summary.FetchFailures++
				r.reporter.Failed(result.Err)
				continue
			}
			summary.Fetched++
			r.reporter.Fetched(entry, result)
		}
		r.reporter.Advance()
	}
	return nil
}

// Parse turns every fetched detail page into a record file, then writes
// the aggregate and hands the records to the configured sinks.
func (r *Runner) Parse(ctx context.Context, summary *Summary) error {
	files, err := r.parser.DetailFiles()
	if err != nil {
		return err
	}

	var selected []string
	for _, path := range files {
		id, err := r.parser.ChamberID(path)
		if err == nil && !r.selected(id) {
			continue
		}
		selected = append(selected, path)
	}

	r.reporter.PhaseStarted(PhaseParse, len(selected))
	defer r.reporter.PhaseFinished(PhaseParse)

	var records []*models.LegislatorRecord
	for _, path := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := r.parser.ParseFile(path)
		r.reporter.Advance()
		if err != nil {
			summary.ParseFailures++
			r.reporter.Failed(err)
			continue
		}

		out, err := r.records.Save(record)
		if err != nil {
			return fmt.Errorf("failed to save legislator %d: %w", record.ChamberID, err)
		}
		summary.Parsed++
		r.reporter.Parsed(record, out)
		records = append(records, record)
	}

	if r.only == nil {
		if _, err := r.records.SaveAll(records); err != nil {
			return fmt.Errorf("failed to save aggregate: %w", err)
		}
	}

	return r.Publish(ctx, records, summary)
}

// Publish hands records to every sink.
func (r *Runner) Publish(ctx context.Context, records []*models.LegislatorRecord, summary *Summary) error {
	if len(r.sinks) == 0 || len(records) == 0 {
		return nil
	}

	r.reporter.PhaseStarted(PhasePublish, len(r.sinks))
	defer r.reporter.PhaseFinished(PhasePublish)

	for _, sink := range r.sinks {
		if err := sink.Save(ctx, records); err != nil {
			return fmt.Errorf("failed to publish records: %w", err)
		}
		r.reporter.Advance()
	}
	summary.Published += len(records)
	return nil
}
