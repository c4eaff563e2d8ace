package pipeline

import (
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/pkg/scraper"
)

type nopReporter struct{}

func (nopReporter) PhaseStarted(string, int) {}
func (nopReporter) Fetched(models.LegislatorIndexEntry, scraper.Result) {}
func (nopReporter) Parsed(*models.LegislatorRecord, string) {}
func (nopReporter) Failed(error) {}
func (nopReporter) Advance() {}
func (nopReporter) PhaseFinished(string) {}

var phaseDescriptions = map[string]string{
	PhaseFetch:   "Downloading legislator pages",
	PhaseParse:   "Parsing detail pages",
	PhasePublish: "Publishing records",
}

// ConsoleReporter prints one colored line per entry, or a progress bar per
// phase when progress is enabled. Failures are always logged.
type ConsoleReporter struct {
	out      io.Writer
	logger   *log.Logger
	progress bool
	bar      *progressbar.ProgressBar
}

func NewConsoleReporter(progress bool) *ConsoleReporter {
	return &ConsoleReporter{
		out:      color.Output,
		logger:   log.New(os.Stderr, "", log.LstdFlags),
		progress: progress,
	}
}

func (c *ConsoleReporter) PhaseStarted(phase string, total int) {
	color.New(color.FgBlue).Fprintf(c.out, "\n%s (%d)\n", phaseDescriptions[phase], total)
	if c.progress {
		c.bar = getProgressBar(total, phaseDescriptions[phase])
	}
}

func (c *ConsoleReporter) Fetched(entry models.LegislatorIndexEntry, result scraper.Result) {
	if c.bar != nil {
		return
	}
	color.New(color.FgGreen).Fprintf(c.out, "Downloaded %s for %s (chamber_id=%d)\n",
		result.Target.Kind, entry.Nickname, entry.ChamberID)
}

func (c *ConsoleReporter) Parsed(record *models.LegislatorRecord, path string) {
	if c.bar != nil {
		return
	}
	color.New(color.FgGreen).Fprintf(c.out, "Parsed details for %s (chamber_id=%d) -> %s\n",
		record.FullName, record.ChamberID, path)
}

func (c *ConsoleReporter) Failed(err error) {
	c.logger.Printf("%s %v", color.RedString("skipped:"), err)
}

func (c *ConsoleReporter) Advance() {
	if c.bar != nil {
		c.bar.Add(1)
	}
}

func (c *ConsoleReporter) PhaseFinished(phase string) {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
		color.New(color.FgGreen).Fprintln(c.out)
	}
}

// PrintSummary writes the final counters of a run.
func PrintSummary(w io.Writer, s Summary) {
	color.New(color.FgGreen).Fprintf(w, "\n✓ %d entries, %d downloads, %d records, %d published\n",
		s.Entries, s.Fetched, s.Parsed, s.Published)
	if s.Failures() > 0 {
		color.New(color.FgYellow).Fprintf(w, "! %d fetch failures, %d parse failures\n",
			s.FetchFailures, s.ParseFailures)
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
