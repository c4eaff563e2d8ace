package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/pkg/fsutil"
	"github.com/xhad/chamber/pkg/textutil"
	"golang.org/x/time/rate"
)

// Kinds of artifact fetched for every legislator.
const (
	KindBio    = "bio"
	KindDetail = "detail"
	KindPhoto  = "photo"
)

var kinds = []string{KindBio, KindDetail, KindPhoto}

type FetcherConfig struct {
	SourceDir   string
	BioURL      string // %s nickname (latin-1, escaped), %d legislature
	DetailURL   string // %d chamber id
	PhotoURL    string // %s photo name
	Legislature int
	RateLimit   float64 // requests per second
	Timeout     time.Duration
	Retries     int
	RetryWait   time.Duration
	UserAgent   string
	OnProgress  func(url string)
}

// Target is one URL to retrieve for a legislator.
type Target struct {
	Kind string
	URL  string
}

// Result is the outcome of retrieving one Target.
type Result struct {
	Target Target
	Path   string
	Err    error
}

// Fetcher downloads legislator pages one request at a time and mirrors
// them under SourceDir.
type Fetcher struct {
	config FetcherConfig
	client *resty.Client
}

func NewWithConfig(config FetcherConfig) (*Fetcher, error) {
	if config.SourceDir == "" {
		return nil, fmt.Errorf("source directory is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.RetryWait == 0 {
		config.RetryWait = 500 * time.Millisecond
	}
	if config.Retries < 0 {
		config.Retries = 0
	}

	limiter := rate.NewLimiter(rate.Limit(config.RateLimit), 1)

	client := resty.New()
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(config.Retries)
	client.SetRetryWaitTime(config.RetryWait)
	client.SetRetryMaxWaitTime(4 * config.RetryWait)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})
	// Every attempt, retries included, takes a token.
	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		return limiter.Wait(r.Context())
	})
	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}

	return &Fetcher{
		config: config,
		client: client,
	}, nil
}

// Target builds the URL of one kind of artifact for entry. Only the bio
// URL can fail, when the nickname has no latin-1 form.
func (f *Fetcher) Target(kind string, entry models.LegislatorIndexEntry) (Target, error) {
	switch kind {
	case KindBio:
		escaped, err := textutil.QueryEscapeLatin1(entry.Nickname)
		if err != nil {
			return Target{Kind: kind}, err
		}
		return Target{Kind: kind, URL: fmt.Sprintf(f.config.BioURL, escaped, f.config.Legislature)}, nil
	case KindDetail:
		return Target{Kind: kind, URL: fmt.Sprintf(f.config.DetailURL, entry.ChamberID)}, nil
	case KindPhoto:
		return Target{Kind: kind, URL: fmt.Sprintf(f.config.PhotoURL, textutil.PhotoName(entry.Nickname))}, nil
	}
	return Target{Kind: kind}, fmt.Errorf("unknown target kind %q", kind)
}

// FetchEntry retrieves the bio, detail and photo of entry in that order.
// A failed target does not stop the remaining ones; its Result carries a
// *FetchError.
func (f *Fetcher) FetchEntry(ctx context.Context, entry models.LegislatorIndexEntry) []Result {
	results := make([]Result, 0, len(kinds))
	for _, kind := range kinds {
		target, err := f.Target(kind, entry)
		if err != nil {
			results = append(results, Result{Target: target, Err: &FetchError{
				ChamberID: entry.ChamberID,
				Nickname:  entry.Nickname,
				Kind:      kind,
				Message:   "cannot build URL",
				Cause:     err,
			}})
			continue
		}

		path, err := f.Download(ctx, target.URL)
		if err != nil {
			err = &FetchError{
				ChamberID: entry.ChamberID,
				Nickname:  entry.Nickname,
				Kind:      target.Kind,
				URL:       target.URL,
				Message:   "download failed",
				Cause:     err,
			}
		}
		results = append(results, Result{Target: target, Path: path, Err: err})
	}
	return results
}

// Download fetches rawURL and writes the body to its mirror path.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (string, error) {
	path, err := fsutil.MirrorPath(f.config.SourceDir, rawURL)
	if err != nil {
		return "", err
	}

	if f.config.OnProgress != nil {
		f.config.OnProgress(rawURL)
	}

	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return "", err
	}

	if resp.StatusCode() != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode(), URL: rawURL}
	}

	if err := fsutil.WriteFileAtomic(path, resp.Body(), 0644); err != nil {
		return "", err
	}
	return path, nil
}
