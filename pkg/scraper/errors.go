package scraper

import "fmt"

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received status code %d for URL: %s", e.StatusCode, e.URL)
}

// FetchError describes one failed retrieval for a legislator. It is never
// fatal to the batch.
type FetchError struct {
	ChamberID int
	Nickname  string
	Kind      string
	URL       string
	Message   string
	Cause     error
}

func (e *FetchError) Error() string {
	msg := "fetch"
	if e.Kind != "" {
		msg += " " + e.Kind
	}
	msg += fmt.Sprintf(" for %s (chamber_id=%d)", e.Nickname, e.ChamberID)
	if e.URL != "" {
		msg += " from " + e.URL
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
