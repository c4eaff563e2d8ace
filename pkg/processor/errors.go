package processor

import "fmt"

// ParseError reports a detail page that could not be turned into a record.
// The page is skipped; other pages are unaffected.
type ParseError struct {
	Path      string
	ChamberID int
	Reason    string
	Cause     error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s (chamber_id=%d): %s", e.Path, e.ChamberID, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
