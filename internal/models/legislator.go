package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date used for legislature bounds.
const DateLayout = "2006-01-02"

// LegislatorIndexEntry is one row of the legislator index file.
type LegislatorIndexEntry struct {
	Nickname  string `csv:"nickname"`
	ChamberID int    `csv:"chamber_id"`
}

// Legislature is a closed interval of dates a legislator served.
// It is serialized as a two element array of ISO dates.
type Legislature struct {
	Start time.Time
	End   time.Time
}

func (l Legislature) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{
		l.Start.Format(DateLayout),
		l.End.Format(DateLayout),
	})
}

func (l *Legislature) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("legislature: %w", err)
	}

	start, err := time.Parse(DateLayout, pair[0])
	if err != nil {
		return fmt.Errorf("legislature start: %w", err)
	}
	end, err := time.Parse(DateLayout, pair[1])
	if err != nil {
		return fmt.Errorf("legislature end: %w", err)
	}

	l.Start = start
	l.End = end
	return nil
}

// LegislatorRecord is the parsed profile of a single legislator.
// Optional fields are nil when the source page did not carry them.
type LegislatorRecord struct {
	ChamberID          int           `json:"chamber_id"`
	PoliticalName      string        `json:"political_name"`
	FullName           string        `json:"full_name"`
	Profession         *string       `json:"profession"`
	PartyCode          *string       `json:"party_code"`
	StateCode          *string       `json:"state_code"`
	TookSeatAs         *string       `json:"took_seat_as"`
	PhoneNumber        *string       `json:"phone_number"`
	FaxNumber          *string       `json:"fax_number"`
	Legislatures       []Legislature `json:"legislatures"`
	SubscriptionNumber *string       `json:"subscription_number"`
	EmailAddress       *string       `json:"email_address"`
	MailingAddress     string        `json:"mailing_address"`
}
