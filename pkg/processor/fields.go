package processor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/pkg/textutil"
)

// Keys of the fields pulled from the profile paragraph.
const (
	fieldFullName     = "full_name"
	fieldProfession   = "profession"
	fieldPartyCode    = "party_code"
	fieldStateCode    = "state_code"
	fieldTookSeatAs   = "took_seat_as"
	fieldPhoneNumber  = "phone_number"
	fieldFaxNumber    = "fax_number"
	fieldLegislatures = "legislatures"
)

type fieldPattern struct {
	key string
	re  *regexp.Regexp
}

// Evaluated in this order; each pattern keeps the first line it matches.
var paragraphPatterns = []fieldPattern{
	{fieldFullName, regexp.MustCompile(`Nome Civil: (.*)`)},
	{fieldProfession, regexp.MustCompile(`Profissão: (.*)`)},
	{fieldPartyCode, regexp.MustCompile(`Partido/UF: (\w*)`)},
	{fieldStateCode, regexp.MustCompile(`Partido/UF:.*- ([A-Z]{2})`)},
	{fieldTookSeatAs, regexp.MustCompile(`Partido/UF:.*-.*- (.*)`)},
	{fieldPhoneNumber, regexp.MustCompile(`Telefone:(\(\d{2}\) \d{4}-\d{4})`)},
	{fieldFaxNumber, regexp.MustCompile(`Fax:(\(\d{2}\) \d{4}-\d{4})`)},
	{fieldLegislatures, regexp.MustCompile(`Legislaturas: (.*)`)},
}

var (
	subscriptionPattern = regexp.MustCompile(`nuMatricula=(\d+)`)
	emailPattern        = regexp.MustCompile(`mailto:(.+?\.br)`)
)

// extractFields applies paragraphPatterns to the lines of paragraph.
// Fields whose pattern matches nothing, or only captures blanks, are absent
// from the result.
func extractFields(paragraph string) map[string]string {
	lines := strings.Split(paragraph, "\n")
	fields := make(map[string]string, len(paragraphPatterns))

	for _, pattern := range paragraphPatterns {
		for _, line := range lines {
			m := pattern.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if value := strings.TrimSpace(m[1]); value != "" {
				fields[pattern.key] = value
			}
			break
		}
	}

	return fields
}

// findInMarkup returns the first capture of re anywhere in the raw page.
func findInMarkup(re *regexp.Regexp, markup string) *string {
	m := re.FindStringSubmatch(markup)
	if m == nil {
		return nil
	}
	return &m[1]
}

// parseLegislatures turns "03/07 07/11" into date intervals. The finish
// year is when the next legislature starts, so each interval ends the day
// before it.
func parseLegislatures(years string) ([]models.Legislature, error) {
	tokens := strings.Fields(years)
	if len(tokens) == 0 {
		return nil, nil
	}

	legislatures := make([]models.Legislature, 0, len(tokens))
	for _, token := range tokens {
		start, finish, ok := strings.Cut(token, "/")
		if !ok {
			return nil, fmt.Errorf("legislature %q: expected SS/FF", token)
		}

		startDate, err := textutil.YearStart(start)
		if err != nil {
			return nil, fmt.Errorf("legislature %q: %w", token, err)
		}
		nextStart, err := textutil.YearStart(finish)
		if err != nil {
			return nil, fmt.Errorf("legislature %q: %w", token, err)
		}

		legislatures = append(legislatures, models.Legislature{
			Start: startDate,
			End:   nextStart.AddDate(0, 0, -1),
		})
	}

	return legislatures, nil
}

func optional(fields map[string]string, key string) *string {
	value, ok := fields[key]
	if !ok {
		return nil
	}
	return &value
}
