// Package textutil holds the text conversions shared by the fetch and parse
// phases: the Latin-1 codec the chamber site speaks, accent folding for file
// names, and the two-digit year rule used by legislature codes.
package textutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Whitespace, path separators, dots and characters that are not allowed in
// file names on common filesystems.
var unsafeFileRun = regexp.MustCompile(`[\s/\\.:*?"<>|\x00-\x1f]+`)

// DecodeLatin1 converts ISO-8859-1 bytes into a UTF-8 string.
func DecodeLatin1(raw []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding latin-1: %w", err)
	}
	return string(decoded), nil
}

// EncodeLatin1 converts a UTF-8 string into ISO-8859-1 bytes. Runes outside
// the Latin-1 repertoire are an error.
func EncodeLatin1(s string) ([]byte, error) {
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %q as latin-1: %w", s, err)
	}
	return encoded, nil
}

// QueryEscapeLatin1 percent-encodes s byte for byte in its Latin-1 form,
// which is what the chamber search endpoints expect in query strings.
func QueryEscapeLatin1(s string) (string, error) {
	encoded, err := EncodeLatin1(s)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(encoded)), nil
}

// StripDiacritics removes combining marks after canonical decomposition,
// so "PERPÉTUA" becomes "PERPETUA" and "ç" becomes "c".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Slug folds accents, lowercases and joins words with hyphens. Runs of
// whitespace, path separators, dots and other characters unusable in a file
// name become one hyphen, and hyphens at either end are dropped, so the
// result is always a single path element. Slug(Slug(s)) == Slug(s).
func Slug(s string) string {
	folded := strings.ToLower(StripDiacritics(s))
	return strings.Trim(unsafeFileRun.ReplaceAllString(folded, "-"), "-")
}

// PhotoName is the photo file stem used by the chamber site: accents folded,
// lowercased and with every space removed.
func PhotoName(nickname string) string {
	folded := strings.ToLower(StripDiacritics(nickname))
	return whitespaceRun.ReplaceAllString(folded, "")
}

// NormalizeYear expands a two-digit year: values above 69 are 19xx,
// everything else is 20xx.
func NormalizeYear(twoDigit string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(twoDigit))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", twoDigit, err)
	}
	if year < 0 || year > 99 {
		return 0, fmt.Errorf("invalid year %q: not two digits", twoDigit)
	}
	if year > 69 {
		return 1900 + year, nil
	}
	return 2000 + year, nil
}

// YearStart returns January 1st of the expanded two-digit year in UTC.
func YearStart(twoDigit string) (time.Time, error) {
	year, err := NormalizeYear(twoDigit)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
}
