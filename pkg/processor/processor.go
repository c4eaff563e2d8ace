package processor

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/pkg/fsutil"
	"github.com/xhad/chamber/pkg/textutil"
)

type ProcessorConfig struct {
	SourceDir       string
	DetailURL       string // template the detail pages were fetched from
	IDParam         string
	InfoSelector    string
	NameSelector    string
	AddressSelector string
}

// Processor turns mirrored detail pages into legislator records.
type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.IDParam == "" {
		config.IDParam = "id"
	}
	if config.InfoSelector == "" {
		config.InfoSelector = "div#depInfo"
	}
	if config.NameSelector == "" {
		config.NameSelector = "span"
	}
	if config.AddressSelector == "" {
		config.AddressSelector = ".depAreaConteudo"
	}

	return Processor{
		config: config,
	}
}

// DetailFiles lists the fetched detail pages, sorted by path.
func (p *Processor) DetailFiles() ([]string, error) {
	pattern, err := fsutil.MirrorGlob(p.config.SourceDir, p.config.DetailURL)
	if err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing detail pages: %w", err)
	}

	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// ChamberID reads the legislator id from a mirrored file name such as
// "Dep_Detalhe.asp?id=520068".
func (p *Processor) ChamberID(path string) (int, error) {
	name := filepath.Base(path)
	i := strings.LastIndex(name, "?")
	if i < 0 {
		return 0, fmt.Errorf("file name %q has no query", name)
	}

	query, err := url.ParseQuery(name[i+1:])
	if err != nil {
		return 0, fmt.Errorf("file name %q: %w", name, err)
	}

	id, err := strconv.Atoi(query.Get(p.config.IDParam))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("file name %q has no numeric %s", name, p.config.IDParam)
	}
	return id, nil
}

// ParseFile reads and parses one mirrored detail page.
func (p *Processor) ParseFile(path string) (*models.LegislatorRecord, error) {
	id, err := p.ChamberID(path)
	if err != nil {
		return nil, &ParseError{Path: path, Reason: "cannot determine chamber id", Cause: err}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, ChamberID: id, Reason: "cannot read page", Cause: err}
	}

	record, err := p.Parse(id, raw)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
			return nil, pe
		}
		return nil, err
	}
	return record, nil
}

// Parse builds a record from the raw Latin-1 bytes of a detail page.
func (p *Processor) Parse(chamberID int, raw []byte) (*models.LegislatorRecord, error) {
	fail := func(reason string, cause error) error {
		return &ParseError{ChamberID: chamberID, Reason: reason, Cause: cause}
	}

	markup, err := textutil.DecodeLatin1(raw)
	if err != nil {
		return nil, fail("cannot decode page", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fail("cannot parse html", err)
	}

	info := doc.Find(p.config.InfoSelector)
	if info.Length() == 0 {
		return nil, fail(fmt.Sprintf("no %s container", p.config.InfoSelector), nil)
	}
	name := info.Find(p.config.NameSelector).First()
	if name.Length() == 0 {
		return nil, fail("no political name", nil)
	}
	politicalName := strings.TrimSpace(name.Text())
	if politicalName == "" {
		return nil, fail("empty political name", nil)
	}

	paragraph := doc.Find("p").First()
	if paragraph.Length() == 0 {
		return nil, fail("no profile paragraph", nil)
	}
	fields := extractFields(textWithBreaks(paragraph))

	fullName, ok := fields[fieldFullName]
	if !ok {
		return nil, fail("no full name", nil)
	}

	record := &models.LegislatorRecord{
		ChamberID:          chamberID,
		PoliticalName:      politicalName,
		FullName:           fullName,
		Profession:         optional(fields, fieldProfession),
		PartyCode:          optional(fields, fieldPartyCode),
		StateCode:          optional(fields, fieldStateCode),
		TookSeatAs:         optional(fields, fieldTookSeatAs),
		PhoneNumber:        optional(fields, fieldPhoneNumber),
		FaxNumber:          optional(fields, fieldFaxNumber),
		SubscriptionNumber: findInMarkup(subscriptionPattern, markup),
		EmailAddress:       findInMarkup(emailPattern, markup),
		MailingAddress:     mailingAddress(doc.Find(p.config.AddressSelector).Last()),
	}

	if years, ok := fields[fieldLegislatures]; ok {
		record.Legislatures, err = parseLegislatures(years)
		if err != nil {
			return nil, fail("bad legislatures", err)
		}
	}

	return record, nil
}

// textWithBreaks returns the text of sel with every <br> as a newline.
func textWithBreaks(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find("br").ReplaceWithHtml("\n")
	return clone.Text()
}

func mailingAddress(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(textWithBreaks(sel), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
