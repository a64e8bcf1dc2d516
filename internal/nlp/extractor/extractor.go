// internal/nlp/extractor/extractor.go
package extractor

import (
	"regexp"
	"strings"
	"time"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/lexicon"
	"contract-query-workers/pkg/registry"
)

// Input is everything the extractor looks at for one query.
type Input struct {
	Original   string
	Normalized string
	Tokens     []string
	Now        time.Time
}

// Issue is a header value that was seen but rejected by its format rule.
type Issue struct {
	Field   models.HeaderField
	Value   string
	Message string
}

// Extraction is the combined output of the header and filter tracks.
type Extraction struct {
	Header  models.Header
	Filters []models.EntityFilter
	Issues  []Issue

	// Text is the text the extraction ran over. FilterSpans index into it.
	Text string
	// FilterSpans are the byte ranges of values consumed by comparison and
	// date filters. Nothing inside them is read as an identifier.
	FilterSpans []Span
}

// Span is a half-open byte range [Start, End).
type Span struct {
	Start, End int
}

// InFilter reports whether [start, end) overlaps a consumed filter value.
func (e *Extraction) InFilter(start, end int) bool {
	if start < 0 {
		return false
	}
	for _, sp := range e.FilterSpans {
		if start < sp.End && sp.Start < end {
			return true
		}
	}
	return false
}

// Extractor runs the header and filter tracks.
type Extractor struct {
	registry registry.ColumnRegistry
}

func New(reg registry.ColumnRegistry) *Extractor {
	return &Extractor{registry: reg}
}

type state struct {
	reg  registry.ColumnRegistry
	in   Input
	text string
	lex  *lexicon.Text
	out  Extraction
}

func (s *state) add(f models.EntityFilter) {
	s.out.Filters = append(s.out.Filters, f)
}

// consume marks text[start:end] as a filter value. Negative offsets come
// from unmatched optional groups and are ignored.
func (s *state) consume(start, end int) {
	if start < 0 || end <= start {
		return
	}
	s.out.FilterSpans = append(s.out.FilterSpans, Span{Start: start, End: end})
}

func (s *state) issue(field models.HeaderField, value, msg string) {
	s.out.Issues = append(s.out.Issues, Issue{Field: field, Value: value, Message: msg})
}

// Extract never fails; unusable evidence is dropped or reported as an Issue.
func (e *Extractor) Extract(in Input) Extraction {
	text := in.Normalized
	if text == "" {
		text = in.Original
	}
	s := &state{
		reg:  e.registry,
		in:   in,
		text: text,
		lex:  lexicon.Analyze(text),
		out:  Extraction{Filters: []models.EntityFilter{}, Text: text},
	}

	// Filter values first so the header track can skip them.
	s.comparisons()
	s.flags()
	s.dates()
	s.status()

	s.headerTrack()

	// Rules only fill what the header track left open.
	h := &s.out.Header
	if part, ok := s.partNumber(); ok {
		h.Fill(models.FieldPartNumber, part)
	}
	if customer, ok := s.customerNumber(); ok {
		h.Fill(models.FieldCustomerNumber, customer)
	}
	if contract, ok := s.contractNumber(h.CustomerNumber); ok {
		h.Fill(models.FieldContractNumber, contract)
	}

	if h.PartNumber != "" {
		s.add(models.NewFilter(models.AttrPartNumber, models.OpEquals, h.PartNumber))
	}
	if h.ContractNumber != "" {
		s.add(models.NewFilter(models.AttrContractNumber, models.OpEquals, h.ContractNumber))
	}
	if h.CustomerNumber != "" {
		s.add(models.NewFilter(models.AttrCustomerNumber, models.OpEquals, h.CustomerNumber))
	}
	if h.CreatedBy != "" {
		s.add(models.NewFilter(models.AttrCreatedBy, models.OpEquals, h.CreatedBy))
	}
	if h.CustomerName != "" {
		s.add(models.NewFilter(models.AttrCustomerName, models.OpEquals, h.CustomerName))
	}

	s.out.Filters = dedupe(dropInvalidIdentifiers(s.out.Filters))
	return s.out
}

var (
	contractFormat = regexp.MustCompile(`^\d{6,}$`)
	partFormat     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_/-]{2,}$`)
	customerFormat = regexp.MustCompile(`^\d{4,8}$`)
)

// ValidContractNumber reports whether s is six or more digits.
func ValidContractNumber(s string) bool { return contractFormat.MatchString(s) }

// ValidPartNumber reports whether s is three or more alphanumerics.
func ValidPartNumber(s string) bool { return partFormat.MatchString(s) }

// ValidCustomerNumber reports whether s is four to eight digits.
func ValidCustomerNumber(s string) bool { return customerFormat.MatchString(s) }

func dropInvalidIdentifiers(filters []models.EntityFilter) []models.EntityFilter {
	out := filters[:0:0]
	for _, f := range filters {
		switch f.Attribute {
		case models.AttrContractNumber:
			if !ValidContractNumber(f.Value) {
				continue
			}
		case models.AttrPartNumber:
			if !ValidPartNumber(f.Value) {
				continue
			}
		case models.AttrCustomerNumber:
			if !ValidCustomerNumber(f.Value) {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

func dedupe(filters []models.EntityFilter) []models.EntityFilter {
	type key struct {
		attr  string
		op    models.Operation
		value string
	}
	seen := make(map[key]struct{}, len(filters))
	out := make([]models.EntityFilter, 0, len(filters))
	for _, f := range filters {
		k := key{f.Attribute, f.Operation, strings.ToUpper(f.Value)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}
