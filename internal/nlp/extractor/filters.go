// internal/nlp/extractor/filters.go
package extractor

import (
	"regexp"
	"strings"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/lexicon"
	"contract-query-workers/pkg/registry"
)

var (
	termComparisonRe   = regexp.MustCompile(`(?i)\b(rebates?|line\s+min(?:imum)?|order\s+min(?:imum)?|min(?:imum)?\s+order(?:\s+(?:qty|quantity))?|moq|uom|unit\s+of\s+measure|lead\s*times?|price|pricing|cost|eau)\s*(>=|<=|=|>|<|greater\s+than\s+or\s+equal\s+to|less\s+than\s+or\s+equal\s+to|at\s+least|at\s+most|greater\s+than|more\s+than|less\s+than|over|above|below|under|equals?(?:\s+to)?|is)\s*\$?(\d+(?:\.\d+)?)\b`)
	columnComparisonRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]*(?:_[A-Z0-9]+)+)\s*(>=|<=|=|>|<)\s*'?([A-Za-z0-9][A-Za-z0-9._-]*)'?`)
	statusComparisonRe = regexp.MustCompile(`(?i)\bstatus\s*(?:=|is|equals?)\s*(active|inactive|expired|pending|failed|draft)\b`)

	flagRe         = regexp.MustCompile(`(?i)\b(vmi|cmi|kitting|edi|consignment|bailment)\s+(?:enabled|contracts?|only|required|applies)\b`)
	programRe      = regexp.MustCompile(`(?i)\bprogram\s+contracts?\b`)
	contractTypeRe = regexp.MustCompile(`(?i)\btype\s+(?:is\s+|=\s*)?([A-Za-z][A-Za-z0-9_-]*)`)
)

// lookupTables is the order in which business terms are resolved.
var lookupTables = []string{registry.TableContracts, registry.TableParts, registry.TableFailedParts}

func operationFor(op string) models.Operation {
	op = strings.Join(strings.Fields(strings.ToLower(op)), " ")
	switch op {
	case ">=", "at least", "greater than or equal to":
		return models.OpGreaterEqual
	case "<=", "at most", "less than or equal to":
		return models.OpLessEqual
	case ">", "greater than", "more than", "over", "above":
		return models.OpGreater
	case "<", "less than", "below", "under":
		return models.OpLess
	}
	return models.OpEquals
}

// columnForTerm maps colloquial field names onto a registered column.
func (s *state) columnForTerm(term string) (string, bool) {
	term = strings.Join(strings.Fields(strings.ToLower(term)), " ")
	if strings.HasPrefix(term, "lead") {
		term = "lead time"
	}
	candidates := []string{term}
	if strings.HasSuffix(term, "s") {
		candidates = append(candidates, strings.TrimSuffix(term, "s"))
	}
	for _, table := range lookupTables {
		for _, c := range candidates {
			if col, ok := s.reg.ColumnForBusinessTerm(table, c); ok {
				return col, true
			}
		}
	}
	return "", false
}

// comparisons handles explicit "FIELD op value" phrases.
func (s *state) comparisons() {
	for _, m := range termComparisonRe.FindAllStringSubmatchIndex(s.text, -1) {
		col, ok := s.columnForTerm(s.text[m[2]:m[3]])
		if !ok {
			continue
		}
		s.add(models.EntityFilter{
			Attribute: col,
			Operation: operationFor(s.text[m[4]:m[5]]),
			Value:     s.text[m[6]:m[7]],
			Source:    models.SourceUserInput,
		})
		s.consume(m[6], m[7])
	}
	for _, m := range columnComparisonRe.FindAllStringSubmatchIndex(s.text, -1) {
		s.add(models.EntityFilter{
			Attribute: s.text[m[2]:m[3]],
			Operation: operationFor(s.text[m[4]:m[5]]),
			Value:     s.text[m[6]:m[7]],
			Source:    models.SourceUserInput,
		})
		s.consume(m[6], m[7])
	}
	if m := statusComparisonRe.FindStringSubmatch(s.text); m != nil {
		s.add(models.EntityFilter{
			Attribute: models.AttrStatus,
			Operation: models.OpEquals,
			Value:     strings.ToUpper(m[1]),
			Source:    models.SourceUserInput,
		})
	}
}

// flags handles boolean phrases and contract type.
func (s *state) flags() {
	for _, m := range flagRe.FindAllStringSubmatch(s.text, -1) {
		s.add(models.EntityFilter{
			Attribute: strings.ToUpper(m[1]),
			Operation: models.OpEquals,
			Value:     "true",
			Source:    models.SourceUserInput,
		})
	}
	if programRe.MatchString(s.text) {
		s.add(models.EntityFilter{Attribute: "IS_PROGRAM", Operation: models.OpEquals, Value: "true", Source: models.SourceUserInput})
	}
	if lexicon.MentionsFailedParts(s.lex) {
		s.add(models.EntityFilter{Attribute: models.AttrHasFailedParts, Operation: models.OpEquals, Value: "true", Source: models.SourceUserInput})
	}
	for _, m := range contractTypeRe.FindAllStringSubmatch(s.text, -1) {
		v := m[1]
		if lexicon.IsStopword(v) || (lexicon.Known(v) && !isUpper(v)) {
			continue
		}
		s.add(models.NewFilter("CONTRACT_TYPE", models.OpEquals, strings.ToUpper(v)))
		break
	}
}

var statusRules = []struct {
	re    *regexp.Regexp
	value string
}{
	{regexp.MustCompile(`(?i)\binactive\b`), "INACTIVE"},
	{regexp.MustCompile(`(?i)\bactive\b`), "ACTIVE"},
	{regexp.MustCompile(`(?i)\bexpired\b`), "EXPIRED"},
	{regexp.MustCompile(`(?i)\bpending\b`), "PENDING"},
}

// status adds at most one STATUS filter. "failed" counts only next to the
// word "status", otherwise it means failed parts.
func (s *state) status() {
	for _, f := range s.out.Filters {
		if f.Attribute == models.AttrStatus {
			return
		}
	}
	for _, r := range statusRules {
		if r.re.MatchString(s.text) {
			s.add(models.NewFilter(models.AttrStatus, models.OpEquals, r.value))
			return
		}
	}
	if s.lex.Has("failed") && s.lex.Has("status") && !lexicon.MentionsFailedParts(s.lex) {
		s.add(models.NewFilter(models.AttrStatus, models.OpEquals, "FAILED"))
	}
}

func isUpper(s string) bool {
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}
