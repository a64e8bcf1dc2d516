// internal/nlp/extractor/identifiers.go
package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"contract-query-workers/internal/nlp/lexicon"
)

// idRule is one pattern in a stop-on-first-accepted-match cascade. The
// first submatch group, or the whole match when there is none, is the
// candidate.
type idRule struct {
	name string
	re   *regexp.Regexp
}

// candidate is a rule match and its byte range in the text.
type candidate struct {
	value      string
	start, end int
}

func (r idRule) candidates(text string) []candidate {
	var out []candidate
	for _, m := range r.re.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if len(m) > 2 {
			start, end = m[2], m[3]
		}
		out = append(out, candidate{value: text[start:end], start: start, end: end})
	}
	return out
}

// firstAccepted runs rules in order and returns the first candidate accept
// keeps.
func firstAccepted(rules []idRule, text string, accept func(candidate) (string, bool)) (string, bool) {
	for _, r := range rules {
		for _, c := range r.candidates(text) {
			if v, ok := accept(c); ok {
				return v, true
			}
		}
	}
	return "", false
}

var partRules = []idRule{
	{"part-prefixed", regexp.MustCompile(`(?i)\bpart\s+(?:number\s+|no\.?\s+|#\s*)?([A-Za-z0-9][A-Za-z0-9_/-]{2,})`)},
	{"two-letters-five-digits", regexp.MustCompile(`\b[A-Za-z]{2}\d{5}\b`)},
	{"two-letters-digits", regexp.MustCompile(`\b[A-Za-z]{2}\d{4,6}\b`)},
	{"letter-digits", regexp.MustCompile(`\b[A-Za-z]\d{4,8}\b`)},
	{"digits-letters", regexp.MustCompile(`\b\d{4,8}[A-Za-z]{1,3}\b`)},
	{"letters-dash-digits", regexp.MustCompile(`\b[A-Za-z]{3,4}-\d{3,6}\b`)},
}

var contractRules = []idRule{
	{"contract-prefixed", regexp.MustCompile(`(?i)\b(?:contract|award|agreement)s?\s*(?:number|no\.?|#|id)?\s*[:#-]?\s*(\d{6,})\b`)},
	{"preposition", regexp.MustCompile(`(?i)\b(?:for|of|in|on)\s+(\d{6,})\b`)},
	{"before-keyword", regexp.MustCompile(`(?i)\b(\d{6,})\s*(?:details|info|information|status|summary|contract)\b`)},
	{"bare", regexp.MustCompile(`\b(\d{6,})\b`)},
}

var customerRules = []idRule{
	{"customer-prefixed", regexp.MustCompile(`(?i)\b(?:customer|account|client)s?\s*(?:number|no\.?|#|id)?\s*[:#]?\s*(\d{4,8})\b`)},
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// partNumber runs the part rules over the text. Only one part number is
// ever accepted.
func (s *state) partNumber() (string, bool) {
	return firstAccepted(partRules, s.text, func(c candidate) (string, bool) {
		v := strings.TrimRight(c.value, "-/_")
		if !hasDigit(v) || lexicon.IsStopword(v) || lexicon.Known(v) || s.out.InFilter(c.start, c.end) {
			return "", false
		}
		if !ValidPartNumber(v) || isYear(v) {
			return "", false
		}
		return strings.ToUpper(v), true
	})
}

// contractNumber runs the contract rules, skipping filter values and the
// customer number.
func (s *state) contractNumber(customer string) (string, bool) {
	return firstAccepted(contractRules, s.text, func(c candidate) (string, bool) {
		if s.out.InFilter(c.start, c.end) || c.value == customer || !ValidContractNumber(c.value) {
			return "", false
		}
		return c.value, true
	})
}

func (s *state) customerNumber() (string, bool) {
	return firstAccepted(customerRules, s.text, func(c candidate) (string, bool) {
		if s.out.InFilter(c.start, c.end) || !ValidCustomerNumber(c.value) {
			return "", false
		}
		return c.value, true
	})
}

var yearRe = regexp.MustCompile(`^(?:19|20)\d{2}$`)

func isYear(s string) bool {
	return yearRe.MatchString(s)
}
