// internal/nlp/extractor/header.go
package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/lexicon"
)

var (
	digitsRe       = regexp.MustCompile(`^\d+$`)
	longNumberRe   = regexp.MustCompile(`\d{6,}`)
	createdByRe    = regexp.MustCompile(`(?i)\bcreated\s+(?:[a-z]+\s+)?by\s+([A-Za-z][A-Za-z.'-]*(?:\s+[A-Za-z][A-Za-z.'-]*)?)`)
	quotedRe       = regexp.MustCompile(`(?:^|\s)["']([^"']{2,})["'](?:$|\s|[?.!,])`)
	customerNameRe = regexp.MustCompile(`(?i)\b(?:customer|account|client)\s+name\s+(?:is\s+|=\s*)?([A-Za-z][\w&.-]*(?:\s+[A-Za-z][\w&.-]*)?)`)
	underNameRe    = regexp.MustCompile(`(?i)\bunder\s+([A-Za-z][\w&.-]*)`)
)

// skipWords may sit between a domain word and its value.
var skipWords = map[string]struct{}{"number": {}, "no": {}, "num": {}, "id": {}}

var contractHeads = map[string]struct{}{"contract": {}, "contracts": {}, "award": {}, "agreement": {}}
var customerHeads = map[string]struct{}{"customer": {}, "customers": {}, "account": {}, "accounts": {}, "client": {}}

// nonNames are words that can follow "customer" without being a name.
var nonNames = map[string]struct{}{
	"details": {}, "detail": {}, "info": {}, "information": {}, "name": {}, "names": {},
	"number": {}, "numbers": {}, "summary": {}, "contracts": {}, "contract": {}, "data": {},
	"list": {}, "group": {}, "type": {}, "status": {}, "parts": {},
}

// headerTrack walks tokens and assigns header fields from "domain word +
// value" pairs and bare numbers.
func (s *state) headerTrack() {
	tokens := s.in.Tokens
	lower := make([]string, len(tokens))
	for i, t := range tokens {
		lower[i] = strings.ToLower(t)
	}
	used := make([]bool, len(tokens))
	offsets := tokenOffsets(s.text, tokens)
	h := &s.out.Header

	inFilter := func(i int) bool {
		return s.out.InFilter(offsets[i], offsets[i]+len(tokens[i]))
	}

	valueAfter := func(i int) int {
		j := i + 1
		for j < len(lower) {
			if _, skip := skipWords[lower[j]]; !skip {
				return j
			}
			j++
		}
		return -1
	}

	for i, w := range lower {
		var j int
		switch {
		case isHead(contractHeads, w):
			if j = valueAfter(i); j < 0 || !digitsRe.MatchString(tokens[j]) || inFilter(j) {
				continue
			}
			if ValidContractNumber(tokens[j]) {
				h.Fill(models.FieldContractNumber, tokens[j])
			} else {
				s.issue(models.FieldContractNumber, tokens[j], fmt.Sprintf("Contract number '%s' must be 6+ digits", tokens[j]))
			}
			used[j] = true
		case w == "part":
			if j = valueAfter(i); j < 0 || !hasDigit(tokens[j]) || inFilter(j) {
				continue
			}
			v := strings.TrimRight(tokens[j], "-/_")
			if ValidPartNumber(v) {
				h.Fill(models.FieldPartNumber, strings.ToUpper(v))
			} else {
				s.issue(models.FieldPartNumber, v, fmt.Sprintf("Part number '%s' must be 3+ alphanumeric characters", v))
			}
			used[j] = true
		case isHead(customerHeads, w):
			if j = valueAfter(i); j < 0 {
				continue
			}
			if digitsRe.MatchString(tokens[j]) {
				if inFilter(j) {
					continue
				}
				if ValidCustomerNumber(tokens[j]) {
					h.Fill(models.FieldCustomerNumber, tokens[j])
				} else {
					s.issue(models.FieldCustomerNumber, tokens[j], fmt.Sprintf("Customer number '%s' must be 4-8 digits", tokens[j]))
				}
				used[j] = true
			}
		}
	}

	customerCtx := s.lex.HasAny(lexicon.CustomerWords...) && !s.lex.HasAny("contract", "contracts")
	for i, t := range tokens {
		if used[i] || !digitsRe.MatchString(t) || inFilter(i) {
			continue
		}
		switch {
		case customerCtx && ValidCustomerNumber(t):
			h.Fill(models.FieldCustomerNumber, t)
		case ValidContractNumber(t) && t != h.CustomerNumber:
			h.Fill(models.FieldContractNumber, t)
		}
	}

	if h.ContractNumber == "" {
		for _, loc := range longNumberRe.FindAllStringIndex(s.text, -1) {
			if n := s.text[loc[0]:loc[1]]; !s.out.InFilter(loc[0], loc[1]) && n != h.CustomerNumber {
				h.Fill(models.FieldContractNumber, n)
				break
			}
		}
	}

	s.names()
}

func isHead(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

// names extracts the creator and customer name.
func (s *state) names() {
	h := &s.out.Header
	if m := createdByRe.FindStringSubmatch(s.text); m != nil {
		h.Fill(models.FieldCreatedBy, trimName(m[1]))
	}

	if m := customerNameRe.FindStringSubmatch(s.text); m != nil {
		h.Fill(models.FieldCustomerName, trimName(m[1]))
	}
	if s.lex.HasAny(lexicon.CustomerWords...) {
		if m := quotedRe.FindStringSubmatch(s.text); m != nil {
			h.Fill(models.FieldCustomerName, strings.TrimSpace(m[1]))
		}
		s.customerAfterHead()
	}
	if m := underNameRe.FindStringSubmatch(s.text); m != nil && s.lex.HasAny(lexicon.ContractWords...) {
		if v := m[1]; !lexicon.IsStopword(v) && !isNonName(v) && !hasDigit(v) {
			h.Fill(models.FieldCustomerName, v)
		}
	}
}

// customerAfterHead handles "customer siemens" style phrasing.
func (s *state) customerAfterHead() {
	words := s.lex.Words
	for i := 0; i+1 < len(words); i++ {
		if !isHead(customerHeads, words[i]) {
			continue
		}
		next := words[i+1]
		if lexicon.IsStopword(next) || isNonName(next) || hasDigit(next) {
			continue
		}
		if _, skip := skipWords[next]; skip {
			continue
		}
		s.out.Header.Fill(models.FieldCustomerName, originalCase(s.text, next))
		return
	}
}

func isNonName(w string) bool {
	_, ok := nonNames[strings.ToLower(w)]
	return ok
}

// trimName keeps at most two words and cuts at the first stopword.
func trimName(raw string) string {
	var kept []string
	for _, w := range strings.Fields(raw) {
		if lexicon.IsStopword(w) || len(kept) == 2 {
			break
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// originalCase finds word in text case-insensitively and returns it as the
// user wrote it.
func originalCase(text, word string) string {
	for from := 0; ; {
		i := indexFold(text, word, from)
		if i < 0 {
			return word
		}
		end := i + len(word)
		if (i == 0 || !isWordByte(text[i-1])) && (end == len(text) || !isWordByte(text[end])) {
			return text[i:end]
		}
		from = i + 1
	}
}

// tokenOffsets locates each token in text, left to right. A token that
// cannot be found gets -1.
func tokenOffsets(text string, tokens []string) []int {
	offsets := make([]int, len(tokens))
	cursor := 0
	for i, t := range tokens {
		k := indexFold(text, t, cursor)
		offsets[i] = k
		if k >= 0 {
			cursor = k + len(t)
		}
	}
	return offsets
}

// indexFold is a case-insensitive strings.Index starting at from.
func indexFold(text, sub string, from int) int {
	if sub == "" {
		return -1
	}
	for i := from; i+len(sub) <= len(text); i++ {
		if strings.EqualFold(text[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
