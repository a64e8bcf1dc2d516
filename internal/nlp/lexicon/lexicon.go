// internal/nlp/lexicon/lexicon.go
//
// Package lexicon holds the keyword sets shared by the query understanding
// stages and a small word-level view of a query used to test them.
package lexicon

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// Text is a lowercased, word-split view of a query.
type Text struct {
	Lower string
	Words []string
	set   map[string]int
}

// Analyze builds the word view of a query.
func Analyze(s string) *Text {
	lower := strings.ToLower(s)
	words := wordRe.FindAllString(lower, -1)
	set := make(map[string]int, len(words))
	for _, w := range words {
		set[w]++
	}
	return &Text{Lower: lower, Words: words, set: set}
}

// Has reports whether the word occurs.
func (t *Text) Has(word string) bool {
	return t.set[word] > 0
}

// HasAny reports whether any of the words occurs.
func (t *Text) HasAny(words ...string) bool {
	for _, w := range words {
		if t.set[w] > 0 {
			return true
		}
	}
	return false
}

// Count sums the occurrences of the words.
func (t *Text) Count(words ...string) int {
	n := 0
	for _, w := range words {
		n += t.set[w]
	}
	return n
}

// HasPrefix reports whether any word starts with the prefix.
func (t *Text) HasPrefix(prefix string) bool {
	for _, w := range t.Words {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}

// Phrase reports whether the words of phrase occur consecutively.
func (t *Text) Phrase(phrase string) bool {
	return t.PhraseCount(phrase) > 0
}

// PhraseCount counts consecutive occurrences of the words of phrase.
func (t *Text) PhraseCount(phrase string) int {
	want := strings.Fields(strings.ToLower(phrase))
	if len(want) == 0 {
		return 0
	}
	n := 0
	for i := 0; i+len(want) <= len(t.Words); i++ {
		match := true
		for j, w := range want {
			if t.Words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

// Index returns the position of the first occurrence of word, or -1.
func (t *Text) Index(word string) int {
	for i, w := range t.Words {
		if w == word {
			return i
		}
	}
	return -1
}

var (
	PartsWords         = []string{"part", "parts", "component", "components", "item", "items"}
	ContractWords      = []string{"contract", "contracts", "agreement", "agreements", "deal", "deals", "terms", "award", "awards"}
	CustomerWords      = []string{"customer", "customers", "account", "accounts", "client", "clients"}
	CreateWords        = []string{"create", "make", "generate", "build", "draft", "setup"}
	HelpWords          = []string{"how", "help", "steps", "guide", "instructions", "instruction", "explain", "process", "tutorial", "procedure"}
	UpdateWords        = []string{"update", "modify", "change", "edit", "amend"}
	FailedWords        = []string{"fail", "fails", "failed", "failure", "failures", "failing", "error", "errors", "errored", "faulty", "rejected"}
	PartAttributeWords = []string{"price", "prices", "pricing", "cost", "moq", "uom"}
	StatusWords        = []string{"active", "inactive", "expired", "pending"}
)

// PartAttributePhrases are multi-word part attributes.
var PartAttributePhrases = []string{
	"lead time", "unit of measure", "minimum order", "min order", "item classification",
}

// MentionsFailedParts reports whether the query asks about parts that failed
// loading or validation. A bare "failed status" on contracts does not count.
func MentionsFailedParts(t *Text) bool {
	if t.Phrase("validation failure") || t.Phrase("validation failures") || t.Phrase("loading error") {
		return true
	}
	if !t.HasAny(FailedWords...) {
		return false
	}
	if t.Has("status") && !t.HasAny(PartsWords...) {
		return false
	}
	return true
}

// MentionsPartAttribute reports whether a per-part attribute is named.
func MentionsPartAttribute(t *Text) bool {
	if t.HasAny(PartAttributeWords...) || t.Has("leadtime") {
		return true
	}
	for _, p := range PartAttributePhrases {
		if t.Phrase(p) {
			return true
		}
	}
	return false
}

// MentionsExpiration reports whether any word starts with "expir".
func MentionsExpiration(t *Text) bool {
	return t.HasPrefix("expir")
}

// MentionsPriceExpiration reports a price expiration question.
func MentionsPriceExpiration(t *Text) bool {
	return t.HasAny("price", "pricing", "prices") && MentionsExpiration(t)
}

var domainWords = []string{
	"contract", "contracts", "part", "parts", "customer", "customers", "account", "accounts",
	"agreement", "agreements", "price", "pricing", "status", "expire", "expired", "expiring",
	"expiration", "effective", "created", "invoice", "moq", "uom", "failed", "award", "awards",
}

// HasDomainKeyword reports whether the query mentions anything in the
// contracts and parts domain.
func HasDomainKeyword(t *Text) bool {
	return t.HasAny(domainWords...) || MentionsPartAttribute(t)
}

// Stopwords cut free-text captures such as creator names and contract types.
var Stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "for": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "by": {}, "with": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"after": {}, "before": {}, "since": {}, "during": {}, "between": {}, "this": {}, "last": {},
	"next": {}, "that": {}, "which": {}, "who": {}, "what": {}, "where": {}, "when": {}, "from": {},
	"contract": {}, "contracts": {}, "part": {}, "parts": {}, "show": {}, "list": {}, "me": {},
	"all": {}, "any": {}, "please": {}, "year": {}, "month": {}, "today": {}, "yesterday": {},
}

// IsStopword reports whether w is in Stopwords.
func IsStopword(w string) bool {
	_, ok := Stopwords[strings.ToLower(w)]
	return ok
}

// Vocabulary is the set of known words the tokenizer segments against.
var Vocabulary = toSet(
	"contract", "contracts", "customer", "customers", "account", "accounts", "part", "parts",
	"number", "numbers", "status", "details", "detail", "info", "information", "summary",
	"price", "prices", "pricing", "cost", "lead", "time", "date", "dates", "name", "names",
	"type", "types", "expire", "expired", "expiring", "expiration", "effective", "active",
	"inactive", "pending", "failed", "error", "errors", "created", "create", "show", "list",
	"get", "find", "all", "for", "with", "under", "siemens", "boeing", "honeywell", "payment",
	"terms", "incoterms", "length", "moq", "uom", "invoice", "award", "line", "min", "order",
	"rebate", "program", "the", "and", "by", "of", "in", "on", "me", "what", "who", "when",
)

// Known reports whether the lowercase word is in Vocabulary.
func Known(w string) bool {
	_, ok := Vocabulary[strings.ToLower(w)]
	return ok
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
