// internal/nlp/normalizer/normalizer.go
package normalizer

import (
	"strings"
	"unicode"

	"contract-query-workers/pkg/registry"
)

// correctionBonus lifts confidence once any word was corrected.
const correctionBonus = 0.1

// Result is the spell-corrected form of a query.
type Result struct {
	Text        string
	Confidence  float64
	Corrections int
	Words       int
}

// Normalizer corrects misspellings using a SpellDictionary plus a few
// contextual overrides that run first and can veto the dictionary.
type Normalizer struct {
	dict registry.SpellDictionary
}

func New(dict registry.SpellDictionary) *Normalizer {
	return &Normalizer{dict: dict}
}

// Normalize never fails. Empty input is returned unchanged with confidence 0.
func (n *Normalizer) Normalize(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{Text: raw}
	}

	words := strings.Fields(raw)
	cores := make([]string, len(words))
	parts := make([][3]string, len(words))
	for i, w := range words {
		lead, core, trail := splitPunct(w)
		parts[i] = [3]string{lead, core, trail}
		cores[i] = strings.ToLower(core)
	}

	out := make([]string, len(words))
	corrections := 0
	for i := range words {
		lead, core, trail := parts[i][0], parts[i][1], parts[i][2]
		lower := cores[i]

		fixed, decided := contextual(i, cores)
		if !decided && n.dict != nil && lower != "" {
			if c, ok := n.dict.Correct(lower); ok {
				fixed, decided = c, true
			}
		}
		if decided && fixed != lower {
			corrections++
			out[i] = lead + fixed + trail
			continue
		}
		out[i] = lead + core + trail
	}

	return Result{
		Text:        strings.Join(out, " "),
		Confidence:  confidence(corrections, len(words)),
		Corrections: corrections,
		Words:       len(words),
	}
}

func confidence(corrections, words int) float64 {
	if words == 0 || corrections == 0 {
		return 0
	}
	c := float64(corrections)/float64(words) + correctionBonus
	if c > 1 {
		return 1
	}
	return c
}

// contextual returns the replacement for cores[i] and whether the decision is
// final. A final decision equal to the input keeps the word as is.
func contextual(i int, cores []string) (string, bool) {
	w := cores[i]
	prev, next := "", ""
	if i > 0 {
		prev = cores[i-1]
	}
	if i+1 < len(cores) {
		next = cores[i+1]
	}

	switch w {
	case "buy":
		if prev == "created" {
			return "by", true
		}
	case "4", "2":
		if isAlpha(prev) && isAlpha(next) {
			if w == "4" {
				return "for", true
			}
			return "to", true
		}
		return w, true
	case "no":
		switch next {
		case "data", "information", "info":
			return w, true
		}
	case "expiration", "expiry", "expir":
		for _, earlier := range cores[:i] {
			if earlier == "when" || earlier == "does" {
				return "expire", true
			}
		}
	case "faild":
		return "failed", true
	}
	return "", false
}

func splitPunct(w string) (lead, core, trail string) {
	runes := []rune(w)
	start, end := 0, len(runes)
	for start < end && !isWordRune(runes[start]) {
		start++
	}
	for end > start && !isWordRune(runes[end-1]) {
		end--
	}
	return string(runes[:start]), string(runes[start:end]), string(runes[end:])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
