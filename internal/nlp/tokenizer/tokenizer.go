// internal/nlp/tokenizer/tokenizer.go
package tokenizer

import (
	"regexp"
	"strings"
	"unicode"

	"contract-query-workers/internal/nlp/lexicon"
)

// maxPasses bounds Decompose. Every pass only splits tokens, so the fixed
// point is reached long before this.
const maxPasses = 16

// minSegment is the shortest vocabulary word used to re-segment letter runs.
const minSegment = 3

var domainPrefixes = []string{"contract", "customer", "account", "part"}

var letterDigitRe = regexp.MustCompile(`^([A-Za-z]*)([0-9]+)([A-Za-z]*)$`)

const delimiters = ";,&@#$|+*/()[]{}?!:=<>\"'"

// Tokenize splits text on delimiters and decomposes concatenated runs.
func Tokenize(text string) []string {
	return Decompose(Split(text))
}

// Split breaks text on whitespace and delimiter characters. Hyphens and dots
// only split when they are not between two alphanumerics.
func Split(text string) []string {
	runes := []rune(text)
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i, r := range runes {
		switch {
		case unicode.IsSpace(r) || strings.ContainsRune(delimiters, r):
			flush()
		case r == '-' || r == '.':
			if i > 0 && i+1 < len(runes) && isAlnum(runes[i-1]) && isAlnum(runes[i+1]) {
				cur.WriteRune(r)
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// Decompose splits concatenated tokens until nothing changes. Decompose is
// idempotent.
func Decompose(tokens []string) []string {
	cur := tokens
	for pass := 0; pass < maxPasses; pass++ {
		next := make([]string, 0, len(cur))
		changed := false
		for _, tok := range cur {
			parts := decomposeToken(tok)
			if len(parts) != 1 {
				changed = true
			}
			next = append(next, parts...)
		}
		cur = next
		if !changed {
			break
		}
	}
	if cur == nil {
		return []string{}
	}
	return cur
}

func decomposeToken(tok string) []string {
	lower := strings.ToLower(tok)
	if tok == "" || lexicon.Known(lower) {
		return []string{tok}
	}

	for _, prefix := range domainPrefixes {
		if !strings.HasPrefix(lower, prefix) || len(lower) == len(prefix) {
			continue
		}
		rest := tok[len(prefix):]
		if strings.HasPrefix(rest, "-") && len(rest) > 1 && isDigit(rune(rest[1])) {
			rest = rest[1:]
		}
		restLower := strings.ToLower(rest)
		if isDigit(rune(rest[0])) || lexicon.Known(restLower) || segment(restLower) != nil {
			return []string{tok[:len(prefix)], rest}
		}
	}

	if m := letterDigitRe.FindStringSubmatch(tok); m != nil {
		head, digits, tail := m[1], m[2], m[3]
		splitHead := head != "" && wordish(head)
		splitTail := tail != "" && wordish(tail)
		if splitHead || splitTail {
			var out []string
			if splitHead {
				out = append(out, head, digits)
			} else {
				out = append(out, head+digits)
			}
			if splitTail {
				out = append(out, tail)
			} else {
				out[len(out)-1] += tail
			}
			return out
		}
	}

	if isLetters(tok) {
		if bounds := segment(lower); bounds != nil {
			out := make([]string, 0, len(bounds))
			start := 0
			for _, end := range bounds {
				out = append(out, tok[start:end])
				start = end
			}
			return out
		}
	}
	return []string{tok}
}

func wordish(s string) bool {
	l := strings.ToLower(s)
	return lexicon.Known(l) || segment(l) != nil
}

// segment splits a lowercase letter run into at least two vocabulary words
// of minSegment letters or more. It returns the end offset of each word, or
// nil when no such split exists. Fewer, longer words win.
func segment(s string) []int {
	n := len(s)
	if n < 2*minSegment || !isLetters(s) {
		return nil
	}
	// best[i] is the fewest words covering s[:i]; -1 when impossible.
	best := make([]int, n+1)
	prev := make([]int, n+1)
	for i := 1; i <= n; i++ {
		best[i] = -1
	}
	for end := minSegment; end <= n; end++ {
		for start := end - minSegment; start >= 0; start-- {
			if best[start] < 0 || !lexicon.Known(s[start:end]) {
				continue
			}
			if c := best[start] + 1; best[end] < 0 || c < best[end] {
				best[end] = c
				prev[end] = start
			}
		}
	}
	if best[n] < 2 {
		return nil
	}
	var bounds []int
	for i := n; i > 0; i = prev[i] {
		bounds = append([]int{i}, bounds...)
	}
	return bounds
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
