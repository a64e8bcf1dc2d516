// internal/nlp/tokenizer/tokenizer_test.go
package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"spaces", "show contract 100476", []string{"show", "contract", "100476"}},
		{"question mark", "contract 100476?", []string{"contract", "100476"}},
		{"hyphen inside identifier", "part EN6114V4-13 now", []string{"part", "EN6114V4-13", "now"}},
		{"dangling hyphen", "part - 13", []string{"part", "13"}},
		{"decimal", "price > 2.5", []string{"price", "2.5"}},
		{"sentence dot", "show contract 100476.", []string{"show", "contract", "100476"}},
		{"delimiters", "a;b,c&d@e#f$g|h+i*j/k(l)m[n]o{p}q!r:s=t<u>v\"w'x",
			[]string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Split(tt.input))
		})
	}
}

func TestTokenize_Decomposition(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"prefix and digits", "contract100476", []string{"contract", "100476"}},
		{"prefix digits word", "contract123status", []string{"contract", "123", "status"}},
		{"digits then word", "100476details", []string{"100476", "details"}},
		{"prefix known word", "partnumber", []string{"part", "number"}},
		{"customer prefix", "customer12345", []string{"customer", "12345"}},
		{"prefix hyphen digits", "contract-100476", []string{"contract", "100476"}},
		{"vocabulary segmentation", "siemensunder", []string{"siemens", "under"}},
		{"word and digits", "parts123", []string{"parts", "123"}},
		{"part code intact", "AB12345", []string{"AB12345"}},
		{"mixed identifier intact", "EN6114V4-13", []string{"EN6114V4-13"}},
		{"known word intact", "contracts", []string{"contracts"}},
		{"unknown word intact", "partial", []string{"partial"}},
		{"case preserved", "Contract100476", []string{"Contract", "100476"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestDecompose_Idempotent(t *testing.T) {
	inputs := []string{
		"Show contract100476details for siemensunder",
		"What is the lead time for part EN6114V4-13 in contract 100476?",
		"customer12345 partnumber AB12345 100476status",
		"",
	}

	for _, in := range inputs {
		once := Tokenize(in)
		twice := Decompose(once)
		assert.Equal(t, once, twice, in)
	}
}

func TestDecompose_EmptyNeverNil(t *testing.T) {
	assert.NotNil(t, Decompose(nil))
	assert.Empty(t, Decompose(nil))
}
