// pkg/registry/dictionary.go
package registry

import (
	"fmt"
	"os"
	"strings"
)

// SpellDictionary maps a misspelled lowercase word to its correction.
type SpellDictionary interface {
	Correct(word string) (string, bool)
}

// Dictionary is an immutable SpellDictionary.
type Dictionary struct {
	corrections map[string]string
}

var _ SpellDictionary = (*Dictionary)(nil)

// NewDictionary copies the given corrections, keyed case-insensitively.
func NewDictionary(corrections map[string]string) *Dictionary {
	d := &Dictionary{corrections: make(map[string]string, len(corrections))}
	for k, v := range corrections {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		if k == "" || v == "" || k == v {
			continue
		}
		d.corrections[k] = v
	}
	return d
}

// DefaultDictionary returns the built-in corrections.
func DefaultDictionary() *Dictionary {
	return NewDictionary(defaultCorrections)
}

// LoadDictionary reads corrections from a YAML or JSON file and layers them
// over the built-in set.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s DictionarySchema
	if err := unmarshalByExt(path, data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, path, err)
	}
	merged := make(map[string]string, len(defaultCorrections)+len(s.Corrections))
	for k, v := range defaultCorrections {
		merged[k] = v
	}
	for k, v := range s.Corrections {
		merged[strings.ToLower(k)] = v
	}
	return NewDictionary(merged), nil
}

func (d *Dictionary) Correct(word string) (string, bool) {
	c, ok := d.corrections[strings.ToLower(word)]
	return c, ok
}

// Len returns the number of corrections.
func (d *Dictionary) Len() int {
	return len(d.corrections)
}
