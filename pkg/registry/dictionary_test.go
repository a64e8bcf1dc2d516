// pkg/registry/dictionary_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDictionary_Correct(t *testing.T) {
	d := DefaultDictionary()

	tests := []struct {
		word string
		want string
		ok   bool
	}{
		{"ctrct", "contract", true},
		{"KONTRACT", "contract", true},
		{"staus", "status", true},
		{"faild", "failed", true},
		{"no", "number", true},
		{"contract", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, ok := d.Correct(tt.word)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDictionary_SkipsIdentity(t *testing.T) {
	d := NewDictionary(map[string]string{"same": "same", "": "x", "Teh": "The"})
	assert.Equal(t, 1, d.Len())
	got, ok := d.Correct("teh")
	assert.True(t, ok)
	assert.Equal(t, "the", got)
}

func TestLoadDictionary_MergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dictionary.yaml")
	content := "version: \"1\"\ncorrections:\n  partz: parts\n  pls: please\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := LoadDictionary(path)
	require.NoError(t, err)

	got, ok := d.Correct("partz")
	assert.True(t, ok)
	assert.Equal(t, "parts", got)

	got, ok = d.Correct("ctrct")
	assert.True(t, ok)
	assert.Equal(t, "contract", got)
}

func TestLoadDictionary_Missing(t *testing.T) {
	_, err := LoadDictionary(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
