// pkg/registry/schema.go
package registry

// Schema is the on-disk form of the column registry. It is read from YAML or
// JSON files and written back by the query-tool export command.
type Schema struct {
	Version     string      `json:"version" yaml:"version"`
	LastUpdated string      `json:"lastUpdated" yaml:"lastUpdated"`
	Tables      []TableSpec `json:"tables" yaml:"tables"`
}

// TableSpec describes one logical table.
type TableSpec struct {
	Name          string            `json:"name" yaml:"name"`
	PrimaryKey    string            `json:"primaryKey" yaml:"primaryKey"`
	Columns       []string          `json:"columns" yaml:"columns"`
	BusinessTerms map[string]string `json:"businessTerms" yaml:"businessTerms"`
}

// DictionarySchema is the on-disk form of the spell dictionary.
type DictionarySchema struct {
	Version     string            `json:"version" yaml:"version"`
	Corrections map[string]string `json:"corrections" yaml:"corrections"`
}
