// internal/nlp/pipeline/codec.go
package pipeline

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"contract-query-workers/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

var ErrParse = errors.New(models.CodeParseError)

//go:embed query_result.schema.json
var resultSchemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func resultSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(resultSchemaJSON))
	})
	return compiledSchema, schemaErr
}

// ResultSchema returns the JSON Schema documents are checked against.
func ResultSchema() []byte {
	return append([]byte(nil), resultSchemaJSON...)
}

// Encode serializes a result in the wire format.
func Encode(result *models.QueryResult) ([]byte, error) {
	if result == nil {
		return nil, errors.New("encode: nil result")
	}
	return json.Marshal(result)
}

// Decode parses a wire document. Malformed JSON and schema violations are
// reported as ErrParse.
func Decode(data []byte) (*models.QueryResult, error) {
	schema, err := resultSchema()
	if err != nil {
		return nil, fmt.Errorf("load result schema: %w", err)
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if !res.Valid() {
		msgs := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			msgs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrParse, strings.Join(msgs, "; "))
	}

	var result models.QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &result, nil
}
