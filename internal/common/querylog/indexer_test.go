// internal/common/querylog/indexer_test.go
package querylog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contract-query-workers/internal/common/config"
	"contract-query-workers/internal/common/database"
	apperrors "contract-query-workers/internal/common/errors"
	"contract-query-workers/internal/common/logger"
	"contract-query-workers/internal/nlp/pipeline"
	"contract-query-workers/pkg/registry"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)

type recordingWriter struct {
	index, id string
	body      []byte
	err       error
}

func (w *recordingWriter) IndexDocument(_ context.Context, index, id string, body []byte) error {
	w.index, w.id, w.body = index, id, body
	return w.err
}

func newIndexer(t *testing.T, w Writer) *Indexer {
	i := New(w, "contract-queries", logger.NewTestLogger(t))
	i.now = func() time.Time { return testNow }
	return i
}

func TestIndexer_Index(t *testing.T) {
	w := &recordingWriter{}
	result := pipeline.NewProcessor(registry.Default(), registry.DefaultDictionary()).
		ProcessAt("show contrat 100476 staus", testNow)

	id, err := newIndexer(t, w).Index(context.Background(), Entry{SessionID: "s-1", Channel: ChannelAPI, Result: result})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
	assert.Equal(t, "contract-queries", w.index)
	assert.Equal(t, id, w.id)

	var doc Document
	require.NoError(t, json.Unmarshal(w.body, &doc))
	assert.Equal(t, id, doc.QueryID)
	assert.Equal(t, "s-1", doc.SessionID)
	assert.Equal(t, ChannelAPI, doc.Channel)
	assert.True(t, testNow.Equal(doc.Timestamp))
	assert.Equal(t, "CONTRACTS", doc.QueryType)
	assert.True(t, doc.Corrected)
	assert.False(t, doc.HasBlockers)

	decoded, err := pipeline.Decode(doc.Result)
	require.NoError(t, err)
	assert.Equal(t, result.Header, decoded.Header)
}

func TestIndexer_KeepsGivenQueryID(t *testing.T) {
	w := &recordingWriter{}
	result := pipeline.NewProcessor(registry.Default(), registry.DefaultDictionary()).ProcessAt("hello", testNow)

	id, err := newIndexer(t, w).Index(context.Background(), Entry{QueryID: "q-42", Channel: ChannelWorker, Result: result})
	require.NoError(t, err)
	assert.Equal(t, "q-42", id)
	assert.Equal(t, "q-42", w.id)
}

func TestIndexer_Errors(t *testing.T) {
	_, err := newIndexer(t, &recordingWriter{}).Index(context.Background(), Entry{Channel: ChannelCLI})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeQueryLogFailed, apperrors.Normalize(err).Code)

	result := pipeline.NewProcessor(registry.Default(), registry.DefaultDictionary()).ProcessAt("hello", testNow)
	_, err = newIndexer(t, &recordingWriter{err: assert.AnError}).Index(context.Background(), Entry{Result: result})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeQueryLogFailed, apperrors.Normalize(err).Code)
}

func TestIndexer_Elasticsearch(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer srv.Close()

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	result := pipeline.NewProcessor(registry.Default(), registry.DefaultDictionary()).
		ProcessAt("Show contract 100476 details", testNow)
	id, err := newIndexer(t, es).Index(context.Background(), Entry{Channel: ChannelWorker, Result: result})
	require.NoError(t, err)

	assert.Equal(t, "/contract-queries/_doc/"+id, path)
	assert.True(t, strings.Contains(body, `"actionType":"contracts_by_contractnumber"`))
}
