// internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contract-query-workers/internal/common/logger"
	"contract-query-workers/internal/nlp/pipeline"
	"contract-query-workers/internal/session"
	"contract-query-workers/pkg/registry"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC) }

func newTestServer(t *testing.T, probes map[string]Pinger) (*Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg := registry.Default()
	s := New(Options{
		ServiceName: "api-test",
		Interpreter: pipeline.NewProcessor(reg, registry.DefaultDictionary(), pipeline.WithClock(fixedClock{})),
		Registry:    reg,
		Sessions:    session.NewStore(rdb, "query-session", 30*time.Minute),
		Probes:      probes,
	}, logger.NewNoOpLogger())
	return s, mr
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ==========================
// Probe Tests
// ==========================

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestServer_Ready(t *testing.T) {
	tests := []struct {
		name   string
		probes map[string]Pinger
		status int
		state  string
	}{
		{
			name:   "no dependencies",
			status: http.StatusOK,
			state:  "ready",
		},
		{
			name: "all healthy",
			probes: map[string]Pinger{
				"postgres": pingFunc(func(context.Context) error { return nil }),
				"redis":    pingFunc(func(context.Context) error { return nil }),
			},
			status: http.StatusOK,
			state:  "ready",
		},
		{
			name: "one down",
			probes: map[string]Pinger{
				"postgres":      pingFunc(func(context.Context) error { return nil }),
				"elasticsearch": pingFunc(func(context.Context) error { return errors.New("connection refused") }),
			},
			status: http.StatusServiceUnavailable,
			state:  "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.probes)
			rec := do(t, s, http.MethodGet, "/ready", nil)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.state, body["status"])
			if tt.status != http.StatusOK {
				checks := body["checks"].(map[string]interface{})
				assert.Equal(t, "connection refused", checks["elasticsearch"])
				assert.Equal(t, "ok", checks["postgres"])
			}
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// ==========================
// Query Tests
// ==========================

func TestServer_ParseQuery(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/v1/query/parse", map[string]string{
		"query": "Show contract 100476 details",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "CONTRACTS", body["queryType"])
	assert.Equal(t, "contracts_by_contractnumber", body["actionType"])
	assert.NotEmpty(t, body["queryId"])

	result := body["queryResult"].(map[string]interface{})
	header := result["header"].(map[string]interface{})
	assert.Equal(t, "100476", header["contractNumber"])
}

func TestServer_ParseQuery_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed json", "{not json", http.StatusBadRequest, "INVALID_INPUT"},
		{"blank query", map[string]string{"query": "  "}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad asOf", map[string]string{"query": "contracts expiring next month", "asOf": "tomorrow"}, http.StatusBadRequest, "INVALID_INPUT"},
	}

	s, _ := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/query/parse", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			errBody := decode(t, rec)["error"].(map[string]interface{})
			assert.Equal(t, tt.code, errBody["code"])
		})
	}
}

func TestServer_SessionFollowUpAndClear(t *testing.T) {
	s, mr := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/v1/query/parse", map[string]string{
		"query":     "What is the lead time for part EN6114V4-13?",
		"sessionId": "web-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["requiresClarification"])
	assert.True(t, mr.Exists("query-session:web-1"))

	rec = do(t, s, http.MethodPost, "/v1/query/parse", map[string]string{
		"query":     "100476",
		"sessionId": "web-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What is the lead time for part EN6114V4-13 in contract 100476", decode(t, rec)["resolvedQuery"])

	rec = do(t, s, http.MethodDelete, "/v1/sessions/web-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, mr.Exists("query-session:web-1"))
}

func TestServer_Registry(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/v1/registry", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var schema registry.Schema
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	names := make([]string, 0, len(schema.Tables))
	for _, tbl := range schema.Tables {
		names = append(names, tbl.Name)
	}
	assert.ElementsMatch(t, []string{"contracts", "parts", "failed_parts"}, names)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor("QUERY_NEEDS_CLARIFICATION"))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor("SESSION_STORE_FAILED"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("PROCESSING_ERROR"))
}
