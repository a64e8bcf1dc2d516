// internal/common/http/client_test.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "contract-query-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ParseQuery(t *testing.T) {
	var got ParseRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/query/parse", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queryId":"q-1","actionType":"contracts_by_contractnumber"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 2*time.Second)
	raw, err := c.ParseQuery(context.Background(), ParseRequest{Query: "show contract 100476", SessionID: "cli"})
	require.NoError(t, err)

	assert.Equal(t, "show contract 100476", got.Query)
	assert.Equal(t, "cli", got.SessionID)
	assert.JSONEq(t, `{"queryId":"q-1","actionType":"contracts_by_contractnumber"}`, string(raw))
}

func TestClient_ParseQuery_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"api error envelope", http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"query is required"}}`, apperrors.ErrCodeInvalidInput},
		{"unstructured failure", http.StatusBadGateway, `upstream down`, "EXTERNAL_SERVICE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).ParseQuery(context.Background(), ParseRequest{Query: "x"})
			require.Error(t, err)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 500*time.Millisecond).ParseQuery(context.Background(), ParseRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query-api")
}
