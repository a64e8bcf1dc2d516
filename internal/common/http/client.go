// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "contract-query-workers/internal/common/errors"
)

// Client talks to a running query API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ParseRequest mirrors the body of POST /v1/query/parse.
type ParseRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
	AsOf      string `json:"asOf,omitempty"`
}

// ParseQuery posts req and returns the raw JSON response body.
func (c *Client) ParseQuery(ctx context.Context, req ParseRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/query/parse", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.DoWithContext(ctx, httpReq)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("query-api", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("query-api", err)
	}
	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error *apperrors.StandardError `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != nil {
			return nil, envelope.Error
		}
		return nil, apperrors.NewExternalServiceError("query-api",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return data, nil
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}
