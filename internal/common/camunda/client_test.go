// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"contract-query-workers/internal/common/config"
	"contract-query-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRetryClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{RetryConfig: &RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
	}}}
}

func TestExecuteWithRetry(t *testing.T) {
	tests := []struct {
		name         string
		failures     []error
		maxRetries   int
		wantAttempts int
		wantCode     errors.ErrorCode
	}{
		{"succeeds first time", nil, 3, 1, ""},
		{"recovers from transient errors", []error{stderrors.New("connection refused"), stderrors.New("Unavailable")}, 3, 3, ""},
		{"gives up after max retries", []error{
			stderrors.New("deadline exceeded"), stderrors.New("deadline exceeded"), stderrors.New("deadline exceeded"),
		}, 2, 3, "TIMEOUT_ERROR"},
		{"does not retry permanent errors", []error{stderrors.New("invalid argument")}, 3, 1, "EXTERNAL_SERVICE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := newRetryClient(tt.maxRetries).ExecuteWithRetry(context.Background(), func(context.Context) error {
				attempts++
				if attempts <= len(tt.failures) {
					return tt.failures[attempts-1]
				}
				return nil
			}, "topology")

			assert.Equal(t, tt.wantAttempts, attempts)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.Normalize(err).Code)
		})
	}
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	c := &Client{config: &ClientConfig{RetryConfig: &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.ExecuteWithRetry(ctx, func(context.Context) error {
		return stderrors.New("connection reset")
	}, "topology")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigFrom(t *testing.T) {
	cc := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 1500})
	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.Equal(t, 1500*time.Millisecond, cc.RequestTimeout)
	assert.True(t, cc.UsePlaintextConnection)
	assert.Same(t, DefaultRetryConfig, cc.RetryConfig)
}
