// internal/workers/query-understanding/parse-contract-query/config.go
package parsecontractquery

import "time"

type Config struct {
	Timeout time.Duration
	// ThrowOnBlocker raises QUERY_NEEDS_CLARIFICATION instead of completing
	// the job when the result carries a BLOCKER error.
	ThrowOnBlocker bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
