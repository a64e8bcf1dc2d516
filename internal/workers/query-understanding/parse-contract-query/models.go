// internal/workers/query-understanding/parse-contract-query/models.go
package parsecontractquery

import "contract-query-workers/internal/models"

type Input struct {
	Query     string `json:"query" validate:"notblank,max=2000"`
	SessionID string `json:"sessionId,omitempty" validate:"omitempty,max=128"`
	// AsOf overrides today's date for relative date phrases.
	AsOf string `json:"asOf,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type Output struct {
	QueryID               string              `json:"queryId"`
	QueryResult           *models.QueryResult `json:"queryResult"`
	QueryType             models.QueryType    `json:"queryType"`
	ActionType            models.ActionType   `json:"actionType"`
	RequiresClarification bool                `json:"requiresClarification"`
	ResolvedQuery         string              `json:"resolvedQuery,omitempty"`
}
