package models

import "time"

// Session is the per-session record kept between queries.
type Session struct {
	ID         string       `json:"id"`
	LastInput  string       `json:"lastInput"`
	LastResult *QueryResult `json:"lastResult,omitempty"`
	// PendingQuery holds a parts question that stopped for lack of a
	// contract number.
	PendingQuery string    `json:"pendingQuery,omitempty"`
	Turns        int       `json:"turns"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AwaitingContract reports whether the next input may be a bare contract
// number answering the pending question.
func (s *Session) AwaitingContract() bool {
	return s.PendingQuery != ""
}
