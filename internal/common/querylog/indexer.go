// internal/common/querylog/indexer.go
package querylog

import (
	"context"
	"encoding/json"
	"time"

	apperrors "contract-query-workers/internal/common/errors"
	"contract-query-workers/internal/common/logger"
	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/pipeline"

	"github.com/google/uuid"
)

// Channels a query can arrive on.
const (
	ChannelWorker = "worker"
	ChannelAPI    = "api"
	ChannelCLI    = "cli"
)

// Writer stores one JSON document. *database.ElasticsearchClient satisfies it.
type Writer interface {
	IndexDocument(ctx context.Context, index, id string, body []byte) error
}

// Document is the analytics record written per query.
type Document struct {
	QueryID     string          `json:"queryId"`
	SessionID   string          `json:"sessionId,omitempty"`
	Channel     string          `json:"channel"`
	Timestamp   time.Time       `json:"@timestamp"`
	QueryType   string          `json:"queryType"`
	ActionType  string          `json:"actionType"`
	HasBlockers bool            `json:"hasBlockers"`
	Corrected   bool            `json:"corrected"`
	Result      json.RawMessage `json:"result"`
}

type Entry struct {
	QueryID   string
	SessionID string
	Channel   string
	Result    *models.QueryResult
}

type Indexer struct {
	writer Writer
	index  string
	log    logger.Logger
	now    func() time.Time
}

func New(w Writer, index string, log logger.Logger) *Indexer {
	return &Indexer{
		writer: w,
		index:  index,
		log:    log.With(map[string]interface{}{"component": "query-log", "index": index}),
		now:    time.Now,
	}
}

// NewQueryID returns a fresh identifier for a query.
func NewQueryID() string {
	return uuid.NewString()
}

// Index writes the entry and returns its query id, generating one when the
// entry has none.
func (i *Indexer) Index(ctx context.Context, e Entry) (string, error) {
	if e.QueryID == "" {
		e.QueryID = NewQueryID()
	}

	raw, err := pipeline.Encode(e.Result)
	if err != nil {
		return e.QueryID, apperrors.NewQueryLogFailedError(err)
	}

	doc := Document{
		QueryID:     e.QueryID,
		SessionID:   e.SessionID,
		Channel:     e.Channel,
		Timestamp:   i.now().UTC(),
		QueryType:   string(e.Result.Metadata.QueryType),
		ActionType:  string(e.Result.Metadata.ActionType),
		HasBlockers: e.Result.HasBlockers(),
		Corrected:   e.Result.InputTracking.CorrectedInput != nil,
		Result:      raw,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return e.QueryID, apperrors.NewQueryLogFailedError(err)
	}

	if err := i.writer.IndexDocument(ctx, i.index, e.QueryID, body); err != nil {
		i.log.Warn("failed to index query", map[string]interface{}{
			"queryId": e.QueryID,
			"error":   err.Error(),
		})
		return e.QueryID, apperrors.NewQueryLogFailedError(err)
	}
	return e.QueryID, nil
}
