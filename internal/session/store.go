// internal/session/store.go
//
// Package session keeps the last interpreted query per session id in Redis
// with a TTL, so a follow-up answer such as a bare contract number can
// complete a parts question that was blocked on it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "contract-query-workers/internal/common/errors"
	"contract-query-workers/internal/models"
	"contract-query-workers/internal/nlp/extractor"
	"contract-query-workers/internal/nlp/rules"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("SESSION_NOT_FOUND")

// contractReplyRe accepts a reply that is only a contract number, with at
// most a short lead-in such as "it is contract" and a trailing "please".
var contractReplyRe = regexp.MustCompile(`(?i)^(?:(?:it\s+is|it'?s|that'?s|the|is|contract|number|no\.?|use|try)\s+)*#?\s*(\d+)\s*(?:,?\s*please)?\s*[.!]?$`)

type Store struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(rdb redis.Cmdable, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl, now: time.Now}
}

func (s *Store) key(id string) string {
	return s.prefix + ":" + id
}

// Load returns the session, or ErrNotFound when it is absent or expired.
func (s *Store) Load(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(fmt.Errorf("decode session %s: %w", id, err))
	}
	return &sess, nil
}

// Save records input and its result as the latest turn and refreshes the TTL.
func (s *Store) Save(ctx context.Context, id, input string, result *models.QueryResult) (*models.Session, error) {
	sess, err := s.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		sess = &models.Session{ID: id, CreatedAt: s.now().UTC()}
	} else if err != nil {
		return nil, err
	}

	sess.LastInput = input
	sess.LastResult = result
	sess.Turns++
	sess.UpdatedAt = s.now().UTC()
	sess.PendingQuery = ""
	if needsContract(result) {
		sess.PendingQuery = input
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	if err := s.rdb.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	return sess, nil
}

// Clear drops the session.
func (s *Store) Clear(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}
	return nil
}

// ResolveFollowUp rewrites input when the session is waiting for a contract
// number and input is one. Otherwise input is returned unchanged.
func (s *Store) ResolveFollowUp(ctx context.Context, id, input string) (string, bool, error) {
	m := contractReplyRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil || !extractor.ValidContractNumber(m[1]) {
		return input, false, nil
	}

	sess, err := s.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return input, false, nil
	}
	if err != nil {
		return input, false, err
	}
	if !sess.AwaitingContract() {
		return input, false, nil
	}

	question := strings.TrimRight(strings.TrimSpace(sess.PendingQuery), "?.! ")
	return question + " in contract " + m[1], true, nil
}

func needsContract(result *models.QueryResult) bool {
	if result == nil || result.Header.ContractNumber != "" {
		return false
	}
	for _, e := range result.Errors {
		if e.Code == models.CodeMissingHeader && e.Message == rules.MsgContractRequired {
			return true
		}
	}
	return false
}
