package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "staybeyond/internal/app/outbox"
	infraoutbox "staybeyond/internal/infra/outbox"
)

const (
	outboxStateNew     = "NEW"
	outboxStateClaimed = "CLAIMED"
	outboxStateSent    = "SENT"
	outboxStateFailed  = "FAILED"
)

// OutboxStore is the in-memory counterpart of the Mongo outbox: added
// records become claimable by the worker immediately.
type OutboxStore struct {
	mu    sync.Mutex
	items map[string]*infraoutbox.EventDocument
	order []string
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{items: make(map[string]*infraoutbox.EventDocument)}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       outboxStateNew,
		NextAttempt: time.Now().UTC(),
	}
	s.items[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	return nil
}

func (s *OutboxStore) Flush(context.Context) error {
	return nil
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range s.order {
		doc := s.items[id]
		if doc.State != outboxStateNew && doc.State != outboxStateFailed {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = outboxStateClaimed
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		copyDoc := *doc
		return &copyDoc, nil
	}
	return nil, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.items[id]; ok {
		doc.State = outboxStateSent
		doc.SentAt = time.Now().UTC()
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.items[id]; ok {
		doc.State = outboxStateFailed
		doc.NextAttempt = next
		doc.LastError = errMsg
		doc.Attempts++
	}
	return nil
}

var _ appoutbox.Outbox = (*OutboxStore)(nil)
var _ infraoutbox.Store = (*OutboxStore)(nil)
