package workflow

import (
	"fmt"
	"sync"
	"time"
)

// DraftStore holds in-progress drafts. Drafts are ephemeral by design: an
// abandoned flow expires after the TTL and never touches the database.
type DraftStore interface {
	Get(id string) (*Draft, error)
	Put(draft *Draft)
	Delete(id string)
	Stop()
}

type draftEntry struct {
	draft     *Draft
	expiresAt time.Time
}

type InMemoryDraftStore struct {
	mu      sync.RWMutex
	drafts  map[string]draftEntry
	ttl     time.Duration
	stopCh  chan struct{}
	stopped sync.Once
}

func NewInMemoryDraftStore(ttl time.Duration) *InMemoryDraftStore {
	s := &InMemoryDraftStore{
		drafts: make(map[string]draftEntry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *InMemoryDraftStore) Get(id string) (*Draft, error) {
	s.mu.RLock()
	entry, ok := s.drafts[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return entry.draft, nil
}

// Put stores the draft and resets its expiry, so an active flow keeps its
// draft alive for another TTL on every change.
func (s *InMemoryDraftStore) Put(draft *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = draftEntry{
		draft:     draft,
		expiresAt: time.Now().Add(s.ttl),
	}
}

func (s *InMemoryDraftStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

func (s *InMemoryDraftStore) Stop() {
	s.stopped.Do(func() {
		close(s.stopCh)
	})
}

func (s *InMemoryDraftStore) cleanupLoop() {
	interval := s.ttl
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryDraftStore) evictExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.drafts {
		if now.After(entry.expiresAt) {
			delete(s.drafts, id)
		}
	}
}
