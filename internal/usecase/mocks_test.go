package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/totegamma/weird/internal/domain"
	"github.com/totegamma/weird/leaf"
)

// --- mocks ---

type storeCall struct {
	op    string
	link  string
	names []string
}

// recordingStore wraps a MemoryStore, recording calls and failing reads
// of the links listed in failGet.
type recordingStore struct {
	*leaf.MemoryStore
	calls   []storeCall
	failGet map[string]bool
	failAll error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: leaf.NewMemoryStore(), failGet: map[string]bool{}}
}

func (s *recordingStore) GetComponents(ctx context.Context, link leaf.Link, types []leaf.ComponentType) (*leaf.Entity, error) {
	s.calls = append(s.calls, storeCall{op: "get", link: link.String(), names: leaf.Names(types)})
	if s.failAll != nil {
		return nil, s.failAll
	}
	if s.failGet[link.String()] {
		return nil, errors.New("simulated store failure")
	}
	return s.MemoryStore.GetComponents(ctx, link, types)
}

func (s *recordingStore) AddComponents(ctx context.Context, link leaf.Link, components []leaf.Component) error {
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.ComponentName())
	}
	s.calls = append(s.calls, storeCall{op: "add", link: link.String(), names: names})
	if s.failAll != nil {
		return s.failAll
	}
	return s.MemoryStore.AddComponents(ctx, link, components)
}

func (s *recordingStore) DelComponents(ctx context.Context, link leaf.Link, types []leaf.ComponentType) error {
	s.calls = append(s.calls, storeCall{op: "del", link: link.String(), names: leaf.Names(types)})
	if s.failAll != nil {
		return s.failAll
	}
	return s.MemoryStore.DelComponents(ctx, link, types)
}

func (s *recordingStore) ListEntities(ctx context.Context, collection leaf.Link) ([]leaf.Link, error) {
	s.calls = append(s.calls, storeCall{op: "list", link: collection.String()})
	if s.failAll != nil {
		return nil, s.failAll
	}
	return s.MemoryStore.ListEntities(ctx, collection)
}

func (s *recordingStore) ops() []string {
	ops := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		ops = append(ops, c.op)
	}
	return ops
}

func (s *recordingStore) reset() {
	s.calls = nil
}

type mockLinkCache struct {
	mu      sync.Mutex
	entries map[string]leaf.Link
	deleted []string
}

func newMockLinkCache() *mockLinkCache {
	return &mockLinkCache{entries: map[string]leaf.Link{}}
}

func (m *mockLinkCache) Get(ctx context.Context, username string) (leaf.Link, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.entries[username]
	return l, ok
}

func (m *mockLinkCache) Set(ctx context.Context, username string, link leaf.Link) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[username] = link
}

func (m *mockLinkCache) Delete(ctx context.Context, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, username)
	m.deleted = append(m.deleted, username)
}

type mockPublisher struct {
	events []domain.ProfileEvent
	err    error
}

func (m *mockPublisher) PublishProfileEvent(ctx context.Context, event domain.ProfileEvent) error {
	m.events = append(m.events, event)
	return m.err
}

type mockChallenges struct{}

func (mockChallenges) CreateChallenge(userID string) (string, error) {
	return "challenge-" + userID, nil
}

type mockVerifier struct {
	err   error
	calls []string
}

func (m *mockVerifier) VerifyChallenge(ctx context.Context, d, challenge, userID string) error {
	m.calls = append(m.calls, d+"/dns-challenge/"+challenge+"/"+userID)
	return m.err
}

var testConfig = domain.Config{
	PublicDomain: "weird.one",
	Namespace:    "weird-test",
}
