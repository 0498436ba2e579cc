package leaf

import (
	"context"
	"fmt"
	"sync"
)

type memoryEntity struct {
	link       Link
	components map[string][]byte
}

// MemoryStore is an in-process Store. Components are kept encoded and
// decoded on read, so it exercises the same schema path as a remote store.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]*memoryEntity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entities: map[string]*memoryEntity{}}
}

func (s *MemoryStore) GetComponents(ctx context.Context, link Link, types []ComponentType) (*Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.entities[link.String()]
	if !ok {
		return nil, nil
	}

	entity := NewEntity(link)
	for _, t := range types {
		data, ok := stored.components[t.Name]
		if !ok {
			continue
		}
		c, err := t.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s component: %v", t.Name, err)
		}
		entity.Set(c)
	}
	return entity, nil
}

func (s *MemoryStore) AddComponents(ctx context.Context, link Link, components []Component) error {
	encoded := make(map[string][]byte, len(components))
	for _, c := range components {
		data, err := c.Encode()
		if err != nil {
			return fmt.Errorf("failed to encode %s component: %v", c.ComponentName(), err)
		}
		encoded[c.ComponentName()] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := link.String()
	stored, ok := s.entities[key]
	if !ok {
		stored = &memoryEntity{link: link.Join(), components: map[string][]byte{}}
		s.entities[key] = stored
	}
	for name, data := range encoded {
		stored.components[name] = data
	}
	return nil
}

func (s *MemoryStore) DelComponents(ctx context.Context, link Link, types []ComponentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.entities[link.String()]
	if !ok {
		return nil
	}
	for _, t := range types {
		delete(stored.components, t.Name)
	}
	return nil
}

func (s *MemoryStore) ListEntities(ctx context.Context, collection Link) ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	links := []Link{}
	for _, stored := range s.entities {
		if len(stored.link.Path) > len(collection.Path) && stored.link.HasPrefix(collection) {
			links = append(links, stored.link.Join())
		}
	}
	return links, nil
}

var _ Store = (*MemoryStore)(nil)
