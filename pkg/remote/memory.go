package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Store. Watchers are notified synchronously after
// every commit.
type Memory struct {
	mu       sync.Mutex
	docs     map[string]map[Collection]map[string]json.RawMessage
	profiles map[string]Profile
	watchers map[string]map[Collection][]*latest
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string]map[Collection]map[string]json.RawMessage),
		profiles: make(map[string]Profile),
		watchers: make(map[string]map[Collection][]*latest),
	}
}

func (m *Memory) collection(userID string, c Collection) map[string]json.RawMessage {
	if m.docs[userID] == nil {
		m.docs[userID] = make(map[Collection]map[string]json.RawMessage)
	}
	if m.docs[userID][c] == nil {
		m.docs[userID][c] = make(map[string]json.RawMessage)
	}
	return m.docs[userID][c]
}

func (m *Memory) Commit(ctx context.Context, userID string, writes ...Write) error {
	if err := validate(userID, writes); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	touched := make(map[Collection]bool)
	for _, w := range writes {
		docs := m.collection(userID, w.Collection)
		if w.Op == OpDelete {
			delete(docs, w.ID)
			touched[w.Collection] = true
			continue
		}
		data, err := encode(w, docs[w.ID])
		if err != nil {
			m.mu.Unlock()
			return err
		}
		docs[w.ID] = data
		touched[w.Collection] = true
	}
	for c := range touched {
		m.notifyLocked(userID, c)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, userID string, c Collection, id string) (json.RawMessage, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[userID][c][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
	}
	return doc, nil
}

func (m *Memory) List(_ context.Context, userID string, c Collection) ([]json.RawMessage, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked(userID, c), nil
}

func (m *Memory) listLocked(userID string, c Collection) []json.RawMessage {
	docs := m.docs[userID][c]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, docs[id])
	}
	return out
}

func (m *Memory) Watch(ctx context.Context, userID string, c Collection) (<-chan Snapshot, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}
	l := newLatest()
	m.mu.Lock()
	if m.watchers[userID] == nil {
		m.watchers[userID] = make(map[Collection][]*latest)
	}
	m.watchers[userID][c] = append(m.watchers[userID][c], l)
	l.send(Snapshot{Collection: c, Docs: m.listLocked(userID, c)})
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		list := m.watchers[userID][c]
		for i, w := range list {
			if w == l {
				m.watchers[userID][c] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		l.close()
	}()
	return l.ch, nil
}

func (m *Memory) notifyLocked(userID string, c Collection) {
	watchers := m.watchers[userID][c]
	if len(watchers) == 0 {
		return
	}
	snap := Snapshot{Collection: c, Docs: m.listLocked(userID, c)}
	for _, w := range watchers {
		w.send(snap)
	}
}

func (m *Memory) Profile(_ context.Context, userID string) (Profile, error) {
	if err := validUser(userID); err != nil {
		return Profile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}
	return p, nil
}

func (m *Memory) SaveProfile(_ context.Context, userID string, p Profile) error {
	if err := validUser(userID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = p
	return nil
}

func (m *Memory) UserByAPIKeyHash(_ context.Context, hash string) (string, error) {
	if hash == "" {
		return "", ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, p := range m.profiles {
		if p.APIKeyHash == hash {
			return userID, nil
		}
	}
	return "", ErrNotFound
}
