// api/dao/memstore.go
package dao

import (
	"context"
	"strings"
	"sync"

	"github.com/m2m-works/scld/api/model"
)

// MemStore is an in-memory Store with serializable transactions: Begin takes
// an exclusive lock held until Commit or Rollback, so a uniqueness check and
// the subsequent create can never interleave with a concurrent writer.
type MemStore struct {
	mu        sync.Mutex
	resources map[string]model.Entity
}

func NewMemStore() *MemStore {
	return &MemStore{resources: make(map[string]model.Entity)}
}

func (s *MemStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	return &memTx{store: s}, nil
}

// Seed installs a resource outside any request transaction, used to
// provision the root descriptor and its access right at startup.
func (s *MemStore) Seed(entity model.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := entity.Clone()
	snapshot.ClearReferences()
	s.resources[snapshot.Base().URI] = snapshot
}

type undo func(map[string]model.Entity)

type memTx struct {
	store *MemStore
	undos []undo
	done  bool
}

func (t *memTx) Find(ctx context.Context, uri string) (model.Entity, error) {
	e, ok := t.store.resources[uri]
	if !ok {
		return nil, nil
	}
	return e.Clone(), nil
}

func (t *memTx) ListChildren(ctx context.Context, collectionURI string) ([]model.Entity, error) {
	prefix := collectionURI + "/"
	var out []model.Entity
	for uri, e := range t.store.resources {
		if !strings.HasPrefix(uri, prefix) {
			continue
		}
		if strings.Contains(uri[len(prefix):], "/") {
			continue
		}
		out = append(out, e.Clone())
	}
	return out, nil
}

func (t *memTx) Create(ctx context.Context, entity model.Entity) error {
	uri := entity.Base().URI
	snapshot := entity.Clone()
	snapshot.ClearReferences()
	t.store.resources[uri] = snapshot
	t.undos = append(t.undos, func(m map[string]model.Entity) {
		delete(m, uri)
	})
	return nil
}

func (t *memTx) Update(ctx context.Context, entity model.Entity) error {
	uri := entity.Base().URI
	prev := t.store.resources[uri]
	snapshot := entity.Clone()
	snapshot.ClearReferences()
	t.store.resources[uri] = snapshot
	t.undos = append(t.undos, func(m map[string]model.Entity) {
		m[uri] = prev
	})
	return nil
}

func (t *memTx) Delete(ctx context.Context, uri string) error {
	prefix := uri + "/"
	for candidate, prev := range t.store.resources {
		if candidate != uri && !strings.HasPrefix(candidate, prefix) {
			continue
		}
		delete(t.store.resources, candidate)
		candidate, prev := candidate, prev
		t.undos = append(t.undos, func(m map[string]model.Entity) {
			m[candidate] = prev
		})
	}
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.undos = nil
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undos) - 1; i >= 0; i-- {
		t.undos[i](t.store.resources)
	}
	t.undos = nil
	t.store.mu.Unlock()
	return nil
}
