// api/dao/store.go
package dao

import (
	"context"

	"github.com/m2m-works/scld/api/model"
)

// Store is the persistence collaborator. Each inbound request runs as one
// serializable transaction: Begin at verb entry, Commit or Rollback exactly
// once before responding.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx scopes all resource reads and writes of a single request. Find returns
// (nil, nil) when the uri is unknown; expiration handling is the engine's
// concern, not the store's.
type Tx interface {
	Find(ctx context.Context, uri string) (model.Entity, error)
	// ListChildren returns the direct children of a collection uri, i.e.
	// resources whose uri is collectionURI plus exactly one segment.
	ListChildren(ctx context.Context, collectionURI string) ([]model.Entity, error)
	Create(ctx context.Context, entity model.Entity) error
	Update(ctx context.Context, entity model.Entity) error
	// Delete removes the resource at uri together with its whole subtree.
	Delete(ctx context.Context, uri string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
