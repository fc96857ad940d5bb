// api/dao/neo4j_store.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/m2m-works/scld/api/codec"
	logger "github.com/m2m-works/scld/api/logging"
	"github.com/m2m-works/scld/api/model"
)

const labelResource = "Resource"

// Neo4jStore persists resource snapshots as nodes keyed by uri. Derived
// references are cleared before encoding, so they are never written to the
// database.
type Neo4jStore struct {
	Driver neo4j.Driver
}

func NewNeo4jStore(driver neo4j.Driver) (*Neo4jStore, error) {
	s := &Neo4jStore{Driver: driver}
	if err := s.ensureUniqueConstraint(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Neo4jStore) ensureUniqueConstraint() error {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_resource_uri IF NOT EXISTS
        FOR (r:` + labelResource + `) REQUIRE r.uri IS UNIQUE
        `
		_, err := tx.Run(query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on resource uri", zap.Error(err))
		return err
	}
	return nil
}

func (s *Neo4jStore) Begin(ctx context.Context) (Tx, error) {
	session := s.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	tx, err := session.BeginTransaction()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &neo4jTx{session: session, tx: tx}, nil
}

type neo4jTx struct {
	session neo4j.Session
	tx      neo4j.Transaction
	done    bool
}

func entityParams(entity model.Entity) (map[string]interface{}, error) {
	snapshot := entity.Clone()
	snapshot.ClearReferences()
	data, err := codec.Encode(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", entity.TypeName(), err)
	}
	params := map[string]interface{}{
		"uri":  snapshot.Base().URI,
		"type": snapshot.TypeName(),
		"data": string(data),
	}
	if sub, ok := snapshot.(*model.Subscription); ok && sub.LastNotifiedAt != nil {
		params["lastNotifiedAt"] = sub.LastNotifiedAt.Format(time.RFC3339Nano)
	} else {
		params["lastNotifiedAt"] = nil
	}
	return params, nil
}

func entityFromRecord(values []interface{}) (model.Entity, error) {
	typeName, _ := values[0].(string)
	data, _ := values[1].(string)
	entity, err := codec.Decode(typeName, []byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode stored %s: %w", typeName, err)
	}
	if ln, ok := values[2].(string); ok && ln != "" {
		if sub, ok := entity.(*model.Subscription); ok {
			if t, err := time.Parse(time.RFC3339Nano, ln); err == nil {
				sub.LastNotifiedAt = &t
			}
		}
	}
	return entity, nil
}

func (t *neo4jTx) Find(ctx context.Context, uri string) (model.Entity, error) {
	result, err := t.tx.Run(`
        MATCH (r:`+labelResource+` {uri: $uri})
        RETURN r.type, r.data, r.lastNotifiedAt
        `, map[string]interface{}{"uri": uri})
	if err != nil {
		return nil, err
	}
	if !result.Next() {
		return nil, result.Err()
	}
	return entityFromRecord(result.Record().Values)
}

func (t *neo4jTx) ListChildren(ctx context.Context, collectionURI string) ([]model.Entity, error) {
	result, err := t.tx.Run(`
        MATCH (r:`+labelResource+`)
        WHERE r.uri STARTS WITH $prefix AND NOT substring(r.uri, size($prefix)) CONTAINS "/"
        RETURN r.type, r.data, r.lastNotifiedAt
        `, map[string]interface{}{"prefix": collectionURI + "/"})
	if err != nil {
		return nil, err
	}
	var out []model.Entity
	for result.Next() {
		entity, err := entityFromRecord(result.Record().Values)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, result.Err()
}

func (t *neo4jTx) Create(ctx context.Context, entity model.Entity) error {
	params, err := entityParams(entity)
	if err != nil {
		return err
	}
	_, err = t.tx.Run(`
        CREATE (r:`+labelResource+` {uri: $uri, type: $type, data: $data})
        SET r.lastNotifiedAt = $lastNotifiedAt
        `, params)
	return err
}

func (t *neo4jTx) Update(ctx context.Context, entity model.Entity) error {
	params, err := entityParams(entity)
	if err != nil {
		return err
	}
	_, err = t.tx.Run(`
        MATCH (r:`+labelResource+` {uri: $uri})
        SET r.data = $data, r.lastNotifiedAt = $lastNotifiedAt
        `, params)
	return err
}

func (t *neo4jTx) Delete(ctx context.Context, uri string) error {
	_, err := t.tx.Run(`
        MATCH (r:`+labelResource+`)
        WHERE r.uri = $uri OR r.uri STARTS WITH $prefix
        DETACH DELETE r
        `, map[string]interface{}{"uri": uri, "prefix": uri + "/"})
	return err
}

func (t *neo4jTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.session.Close()
	return t.tx.Commit()
}

func (t *neo4jTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.session.Close()
	return t.tx.Rollback()
}
