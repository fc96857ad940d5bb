// test/mock/store.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/m2m-works/scld/api/dao"
	"github.com/m2m-works/scld/api/model"
)

// MockStore is a mock implementation of dao.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Begin(ctx context.Context) (dao.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(dao.Tx)
	return tx, args.Error(1)
}

// MockTx is a mock implementation of dao.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Find(ctx context.Context, uri string) (model.Entity, error) {
	args := m.Called(ctx, uri)
	entity, _ := args.Get(0).(model.Entity)
	return entity, args.Error(1)
}

func (m *MockTx) ListChildren(ctx context.Context, collectionURI string) ([]model.Entity, error) {
	args := m.Called(ctx, collectionURI)
	children, _ := args.Get(0).([]model.Entity)
	return children, args.Error(1)
}

func (m *MockTx) Create(ctx context.Context, entity model.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockTx) Update(ctx context.Context, entity model.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockTx) Delete(ctx context.Context, uri string) error {
	args := m.Called(ctx, uri)
	return args.Error(0)
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
