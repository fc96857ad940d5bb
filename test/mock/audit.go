// test/mock/audit.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/m2m-works/scld/api/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, record audit.OperationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditService) QueryRecords(ctx context.Context, from, to time.Time, requestingEntity, targetPath string) ([]audit.OperationRecord, error) {
	args := m.Called(ctx, from, to, requestingEntity, targetPath)
	return args.Get(0).([]audit.OperationRecord), args.Error(1)
}
