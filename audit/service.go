// api/audit/service.go
package audit

import (
	"context"
	"time"
)

type Service interface {
	Record(ctx context.Context, record OperationRecord) error
	QueryRecords(ctx context.Context, from, to time.Time, requestingEntity, targetPath string) ([]OperationRecord, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, record OperationRecord) error {
	return s.repo.Record(ctx, record)
}

func (s *service) QueryRecords(ctx context.Context, from, to time.Time, requestingEntity, targetPath string) ([]OperationRecord, error) {
	return s.repo.QueryRecords(ctx, from, to, requestingEntity, targetPath)
}
