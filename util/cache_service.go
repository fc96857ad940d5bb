// api/util/cache_service.go

package util

import (
	"context"

	"go.uber.org/zap"

	"github.com/m2m-works/scld/api/db"
	logger "github.com/m2m-works/scld/api/logging"
)

// CacheService fronts the Redis snapshot cache for the lifecycle engine. The
// cache is best-effort: a Redis failure degrades to a miss, never to a failed
// request.
type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) Get(ctx context.Context, uri string) ([]byte, bool) {
	body, err := db.GetCachedResource(ctx, uri)
	if err != nil {
		logger.Warn("Cache lookup failed", zap.Error(err), zap.String("uri", uri))
		return nil, false
	}
	return body, body != nil
}

func (c *CacheService) Set(ctx context.Context, uri string, body []byte) {
	if err := db.CacheResource(ctx, uri, body); err != nil {
		logger.Warn("Cache store failed", zap.Error(err), zap.String("uri", uri))
	}
}

func (c *CacheService) Invalidate(ctx context.Context, uri string) {
	if err := db.DeleteCachedResource(ctx, uri); err != nil {
		logger.Warn("Cache invalidation failed", zap.Error(err), zap.String("uri", uri))
	}
}
