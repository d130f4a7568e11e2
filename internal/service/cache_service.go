package service

import (
	"context"
	"time"

	"github.com/uniconnect/uniconnect-api/pkg/errors"
)

// CacheRepository abstracts cache storage operations.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService layers metrics on top of the cache repository.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
}

// NewCacheService wires the cache repository with metrics instrumentation.
func NewCacheService(repo CacheRepository, metrics *MetricsService) *CacheService {
	return &CacheService{repo: repo, metrics: metrics}
}

// Get fetches a cached value and records hit/miss metrics.
func (s *CacheService) Get(ctx context.Context, key string, dest any) error {
	if s == nil || s.repo == nil {
		return errors.ErrCacheMiss
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	}
	return err
}

// Set stores a value with a TTL.
func (s *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s == nil || s.repo == nil {
		return nil
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	if s.metrics != nil {
		s.metrics.ObserveCacheWrite(time.Since(start))
	}
	return err
}

// InvalidateByPattern removes cached entries matching the pattern.
func (s *CacheService) InvalidateByPattern(ctx context.Context, pattern string) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.DeleteByPattern(ctx, pattern)
}
