package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

const statsCacheKey = "stats:complaints"

type complaintStatsRepository interface {
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

// StatsService aggregates complaint counts for the admin dashboard, with a
// short-lived cache in front of the database.
type StatsService struct {
	repo     complaintStatsRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService constructs a StatsService instance.
func NewStatsService(repo complaintStatsRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &StatsService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ComplaintStats returns complaint totals grouped by status and category.
// Statuses with no complaints still appear with a zero count.
func (s *StatsService) ComplaintStats(ctx context.Context) (*models.ComplaintStats, bool, error) {
	if s.cache != nil {
		var cached models.ComplaintStats
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			return &cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count complaints")
	}

	statusCounts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count by status")
	}

	categoryCounts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count by category")
	}

	byStatus := map[string]int{
		string(models.StatusPending):    0,
		string(models.StatusInProgress): 0,
		string(models.StatusResolved):   0,
	}
	for _, row := range statusCounts {
		byStatus[row.Status] = row.Count
	}

	byCategory := make(map[string]int, len(categoryCounts))
	for _, row := range categoryCounts {
		byCategory[row.Name] = row.Count
	}

	stats := &models.ComplaintStats{
		Total:       total,
		ByStatus:    byStatus,
		ByCategory:  byCategory,
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}

	return stats, false, nil
}
