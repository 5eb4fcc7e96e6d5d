package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/core/domain"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

const (
	recentActivityCount = 10
	maxActivityLimit    = 50
	milestoneWindow     = 30 * 24 * time.Hour
)

type DashboardService struct {
	stats     ports.StatsRepository
	documents ports.DocumentRepository
	users     ports.UserRepository
	cache     ports.StatsCache
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDashboardService builds the service. cache may be nil.
func NewDashboardService(stats ports.StatsRepository, documents ports.DocumentRepository, users ports.UserRepository, cache ports.StatsCache, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		stats:     stats,
		documents: documents,
		users:     users,
		cache:     cache,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Stats combines the shared aggregates with the recent uploads and upcoming
// milestones the caller is allowed to see. Only the shared aggregates are
// cached; cache failures are logged and bypassed.
func (s *DashboardService) Stats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error) {
	if !actor.Role.Valid() {
		return nil, domain.ErrForbidden
	}
	shared, err := s.aggregates(ctx)
	if err != nil {
		return nil, err
	}
	out := *shared

	out.RecentActivities, err = s.uploadActivities(ctx, actor, recentActivityCount)
	if err != nil {
		return nil, err
	}
	projects, err := authorize(actor, policy.ResourceProject, policy.ActionList)
	if err != nil {
		out.UpcomingMilestones = []domain.UpcomingMilestone{}
		return &out, nil
	}
	now := s.now()
	milestones, err := s.stats.UpcomingMilestones(ctx, projects, now, now.Add(milestoneWindow), recentActivityCount)
	if err != nil {
		return nil, fmt.Errorf("upcoming milestones: %w", err)
	}
	out.UpcomingMilestones = orEmpty(milestones)
	return &out, nil
}

// aggregates returns the role independent part of the dashboard.
func (s *DashboardService) aggregates(ctx context.Context) (*domain.DashboardStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("dashboard cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.Warn().Err(err).Msg("dashboard cache write failed")
		}
	}
	return stats, nil
}

func (s *DashboardService) compute(ctx context.Context) (*domain.DashboardStats, error) {
	counts, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	byStatus, err := s.stats.ProjectsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("projects by status: %w", err)
	}
	byDept, err := s.stats.EmployeesByDepartment(ctx)
	if err != nil {
		return nil, fmt.Errorf("employees by department: %w", err)
	}

	return &domain.DashboardStats{
		Counts:           counts,
		ProjectsByStatus: orEmpty(byStatus),
		EmployeesByDept:  orEmpty(byDept),
		GeneratedAt:      s.now(),
	}, nil
}

// Activities merges recent uploads with recent logins of other users,
// newest first.
func (s *DashboardService) Activities(ctx context.Context, actor domain.Actor, limit int) ([]domain.Activity, error) {
	if !actor.Role.Valid() {
		return nil, domain.ErrForbidden
	}
	if limit < 1 {
		limit = recentActivityCount
	}
	limit = min(limit, maxActivityLimit)

	out, err := s.uploadActivities(ctx, actor, limit)
	if err != nil {
		return nil, err
	}
	logins, err := s.users.RecentLogins(ctx, actor.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent logins: %w", err)
	}
	for _, u := range logins {
		if u.LastLogin == nil {
			continue
		}
		out = append(out, domain.Activity{
			Type:        domain.ActivityLogin,
			Description: u.FullName() + " logged in",
			User:        u.Summary(),
			Timestamp:   *u.LastLogin,
		})
	}

	slices.SortStableFunc(out, func(a, b domain.Activity) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// uploadActivities lists recent uploads whose view list includes the caller's role.
func (s *DashboardService) uploadActivities(ctx context.Context, actor domain.Actor, limit int) ([]domain.Activity, error) {
	scope, err := authorize(actor, policy.ResourceDocument, policy.ActionList)
	if err != nil {
		return []domain.Activity{}, nil
	}
	docs, err := s.documents.Recent(ctx, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("recent documents: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.UploadedBy)
	}
	users, err := userSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Activity, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Activity{
			Type:        domain.ActivityUpload,
			Description: "Uploaded " + d.Title,
			User:        users[d.UploadedBy],
			Timestamp:   d.CreatedAt,
		})
	}
	return out, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
