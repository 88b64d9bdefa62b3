package service

import (
	"context"
	"math"
	"time"

	"silvalley/internal/admin/repository"
	"silvalley/pkg/auth"
	"silvalley/pkg/config"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/model"
)

type AdminService interface {
	GetDashboard(ctx context.Context, actor *auth.Claims) (*model.DashboardStats, error)
}

type adminService struct {
	repo repository.StatsRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewAdminService(repo repository.StatsRepository, cfg *config.Config) AdminService {
	return &adminService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

// GetDashboard recomputes every figure on demand. The dashboard tolerates a
// few hundred milliseconds of latency better than it tolerates stale numbers.
func (s *adminService) GetDashboard(ctx context.Context, actor *auth.Claims) (*model.DashboardStats, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if actor.Role != model.RoleAdmin {
		return nil, apperrors.Forbidden("Admin access required")
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	period := time.Duration(s.cfg.StatsPeriodDays) * 24 * time.Hour

	stats := &model.DashboardStats{}

	var err error
	if stats.UserCount, err = s.repo.CountUsers(ctx); err != nil {
		return nil, s.fail("count users", err)
	}
	if stats.NewUsersThisMonth, err = s.repo.CountUsersSince(ctx, monthStart); err != nil {
		return nil, s.fail("count new users", err)
	}
	if stats.SpaceCount, err = s.repo.CountSpaces(ctx); err != nil {
		return nil, s.fail("count spaces", err)
	}
	if stats.ActiveSpaceCount, err = s.repo.CountActiveSpaces(ctx); err != nil {
		return nil, s.fail("count active spaces", err)
	}
	if stats.BookingCount, err = s.repo.CountBookings(ctx); err != nil {
		return nil, s.fail("count bookings", err)
	}
	if stats.PendingBookingCount, err = s.repo.CountBookingsByStatus(ctx, model.StatusPending); err != nil {
		return nil, s.fail("count pending bookings", err)
	}

	current, err := s.repo.Revenue(ctx, now.Add(-period), now)
	if err != nil {
		return nil, s.fail("sum current revenue", err)
	}
	previous, err := s.repo.Revenue(ctx, now.Add(-2*period), now.Add(-period))
	if err != nil {
		return nil, s.fail("sum previous revenue", err)
	}
	total, err := s.repo.Revenue(ctx, time.Time{}, now)
	if err != nil {
		return nil, s.fail("sum total revenue", err)
	}
	stats.TotalRevenue = total
	stats.RevenueChange = revenueChange(previous, current)

	if stats.BookingTrends, err = s.repo.BookingTrends(ctx, now.Add(-period)); err != nil {
		return nil, s.fail("aggregate booking trends", err)
	}
	if stats.BookingsByStatus, err = s.repo.BookingsByStatus(ctx); err != nil {
		return nil, s.fail("aggregate bookings by status", err)
	}
	if stats.PopularSpaces, err = s.repo.PopularSpaces(ctx, s.cfg.DashboardListLimit); err != nil {
		return nil, s.fail("rank popular spaces", err)
	}
	if stats.RecentBookings, err = s.repo.RecentBookings(ctx, s.cfg.DashboardListLimit); err != nil {
		return nil, s.fail("list recent bookings", err)
	}

	s.cfg.Log.Info("Dashboard computed",
		"requested_by", actor.UserID,
		"bookings", stats.BookingCount,
		"users", stats.UserCount,
	)

	return stats, nil
}

func (s *adminService) fail(operation string, err error) error {
	s.cfg.Log.Error("Failed to compute dashboard stats",
		"operation", operation,
		"error", err,
	)
	return apperrors.Internal("Failed to compute dashboard stats", err)
}

// revenueChange is the period-over-period percentage, rounded to two decimal
// places. An empty previous period reports 100% growth when the current one
// has revenue and 0% when both are empty.
func revenueChange(previous, current float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	change := (current - previous) / previous * 100
	return math.Round(change*100) / 100
}
