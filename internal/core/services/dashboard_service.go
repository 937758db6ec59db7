package services

import (
	"context"

	"townhall-docflow/internal/adapters/persistence/models"
	"townhall-docflow/internal/adapters/persistence/repositories"
	"townhall-docflow/internal/core/domain"
)

// DashboardService aggregates workload statistics
type DashboardService struct {
	store       repositories.DocumentStore
	historyRepo repositories.HistoryRepository
	notifRepo   repositories.NotificationRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	store repositories.DocumentStore,
	historyRepo repositories.HistoryRepository,
	notifRepo repositories.NotificationRepository,
) *DashboardService {
	return &DashboardService{
		store:       store,
		historyRepo: historyRepo,
		notifRepo:   notifRepo,
	}
}

// DashboardStats is the aggregate snapshot returned to the frontend
type DashboardStats struct {
	ByStatus            map[string]int64          `json:"by_status"`
	ByPriority          map[string]int64          `json:"by_priority"`
	Overdue             int64                     `json:"overdue"`
	UnreadNotifications int64                     `json:"unread_notifications"`
	RecentActivity      []*models.DocumentHistory `json:"recent_activity"`
}

// Stats returns workload counts. Admins see the whole registry; everyone
// else sees their own department. The unread count is always the actor's own.
func (s *DashboardService) Stats(ctx context.Context, actor domain.Principal) (*DashboardStats, error) {
	var deptID *uint
	if actor.Role != domain.RoleAdmin {
		id := actor.DepartmentID
		deptID = &id
	}

	byStatus, err := s.store.CountByStatus(ctx, deptID)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.store.CountByPriority(ctx, deptID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.store.CountOverdue(ctx, deptID)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifRepo.CountUnread(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	recent, err := s.historyRepo.RecentActivity(ctx, deptID, 20)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		ByStatus:            byStatus,
		ByPriority:          byPriority,
		Overdue:             overdue,
		UnreadNotifications: unread,
		RecentActivity:      recent,
	}, nil
}
