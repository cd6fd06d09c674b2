package activity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/domain/shared"
)

// Service answers activity log queries
type Service struct {
	repo activity.Repository
}

// NewService creates a new Service
func NewService(repo activity.Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of entries, newest first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]ActivityLogResponse, int64, error) {
	query := activity.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
		}.Normalize(),
		EntityType: filter.EntityType,
		EntityID:   filter.EntityID,
		ActorID:    filter.ActorID,
		DateFrom:   filter.DateFrom,
		DateTo:     filter.DateTo,
	}
	if filter.Action != "" {
		action := activity.Action(strings.ToUpper(filter.Action))
		if !action.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_ACTION", "Unknown activity action")
		}
		query.Action = &action
	}

	logs, total, err := s.repo.FindAll(ctx, tenantID, query)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ActivityLogResponse, len(logs))
	for i, log := range logs {
		out[i] = ToActivityLogResponse(log)
	}
	return out, total, nil
}

// Get returns one entry
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*ActivityLogResponse, error) {
	log, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToActivityLogResponse(log)
	return &resp, nil
}
