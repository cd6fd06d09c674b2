package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/activity"
)

// ListFilter holds the activity log query parameters
type ListFilter struct {
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search     string     `form:"search"`
	EntityType string     `form:"entity_type"`
	EntityID   *uuid.UUID `form:"-"` // query entity_id
	ActorID    *uuid.UUID `form:"-"` // query actor_id
	Action     string     `form:"action"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// ActivityLogResponse is an activity entry in API responses
type ActivityLogResponse struct {
	ID          uuid.UUID       `json:"id"`
	ActorID     *uuid.UUID      `json:"actor_id,omitempty"`
	ActorName   string          `json:"actor_name"`
	Action      string          `json:"action"`
	EntityType  string          `json:"entity_type"`
	EntityID    uuid.UUID       `json:"entity_id"`
	EntityLabel string          `json:"entity_label"`
	OldValues   activity.Values `json:"old_values,omitempty"`
	NewValues   activity.Values `json:"new_values,omitempty"`
	IPAddress   string          `json:"ip_address,omitempty"`
	UserAgent   string          `json:"user_agent,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToActivityLogResponse converts a domain entry
func ToActivityLogResponse(log *activity.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:          log.ID,
		ActorID:     log.ActorID,
		ActorName:   log.ActorName,
		Action:      string(log.Action),
		EntityType:  log.EntityType,
		EntityID:    log.EntityID,
		EntityLabel: log.EntityLabel,
		OldValues:   log.OldValues,
		NewValues:   log.NewValues,
		IPAddress:   log.IPAddress,
		UserAgent:   log.UserAgent,
		CreatedAt:   log.CreatedAt,
	}
}
