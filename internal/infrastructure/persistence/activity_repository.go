package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/activity"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActivityRepository implements activity.Repository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Create appends an entry
func (r *GormActivityRepository) Create(ctx context.Context, log *activity.ActivityLog) error {
	return conn(ctx, r.db).Create(models.ActivityLogModelFromDomain(log)).Error
}

// FindByID finds an entry within a tenant
func (r *GormActivityRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*activity.ActivityLog, error) {
	var model models.ActivityLogModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists entries matching the filter, newest first by default
func (r *GormActivityRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter activity.Filter) ([]*activity.ActivityLog, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.ActivityLogModel{}).
			Scopes(
				TenantScope(tenantID),
				Search(filter.Search, "entity_label", "actor_name"),
				DateRange("created_at", filter.DateFrom, filter.DateTo),
			)
		if filter.EntityType != "" {
			q = q.Where("entity_type = ?", filter.EntityType)
		}
		if filter.EntityID != nil {
			q = q.Where("entity_id = ?", *filter.EntityID)
		}
		if filter.ActorID != nil {
			q = q.Where("actor_id = ?", *filter.ActorID)
		}
		if filter.Action != nil {
			q = q.Where("action = ?", *filter.Action)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ActivityLogModel
	if err := query().
		Scopes(OrderBy(filter.Filter, ActivitySortFields, "created_at"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	logs := make([]*activity.ActivityLog, len(rows))
	for i := range rows {
		logs[i] = rows[i].ToDomain()
	}
	return logs, total, nil
}

var _ activity.Repository = (*GormActivityRepository)(nil)
