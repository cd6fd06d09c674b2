package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/messaging"
	"github.com/ledgerly/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMessageRepository implements messaging.MessageRepository using GORM
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create inserts a message
func (r *GormMessageRepository) Create(ctx context.Context, message *messaging.Message) error {
	return conn(ctx, r.db).Create(models.MessageModelFromDomain(message)).Error
}

// Save updates read and deletion flags with optimistic locking
func (r *GormMessageRepository) Save(ctx context.Context, message *messaging.Message) error {
	model := models.MessageModelFromDomain(message)
	model.Version = message.Version + 1
	if err := saveVersioned(conn(ctx, r.db), model, message.Version); err != nil {
		return err
	}
	message.IncrementVersion()
	message.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes a message row
func (r *GormMessageRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteScoped(conn(ctx, r.db), &models.MessageModel{}, tenantID, id)
}

// FindByID finds a message within a tenant
func (r *GormMessageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*messaging.Message, error) {
	var model models.MessageModel
	if err := conn(ctx, r.db).Scopes(TenantScope(tenantID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindForUser lists the inbox or sent box of a user, skipping messages the user deleted
func (r *GormMessageRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter messaging.MessageFilter) ([]*messaging.Message, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.MessageModel{}).
			Scopes(TenantScope(tenantID), Search(filter.Search, "subject", "body"))
		if filter.Mailbox == messaging.MailboxSent {
			q = q.Where("sender_id = ? AND sender_deleted = ?", userID, false)
		} else {
			q = q.Where("recipient_id = ? AND recipient_deleted = ?", userID, false)
			if filter.UnreadOnly {
				q = q.Where("read_at IS NULL")
			}
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.MessageModel
	if err := query().
		Scopes(OrderBy(filter.Filter, MessageSortFields, "created_at"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	messages := make([]*messaging.Message, len(rows))
	for i := range rows {
		messages[i] = rows[i].ToDomain()
	}
	return messages, total, nil
}

// CountUnread counts unread inbox messages of a user
func (r *GormMessageRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.MessageModel{}).
		Scopes(TenantScope(tenantID)).
		Where("recipient_id = ? AND recipient_deleted = ? AND read_at IS NULL", userID, false).
		Count(&count).Error
	return count, err
}

// GormNotificationRepository implements messaging.NotificationRepository using GORM.
// Every query is bound to the owning user as well as the tenant.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func ownedBy(tenantID, userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(TenantScope(tenantID)).Where("user_id = ?", userID)
	}
}

// Create inserts a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *messaging.Notification) error {
	return conn(ctx, r.db).Create(models.NotificationModelFromDomain(n)).Error
}

// Save stores the read state of a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *messaging.Notification) error {
	result := conn(ctx, r.db).Model(&models.NotificationModel{}).
		Scopes(ownedBy(n.TenantID, n.UserID)).
		Where("id = ?", n.ID).
		Update("read_at", n.ReadAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound)
	}
	return nil
}

// Delete removes a notification of the user
func (r *GormNotificationRepository) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	return deleteScoped(conn(ctx, r.db).Where("user_id = ?", userID), &models.NotificationModel{}, tenantID, id)
}

// FindByID finds a notification of the user
func (r *GormNotificationRepository) FindByID(ctx context.Context, tenantID, userID, id uuid.UUID) (*messaging.Notification, error) {
	var model models.NotificationModel
	if err := conn(ctx, r.db).Scopes(ownedBy(tenantID, userID)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindForUser lists the notifications of a user, newest first by default
func (r *GormNotificationRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter messaging.NotificationFilter) ([]*messaging.Notification, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := func() *gorm.DB {
		q := conn(ctx, r.db).Model(&models.NotificationModel{}).Scopes(ownedBy(tenantID, userID))
		if filter.UnreadOnly {
			q = q.Where("read_at IS NULL")
		}
		if filter.Type != nil {
			q = q.Where("type = ?", *filter.Type)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.NotificationModel
	if err := query().
		Scopes(OrderBy(filter.Filter, NotificationSortFields, "created_at"), Paginate(filter.Filter)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	notifications := make([]*messaging.Notification, len(rows))
	for i := range rows {
		notifications[i] = rows[i].ToDomain()
	}
	return notifications, total, nil
}

// CountUnread counts unread notifications of a user
func (r *GormNotificationRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.NotificationModel{}).
		Scopes(ownedBy(tenantID, userID)).
		Where("read_at IS NULL").
		Count(&count).Error
	return count, err
}

// MarkAllRead marks every unread notification of the user as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Model(&models.NotificationModel{}).
		Scopes(ownedBy(tenantID, userID)).
		Where("read_at IS NULL").
		Update("read_at", time.Now().UTC())
	return result.RowsAffected, result.Error
}

var (
	_ messaging.MessageRepository      = (*GormMessageRepository)(nil)
	_ messaging.NotificationRepository = (*GormNotificationRepository)(nil)
)
