package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/messaging"
	"github.com/stretchr/testify/mock"
)

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *messaging.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockMessageRepository) Save(ctx context.Context, message *messaging.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *MockMessageRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *MockMessageRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*messaging.Message, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.Message), args.Error(1)
}

func (m *MockMessageRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter messaging.MessageFilter) ([]*messaging.Message, int64, error) {
	args := m.Called(ctx, tenantID, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*messaging.Message), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *messaging.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *messaging.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, userID, id).Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, tenantID, userID, id uuid.UUID) (*messaging.Notification, error) {
	args := m.Called(ctx, tenantID, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter messaging.NotificationFilter) ([]*messaging.Notification, int64, error) {
	args := m.Called(ctx, tenantID, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*messaging.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository stubs the user lookups messaging needs
type MockUserRepository struct {
	identity.UserRepository
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}
