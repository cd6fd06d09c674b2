package messaging

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/messaging"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturePublisher struct {
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type messageFixture struct {
	tenantID  uuid.UUID
	alice     *identity.User
	bob       *identity.User
	messages  *MockMessageRepository
	users     *MockUserRepository
	published *capturePublisher
	svc       *MessageService
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	tenantID := uuid.New()
	alice, err := identity.NewUser(tenantID, "alice@acme.test", "Alice", "Passw0rd!")
	require.NoError(t, err)
	bob, err := identity.NewUser(tenantID, "bob@acme.test", "Bob", "Passw0rd!")
	require.NoError(t, err)

	f := &messageFixture{
		tenantID:  tenantID,
		alice:     alice,
		bob:       bob,
		messages:  new(MockMessageRepository),
		users:     new(MockUserRepository),
		published: &capturePublisher{},
	}
	f.svc = NewMessageService(f.messages, f.users, f.published, zap.NewNop())
	f.users.On("FindByID", mock.Anything, tenantID, alice.ID).Return(alice, nil)
	f.users.On("FindByID", mock.Anything, tenantID, bob.ID).Return(bob, nil)
	return f
}

// message builds a message from alice to bob
func (f *messageFixture) message(t *testing.T) *messaging.Message {
	t.Helper()
	msg, err := messaging.NewMessage(f.tenantID, f.alice.ID, f.bob.ID, "Quarter close", "Please review the open invoices")
	require.NoError(t, err)
	msg.ClearDomainEvents()
	f.messages.On("FindByID", mock.Anything, f.tenantID, msg.ID).Return(msg, nil)
	return msg
}

func TestMessageService_Send(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	f.messages.On("Create", ctx, mock.AnythingOfType("*messaging.Message")).Return(nil)

	resp, err := f.svc.Send(ctx, f.tenantID, f.alice.ID, SendMessageRequest{
		RecipientID: f.bob.ID,
		Subject:     "Hello",
		Body:        "Welcome aboard",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.SenderName)
	assert.Equal(t, "Bob", resp.RecipientName)
	assert.False(t, resp.IsRead)
	require.Len(t, f.published.events, 1)
	assert.Equal(t, messaging.EventTypeMessageSent, f.published.events[0].EventType())
}

func TestMessageService_Send_InvalidRecipient(t *testing.T) {
	ctx := context.Background()

	t.Run("self", func(t *testing.T) {
		f := newMessageFixture(t)
		_, err := f.svc.Send(ctx, f.tenantID, f.alice.ID, SendMessageRequest{RecipientID: f.alice.ID, Subject: "x", Body: "y"})
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_RECIPIENT", ""))
	})

	t.Run("other tenant", func(t *testing.T) {
		f := newMessageFixture(t)
		stranger := uuid.New()
		f.users.On("FindByID", ctx, f.tenantID, stranger).Return(nil, shared.ErrNotFound)
		_, err := f.svc.Send(ctx, f.tenantID, f.alice.ID, SendMessageRequest{RecipientID: stranger, Subject: "x", Body: "y"})
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_RECIPIENT", ""))
	})

	t.Run("disabled", func(t *testing.T) {
		f := newMessageFixture(t)
		require.NoError(t, f.bob.Disable())
		_, err := f.svc.Send(ctx, f.tenantID, f.alice.ID, SendMessageRequest{RecipientID: f.bob.ID, Subject: "x", Body: "y"})
		assert.ErrorIs(t, err, shared.NewDomainError("INVALID_RECIPIENT", ""))
		f.messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestMessageService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("recipient marks read", func(t *testing.T) {
		f := newMessageFixture(t)
		msg := f.message(t)
		f.messages.On("Save", ctx, msg).Return(nil).Once()

		resp, err := f.svc.Get(ctx, f.tenantID, f.bob.ID, msg.ID)
		require.NoError(t, err)
		assert.True(t, resp.IsRead)

		// second read does not save again
		_, err = f.svc.Get(ctx, f.tenantID, f.bob.ID, msg.ID)
		require.NoError(t, err)
		f.messages.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("sender does not mark read", func(t *testing.T) {
		f := newMessageFixture(t)
		msg := f.message(t)
		resp, err := f.svc.Get(ctx, f.tenantID, f.alice.ID, msg.ID)
		require.NoError(t, err)
		assert.False(t, resp.IsRead)
		f.messages.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("outsider gets not found", func(t *testing.T) {
		f := newMessageFixture(t)
		msg := f.message(t)
		_, err := f.svc.Get(ctx, f.tenantID, uuid.New(), msg.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sender cannot mark read", func(t *testing.T) {
		f := newMessageFixture(t)
		msg := f.message(t)
		err := f.svc.MarkRead(ctx, f.tenantID, f.alice.ID, msg.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestMessageService_Delete(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	msg := f.message(t)
	f.messages.On("Save", ctx, msg).Return(nil)
	f.messages.On("Delete", ctx, f.tenantID, msg.ID).Return(nil)

	require.NoError(t, f.svc.Delete(ctx, f.tenantID, f.bob.ID, msg.ID))
	assert.True(t, msg.RecipientDeleted)
	f.messages.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)

	// hidden for bob now
	_, err := f.svc.Get(ctx, f.tenantID, f.bob.ID, msg.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, f.tenantID, f.alice.ID, msg.ID))
	f.messages.AssertCalled(t, "Delete", ctx, f.tenantID, msg.ID)
}

func TestMessageService_Inbox(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()
	msg := f.message(t)
	f.messages.On("FindForUser", ctx, f.tenantID, f.bob.ID, mock.MatchedBy(func(filter messaging.MessageFilter) bool {
		return filter.Mailbox == messaging.MailboxInbox && filter.UnreadOnly && filter.OrderDir == "desc"
	})).Return([]*messaging.Message{msg}, int64(1), nil)

	out, total, err := f.svc.Inbox(ctx, f.tenantID, f.bob.ID, MessageListFilter{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, out, 1)
	assert.Equal(t, "Alice", out[0].SenderName)
	f.users.AssertNumberOfCalls(t, "FindByID", 2)
}
