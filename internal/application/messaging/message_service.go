package messaging

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/identity"
	"github.com/ledgerly/backend/internal/domain/messaging"
	"github.com/ledgerly/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MessageService handles direct messages between users of one account
type MessageService struct {
	messageRepo messaging.MessageRepository
	userRepo    identity.UserRepository
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo messaging.MessageRepository,
	userRepo identity.UserRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		events:      events,
		logger:      logger,
	}
}

// Send delivers a message to another active user of the same account
func (s *MessageService) Send(ctx context.Context, tenantID, senderID uuid.UUID, req SendMessageRequest) (*MessageResponse, error) {
	if req.RecipientID == senderID {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Cannot send a message to yourself")
	}
	recipient, err := s.userRepo.FindByID(ctx, tenantID, req.RecipientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient not found")
		}
		return nil, err
	}
	if recipient.Status == identity.UserStatusDisabled {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient is disabled")
	}

	msg, err := messaging.NewMessage(tenantID, senderID, recipient.ID, req.Subject, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := shared.PublishAndClear(ctx, s.events, msg); err != nil {
		s.logger.Warn("Failed to publish message events", zap.Error(err))
	}

	s.logger.Debug("Message sent",
		zap.String("message_id", msg.ID.String()),
		zap.String("recipient_id", recipient.ID.String()))

	resp := ToMessageResponse(msg)
	resp.SenderName = s.userName(ctx, tenantID, map[uuid.UUID]string{}, senderID)
	resp.RecipientName = recipient.Name()
	return &resp, nil
}

// Inbox lists the messages received by the user, newest first
func (s *MessageService) Inbox(ctx context.Context, tenantID, userID uuid.UUID, filter MessageListFilter) ([]MessageResponse, int64, error) {
	return s.mailbox(ctx, tenantID, userID, messaging.MailboxInbox, filter)
}

// Sent lists the messages sent by the user, newest first
func (s *MessageService) Sent(ctx context.Context, tenantID, userID uuid.UUID, filter MessageListFilter) ([]MessageResponse, int64, error) {
	return s.mailbox(ctx, tenantID, userID, messaging.MailboxSent, filter)
}

func (s *MessageService) mailbox(ctx context.Context, tenantID, userID uuid.UUID, box messaging.Mailbox, filter MessageListFilter) ([]MessageResponse, int64, error) {
	messages, total, err := s.messageRepo.FindForUser(ctx, tenantID, userID, messaging.MessageFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
			OrderDir: "desc",
		}.Normalize(),
		Mailbox:    box,
		UnreadOnly: filter.UnreadOnly,
	})
	if err != nil {
		return nil, 0, err
	}

	names := make(map[uuid.UUID]string)
	out := make([]MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = ToMessageResponse(m)
		out[i].SenderName = s.userName(ctx, tenantID, names, m.SenderID)
		out[i].RecipientName = s.userName(ctx, tenantID, names, m.RecipientID)
	}
	return out, total, nil
}

// Get returns a message visible to the user. Opening it as the recipient marks it read.
func (s *MessageService) Get(ctx context.Context, tenantID, userID, id uuid.UUID) (*MessageResponse, error) {
	msg, err := s.visible(ctx, tenantID, userID, id)
	if err != nil {
		return nil, err
	}
	if msg.RecipientID == userID {
		if err := s.markRead(ctx, msg, userID); err != nil {
			return nil, err
		}
	}

	resp := ToMessageResponse(msg)
	names := make(map[uuid.UUID]string)
	resp.SenderName = s.userName(ctx, tenantID, names, msg.SenderID)
	resp.RecipientName = s.userName(ctx, tenantID, names, msg.RecipientID)
	return &resp, nil
}

// MarkRead marks a received message read
func (s *MessageService) MarkRead(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	msg, err := s.visible(ctx, tenantID, userID, id)
	if err != nil {
		return err
	}
	return s.markRead(ctx, msg, userID)
}

// Delete hides the message for the user. Once both sides have deleted it the
// message is removed.
func (s *MessageService) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	msg, err := s.visible(ctx, tenantID, userID, id)
	if err != nil {
		return err
	}
	if err := msg.DeleteFor(userID); err != nil {
		return err
	}
	if msg.DeletedByBoth() {
		return s.messageRepo.Delete(ctx, tenantID, msg.ID)
	}
	return s.messageRepo.Save(ctx, msg)
}

// UnreadCount returns the number of unread received messages
func (s *MessageService) UnreadCount(ctx context.Context, tenantID, userID uuid.UUID) (*UnreadCountResponse, error) {
	count, err := s.messageRepo.CountUnread(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Count: count}, nil
}

// visible loads a message the user still sees; others get NOT_FOUND
func (s *MessageService) visible(ctx context.Context, tenantID, userID, id uuid.UUID) (*messaging.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !msg.VisibleTo(userID) {
		return nil, shared.ErrNotFound
	}
	return msg, nil
}

func (s *MessageService) markRead(ctx context.Context, msg *messaging.Message, userID uuid.UUID) error {
	changed, err := msg.MarkRead(userID)
	if err != nil || !changed {
		return err
	}
	return s.messageRepo.Save(ctx, msg)
}

// userName resolves a display name once per request. Users that no longer
// exist are shown with an empty name.
func (s *MessageService) userName(ctx context.Context, tenantID uuid.UUID, cache map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := cache[id]; ok {
		return name
	}
	var name string
	if user, err := s.userRepo.FindByID(ctx, tenantID, id); err == nil {
		name = user.Name()
	}
	cache[id] = name
	return name
}
