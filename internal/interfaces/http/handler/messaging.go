package handler

import (
	"github.com/gin-gonic/gin"
	messagingapp "github.com/ledgerly/backend/internal/application/messaging"
)

// MessageHandler serves the direct messages of the current user
type MessageHandler struct {
	BaseHandler
	messageService *messagingapp.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService *messagingapp.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Inbox godoc
// @Summary      List received messages
// @Tags         messages
// @Produce      json
// @Param        page      query int  false "Page number" default(1)
// @Param        page_size query int  false "Page size" default(20)
// @Param        unread    query bool false "Only unread messages"
// @Success      200 {object} dto.Response{data=[]messagingapp.MessageResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /messages/inbox [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	var filter messagingapp.MessageListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	messages, total, err := h.messageService.Inbox(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, messages, total, filter.Page, filter.PageSize)
}

// Sent godoc
// @Summary      List sent messages
// @Tags         messages
// @Produce      json
// @Param        page      query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]messagingapp.MessageResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /messages/sent [get]
func (h *MessageHandler) Sent(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	var filter messagingapp.MessageListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	messages, total, err := h.messageService.Sent(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, messages, total, filter.Page, filter.PageSize)
}

// Send godoc
// @Summary      Send a message
// @Description  Send a direct message to another user of the same account
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body messagingapp.SendMessageRequest true "Message"
// @Success      201 {object} dto.Response{data=messagingapp.MessageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	var req messagingapp.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// Get godoc
// @Summary      Get a message
// @Description  Reading a received message marks it as read
// @Tags         messages
// @Produce      json
// @Param        id path string true "Message ID" format(uuid)
// @Success      200 {object} dto.Response{data=messagingapp.MessageResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /messages/{id} [get]
func (h *MessageHandler) Get(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "message")
	if !ok {
		return
	}

	msg, err := h.messageService.Get(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// MarkRead godoc
// @Summary      Mark a message as read
// @Tags         messages
// @Param        id path string true "Message ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "message")
	if !ok {
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Delete godoc
// @Summary      Delete a message
// @Description  Removes the message from the caller's mailbox only
// @Tags         messages
// @Param        id path string true "Message ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "message")
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnreadCount godoc
// @Summary      Count unread messages
// @Tags         messages
// @Produce      json
// @Success      200 {object} dto.Response{data=messagingapp.UnreadCountResponse}
// @Security     BearerAuth
// @Router       /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}

	count, err := h.messageService.UnreadCount(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// NotificationHandler serves the notifications of the current user
type NotificationHandler struct {
	BaseHandler
	notificationService *messagingapp.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *messagingapp.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List godoc
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        unread    query bool   false "Only unread notifications"
// @Param        type      query string false "Notification type"
// @Success      200 {object} dto.Response{data=[]messagingapp.NotificationResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	var filter messagingapp.NotificationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	notifications, total, err := h.notificationService.List(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, notifications, total, filter.Page, filter.PageSize)
}

// UnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200 {object} dto.Response{data=messagingapp.UnreadCountResponse}
// @Security     BearerAuth
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, count)
}

// MarkRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} dto.Response{data=messagingapp.NotificationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "notification")
	if !ok {
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notification)
}

// MarkAllRead godoc
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} dto.Response{data=messagingapp.MarkAllReadResponse}
// @Security     BearerAuth
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}

	result, err := h.notificationService.MarkAllRead(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete a notification
// @Tags         notifications
// @Param        id path string true "Notification ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	tenantID, userID, ok := h.tenantAndUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), tenantID, userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
