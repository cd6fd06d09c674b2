package messaging

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	tenantID, alice, bob := uuid.New(), uuid.New(), uuid.New()

	m, err := NewMessage(tenantID, alice, bob, "  Hello ", "Lunch?")
	require.NoError(t, err)
	assert.Equal(t, "Hello", m.Subject)
	assert.False(t, m.IsRead())
	assert.Equal(t, &alice, m.CreatedBy)
	require.Len(t, m.GetDomainEvents(), 1)
	ev := m.GetDomainEvents()[0].(*MessageSentEvent)
	assert.Equal(t, bob, ev.RecipientID)

	_, err = NewMessage(tenantID, alice, alice, "x", "y")
	assert.Error(t, err)
	_, err = NewMessage(tenantID, alice, bob, strings.Repeat("s", 201), "y")
	assert.Error(t, err)
	_, err = NewMessage(tenantID, alice, bob, "x", "   ")
	assert.Error(t, err)
}

func TestMessage_MarkRead(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	m, err := NewMessage(uuid.New(), alice, bob, "s", "b")
	require.NoError(t, err)

	_, err = m.MarkRead(alice)
	assert.Error(t, err)

	changed, err := m.MarkRead(bob)
	require.NoError(t, err)
	assert.True(t, changed)
	first := *m.ReadAt

	changed, err = m.MarkRead(bob)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, *m.ReadAt)
}

func TestMessage_DeleteFor(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	m, err := NewMessage(uuid.New(), alice, bob, "s", "b")
	require.NoError(t, err)

	assert.Error(t, m.DeleteFor(uuid.New()))

	require.NoError(t, m.DeleteFor(bob))
	assert.False(t, m.VisibleTo(bob))
	assert.True(t, m.VisibleTo(alice))
	assert.False(t, m.DeletedByBoth())

	require.NoError(t, m.DeleteFor(alice))
	assert.True(t, m.DeletedByBoth())
}

func TestNewNotification(t *testing.T) {
	userID, invoiceID := uuid.New(), uuid.New()
	n, err := NewNotification(uuid.New(), userID, NotificationInvoicePaid, "Invoice paid", "INV-2025-00001 was paid",
		&EntityRef{Type: "Invoice", ID: invoiceID})
	require.NoError(t, err)
	assert.Equal(t, "Invoice", n.EntityType)
	assert.Equal(t, invoiceID, *n.EntityID)

	assert.True(t, n.MarkRead())
	assert.False(t, n.MarkRead())

	_, err = NewNotification(uuid.New(), userID, "WEATHER", "x", "", nil)
	assert.Error(t, err)
	_, err = NewNotification(uuid.New(), uuid.Nil, NotificationSystem, "x", "", nil)
	assert.Error(t, err)
}
