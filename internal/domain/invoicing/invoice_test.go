package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/backend/internal/domain/shared"
	"github.com/ledgerly/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testHeader() InvoiceHeader {
	issue := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	return InvoiceHeader{
		CustomerID:   uuid.New(),
		CustomerName: "Acme Ltd",
		IssueDate:    issue,
		DueDate:      issue.AddDate(0, 0, 30),
		Currency:     valueobject.EUR,
	}
}

func newDraft(t *testing.T, items ...ItemInput) *Invoice {
	t.Helper()
	if len(items) == 0 {
		productID := uuid.New()
		items = []ItemInput{{
			ProductID:   &productID,
			ProductName: "Widget",
			Quantity:    dec("2"),
			UnitPrice:   dec("50"),
			TaxRate:     dec("10"),
		}}
	}
	inv, err := NewInvoice(uuid.New(), "INV-2025-00001", testHeader(), items)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func newConfirmed(t *testing.T) *Invoice {
	t.Helper()
	inv := newDraft(t)
	require.NoError(t, inv.Confirm())
	inv.ClearDomainEvents()
	return inv
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok, "expected domain error, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestInvoiceStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from InvoiceStatus
		to   InvoiceStatus
		want bool
	}{
		{InvoiceStatusDraft, InvoiceStatusConfirmed, true},
		{InvoiceStatusDraft, InvoiceStatusCancelled, true},
		{InvoiceStatusDraft, InvoiceStatusPaid, false},
		{InvoiceStatusConfirmed, InvoiceStatusDraft, true},
		{InvoiceStatusConfirmed, InvoiceStatusPartialPaid, true},
		{InvoiceStatusConfirmed, InvoiceStatusPaid, true},
		{InvoiceStatusConfirmed, InvoiceStatusCancelled, true},
		{InvoiceStatusPartialPaid, InvoiceStatusPaid, true},
		{InvoiceStatusPartialPaid, InvoiceStatusConfirmed, true},
		{InvoiceStatusPartialPaid, InvoiceStatusCancelled, false},
		{InvoiceStatusPartialPaid, InvoiceStatusDraft, false},
		{InvoiceStatusPaid, InvoiceStatusPartialPaid, true},
		{InvoiceStatusPaid, InvoiceStatusCancelled, false},
		{InvoiceStatusCancelled, InvoiceStatusDraft, true},
		{InvoiceStatusCancelled, InvoiceStatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewInvoiceItem_LineMath(t *testing.T) {
	item, err := NewInvoiceItem(uuid.New(), ItemInput{
		ProductName:  "Consulting",
		Quantity:     dec("3"),
		UnitPrice:    dec("33.335"),
		DiscountRate: dec("10"),
		TaxRate:      dec("20"),
	}, 0)
	require.NoError(t, err)

	// 3 * 33.335 = 100.005 -> 100.01
	assert.True(t, dec("100.01").Equal(item.Subtotal), item.Subtotal.String())
	assert.True(t, dec("10").Equal(item.DiscountAmount), item.DiscountAmount.String())
	// (100.01 - 10.00) * 20% = 18.002 -> 18.00
	assert.True(t, dec("18").Equal(item.TaxAmount), item.TaxAmount.String())
	assert.True(t, dec("108.01").Equal(item.Total), item.Total.String())
	assert.False(t, item.TracksProduct())
}

func TestNewInvoiceItem_Validation(t *testing.T) {
	nilID := uuid.Nil
	base := ItemInput{ProductName: "x", Quantity: dec("1"), UnitPrice: dec("1")}
	tests := []struct {
		name   string
		mutate func(in *ItemInput)
		code   string
	}{
		{"empty name", func(in *ItemInput) { in.ProductName = " " }, "INVALID_ITEM_NAME"},
		{"nil product id", func(in *ItemInput) { in.ProductID = &nilID }, "INVALID_PRODUCT"},
		{"zero quantity", func(in *ItemInput) { in.Quantity = decimal.Zero }, "INVALID_QUANTITY"},
		{"negative price", func(in *ItemInput) { in.UnitPrice = dec("-1") }, "INVALID_PRICE"},
		{"discount over 100", func(in *ItemInput) { in.DiscountRate = dec("100.01") }, "INVALID_DISCOUNT_RATE"},
		{"negative tax", func(in *ItemInput) { in.TaxRate = dec("-5") }, "INVALID_TAX_RATE"},
		{"quantity beyond 4 places", func(in *ItemInput) { in.Quantity = dec("1.00001") }, "INVALID_QUANTITY"},
		{"price beyond 4 places", func(in *ItemInput) { in.UnitPrice = dec("9.99995") }, "INVALID_PRICE"},
		{"discount beyond 2 places", func(in *ItemInput) { in.DiscountRate = dec("12.345") }, "INVALID_DISCOUNT_RATE"},
		{"tax beyond 2 places", func(in *ItemInput) { in.TaxRate = dec("7.125") }, "INVALID_TAX_RATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := NewInvoiceItem(uuid.New(), in, 0)
			requireCode(t, err, tt.code)
		})
	}

	t.Run("four decimal places are kept", func(t *testing.T) {
		in := base
		in.Quantity = dec("2.5000")
		in.UnitPrice = dec("0.1234")
		item, err := NewInvoiceItem(uuid.New(), in, 0)
		require.NoError(t, err)
		assert.True(t, item.UnitPrice.Equal(dec("0.1234")))
		assert.True(t, item.Subtotal.Equal(dec("0.31")))
	})

	t.Run("zero price is allowed", func(t *testing.T) {
		in := base
		in.UnitPrice = decimal.Zero
		item, err := NewInvoiceItem(uuid.New(), in, 0)
		require.NoError(t, err)
		assert.True(t, item.Total.IsZero())
	})
}

func TestNewInvoice(t *testing.T) {
	t.Run("computes totals and normalizes dates", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), "INV-2025-00001", testHeader(), []ItemInput{
			{ProductName: "A", Quantity: dec("2"), UnitPrice: dec("50"), TaxRate: dec("10")},
			{ProductName: "B", Quantity: dec("1"), UnitPrice: dec("20"), DiscountRate: dec("50")},
		})
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.True(t, dec("120").Equal(inv.Subtotal))
		assert.True(t, dec("10").Equal(inv.DiscountAmount))
		assert.True(t, dec("10").Equal(inv.TaxAmount))
		assert.True(t, dec("120").Equal(inv.TotalAmount))
		assert.Equal(t, 0, inv.IssueDate.Hour())
		assert.Len(t, inv.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeInvoiceCreated, inv.GetDomainEvents()[0].EventType())
		for i, item := range inv.Items {
			assert.Equal(t, inv.ID, item.InvoiceID)
			assert.Equal(t, i, item.SortOrder)
		}
	})

	t.Run("due date defaults to issue date", func(t *testing.T) {
		h := testHeader()
		h.DueDate = time.Time{}
		inv, err := NewInvoice(uuid.New(), "INV-1", h, nil)
		require.NoError(t, err)
		assert.Equal(t, inv.IssueDate, inv.DueDate)
	})

	t.Run("rejects due date before issue date", func(t *testing.T) {
		h := testHeader()
		h.DueDate = h.IssueDate.AddDate(0, 0, -1)
		_, err := NewInvoice(uuid.New(), "INV-1", h, nil)
		requireCode(t, err, "INVALID_DUE_DATE")
	})

	t.Run("item errors carry their position", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "INV-1", testHeader(), []ItemInput{
			{ProductName: "ok", Quantity: dec("1"), UnitPrice: dec("1")},
			{ProductName: "bad", Quantity: dec("0"), UnitPrice: dec("1")},
		})
		requireCode(t, err, "INVALID_QUANTITY")
		assert.Contains(t, err.Error(), "Item 2")
	})

	t.Run("requires number and customer", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), "", testHeader(), nil)
		requireCode(t, err, "INVALID_INVOICE_NUMBER")

		h := testHeader()
		h.CustomerID = uuid.Nil
		_, err = NewInvoice(uuid.New(), "INV-1", h, nil)
		requireCode(t, err, "INVALID_CUSTOMER")
	})
}

func TestInvoice_Update(t *testing.T) {
	inv := newDraft(t)
	h := testHeader()
	h.Notes = "thanks"
	require.NoError(t, inv.Update(h, []ItemInput{{ProductName: "C", Quantity: dec("4"), UnitPrice: dec("5")}}))
	assert.Len(t, inv.Items, 1)
	assert.True(t, dec("20").Equal(inv.TotalAmount))
	assert.Equal(t, "thanks", inv.Notes)

	confirmed := newConfirmed(t)
	requireCode(t, confirmed.Update(h, nil), "INVALID_STATE")
}

func TestInvoice_Confirm(t *testing.T) {
	t.Run("draft with items", func(t *testing.T) {
		inv := newDraft(t)
		require.NoError(t, inv.Confirm())
		assert.Equal(t, InvoiceStatusConfirmed, inv.Status)
		assert.NotNil(t, inv.ConfirmedAt)
		require.Len(t, inv.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeInvoiceConfirmed, inv.GetDomainEvents()[0].EventType())
		assert.True(t, dec("110").Equal(inv.Outstanding()))
	})

	t.Run("no items", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), "INV-1", testHeader(), nil)
		require.NoError(t, err)
		requireCode(t, inv.Confirm(), "NO_ITEMS")
	})

	t.Run("zero total", func(t *testing.T) {
		inv := newDraft(t, ItemInput{ProductName: "free", Quantity: dec("1"), UnitPrice: decimal.Zero})
		requireCode(t, inv.Confirm(), "INVALID_AMOUNT")
	})

	t.Run("twice", func(t *testing.T) {
		inv := newConfirmed(t)
		requireCode(t, inv.Confirm(), "INVALID_STATE")
	})
}

func TestInvoice_Unconfirm(t *testing.T) {
	inv := newConfirmed(t)
	require.NoError(t, inv.Unconfirm())
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Nil(t, inv.ConfirmedAt)

	paid := newConfirmed(t)
	require.NoError(t, paid.RecordPayment(uuid.New(), dec("10")))
	requireCode(t, paid.Unconfirm(), "INVALID_STATE")

	draft := newDraft(t)
	requireCode(t, draft.Unconfirm(), "INVALID_STATE")
}

func TestInvoice_RecordPayment(t *testing.T) {
	t.Run("partial then full", func(t *testing.T) {
		inv := newConfirmed(t)
		require.NoError(t, inv.RecordPayment(uuid.New(), dec("40")))
		assert.Equal(t, InvoiceStatusPartialPaid, inv.Status)
		assert.True(t, dec("70").Equal(inv.Outstanding()))
		assert.Nil(t, inv.PaidAt)

		require.NoError(t, inv.RecordPayment(uuid.New(), dec("70")))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.NotNil(t, inv.PaidAt)
		assert.True(t, inv.Outstanding().IsZero())

		types := make([]string, 0)
		for _, e := range inv.GetDomainEvents() {
			types = append(types, e.EventType())
		}
		assert.Equal(t, []string{
			EventTypeInvoicePaymentRecorded,
			EventTypeInvoicePaymentRecorded,
			EventTypeInvoicePaid,
		}, types)
	})

	t.Run("over outstanding", func(t *testing.T) {
		inv := newConfirmed(t)
		requireCode(t, inv.RecordPayment(uuid.New(), dec("110.01")), "PAYMENT_EXCEEDS_OUTSTANDING")
		assert.True(t, inv.PaidAmount.IsZero())
	})

	t.Run("non positive", func(t *testing.T) {
		inv := newConfirmed(t)
		requireCode(t, inv.RecordPayment(uuid.New(), decimal.Zero), "INVALID_AMOUNT")
	})

	t.Run("wrong status", func(t *testing.T) {
		for _, inv := range []*Invoice{newDraft(t), func() *Invoice {
			i := newConfirmed(t)
			require.NoError(t, i.RecordPayment(uuid.New(), dec("110")))
			return i
		}()} {
			requireCode(t, inv.RecordPayment(uuid.New(), dec("1")), "INVALID_STATE")
		}
	})
}

func TestInvoice_RemovePayment(t *testing.T) {
	inv := newConfirmed(t)
	first, second := uuid.New(), uuid.New()
	require.NoError(t, inv.RecordPayment(first, dec("60")))
	require.NoError(t, inv.RecordPayment(second, dec("50")))
	require.Equal(t, InvoiceStatusPaid, inv.Status)

	require.NoError(t, inv.RemovePayment(second, dec("50")))
	assert.Equal(t, InvoiceStatusPartialPaid, inv.Status)
	assert.Nil(t, inv.PaidAt)

	require.NoError(t, inv.RemovePayment(first, dec("60")))
	assert.Equal(t, InvoiceStatusConfirmed, inv.Status)
	assert.True(t, inv.PaidAmount.IsZero())

	requireCode(t, inv.RemovePayment(first, dec("1")), "INVALID_STATE")
}

func TestInvoice_CancelAndReopen(t *testing.T) {
	t.Run("from draft", func(t *testing.T) {
		inv := newDraft(t)
		require.NoError(t, inv.Cancel("duplicate"))
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		ev, ok := inv.GetDomainEvents()[0].(*InvoiceCancelledEvent)
		require.True(t, ok)
		assert.False(t, ev.WasConfirmed)
		assert.True(t, inv.CanDelete())
	})

	t.Run("from confirmed", func(t *testing.T) {
		inv := newConfirmed(t)
		require.NoError(t, inv.Cancel(""))
		ev := inv.GetDomainEvents()[0].(*InvoiceCancelledEvent)
		assert.True(t, ev.WasConfirmed)
		assert.True(t, inv.Outstanding().IsZero())
	})

	t.Run("with payments", func(t *testing.T) {
		inv := newConfirmed(t)
		require.NoError(t, inv.RecordPayment(uuid.New(), dec("10")))
		requireCode(t, inv.Cancel("x"), "INVALID_STATE")
	})

	t.Run("cancelled is terminal except reopen", func(t *testing.T) {
		inv := newDraft(t)
		require.NoError(t, inv.Cancel("x"))
		requireCode(t, inv.Confirm(), "INVALID_STATE")
		requireCode(t, inv.Update(testHeader(), nil), "INVALID_STATE")
		requireCode(t, inv.RecordPayment(uuid.New(), dec("1")), "INVALID_STATE")
		requireCode(t, inv.Cancel("again"), "INVALID_STATE")

		require.NoError(t, inv.Reopen())
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Empty(t, inv.CancelReason)
		assert.Nil(t, inv.CancelledAt)
	})

	t.Run("reopen only from cancelled", func(t *testing.T) {
		requireCode(t, newDraft(t).Reopen(), "INVALID_STATE")
	})
}

func TestInvoice_ProductQuantities(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	inv := newDraft(t,
		ItemInput{ProductID: &a, ProductName: "A", Quantity: dec("1"), UnitPrice: dec("1")},
		ItemInput{ProductID: &b, ProductName: "B", Quantity: dec("2"), UnitPrice: dec("1")},
		ItemInput{ProductID: &a, ProductName: "A again", Quantity: dec("3"), UnitPrice: dec("1")},
		ItemInput{ProductName: "service", Quantity: dec("1"), UnitPrice: dec("1")},
	)
	qty := inv.ProductQuantities()
	assert.Len(t, qty, 2)
	assert.True(t, dec("4").Equal(qty[a]))
	assert.True(t, dec("2").Equal(qty[b]))
	assert.Equal(t, []uuid.UUID{a, b}, inv.ProductIDs())
}

func TestInvoice_IsOverdue(t *testing.T) {
	inv := newConfirmed(t)
	assert.False(t, inv.IsOverdue(inv.DueDate))
	assert.True(t, inv.IsOverdue(inv.DueDate.AddDate(0, 0, 1)))
	assert.False(t, newDraft(t).IsOverdue(time.Now().AddDate(5, 0, 0)))
}

func TestNewPayment(t *testing.T) {
	inv := newConfirmed(t)
	p, err := NewPayment(inv, PaymentInput{Amount: dec("10.005"), Method: "cash"})
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCash, p.Method)
	assert.True(t, dec("10.01").Equal(p.Amount))
	assert.Equal(t, inv.TenantID, p.TenantID)
	assert.Equal(t, inv.CustomerID, p.CustomerID)
	assert.Equal(t, valueobject.EUR, p.Currency)
	assert.False(t, p.PaidAt.IsZero())

	_, err = NewPayment(inv, PaymentInput{Amount: dec("1"), Method: "BARTER"})
	requireCode(t, err, "INVALID_PAYMENT_METHOD")

	_, err = NewPayment(inv, PaymentInput{Amount: dec("-1")})
	requireCode(t, err, "INVALID_AMOUNT")
}
