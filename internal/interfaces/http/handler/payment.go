package handler

import (
	"github.com/gin-gonic/gin"
	invoicingapp "github.com/ledgerly/backend/internal/application/invoicing"
)

// PaymentHandler lists payments across invoices
type PaymentHandler struct {
	BaseHandler
	paymentService *invoicingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *invoicingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List godoc
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Param        search      query string false "Search by reference or invoice number"
// @Param        invoice_id  query string false "Filter by invoice" format(uuid)
// @Param        customer_id query string false "Filter by customer" format(uuid)
// @Param        method      query string false "CASH, BANK_TRANSFER, CARD, CHECK or OTHER"
// @Param        date_from   query string false "Paid on or after (YYYY-MM-DD)"
// @Param        date_to     query string false "Paid on or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]invoicingapp.PaymentResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter invoicingapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.InvoiceID, ok = h.queryUUID(c, "invoice_id"); !ok {
		return
	}
	if filter.CustomerID, ok = h.queryUUID(c, "customer_id"); !ok {
		return
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}
