package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoicingapp "github.com/ledgerly/backend/internal/application/invoicing"
)

// InvoiceHandler handles invoices, their payments and printing
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
	paymentService *invoicingapp.PaymentService
	printService   *invoicingapp.PrintService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(
	invoiceService *invoicingapp.InvoiceService,
	paymentService *invoicingapp.PaymentService,
	printService *invoicingapp.PrintService,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
		printService:   printService,
	}
}

// Create godoc
// @Summary      Create a draft invoice
// @Description  Create a draft invoice; lines referencing a product default to its name, price and tax rate
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} dto.Response{data=invoicingapp.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// Get godoc
// @Summary      Get invoice by ID
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoicingapp.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	h.withInvoice(c, h.invoiceService.Get)
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Param        search      query string false "Search by number or customer name"
// @Param        status      query string false "DRAFT, CONFIRMED, PARTIAL_PAID, PAID or CANCELLED"
// @Param        customer_id query string false "Filter by customer" format(uuid)
// @Param        date_from   query string false "Issued on or after (YYYY-MM-DD)"
// @Param        date_to     query string false "Issued on or before (YYYY-MM-DD)"
// @Param        overdue     query bool   false "Only overdue invoices"
// @Success      200 {object} dto.Response{data=[]invoicingapp.InvoiceResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter invoicingapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.CustomerID, ok = h.queryUUID(c, "customer_id"); !ok {
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a draft invoice
// @Description  Replace the header and lines of a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoicingapp.UpdateInvoiceRequest true "Invoice update request"
// @Success      200 {object} dto.Response{data=invoicingapp.InvoiceResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	var req invoicingapp.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), tenantID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete godoc
// @Summary      Delete a draft invoice
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), tenantID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Confirm godoc
// @Summary      Confirm an invoice
// @Description  Deduct stock, book the amount on the customer balance and freeze the invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoicingapp.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/confirm [post]
func (h *InvoiceHandler) Confirm(c *gin.Context) {
	h.withInvoice(c, h.invoiceService.Confirm)
}

// Unconfirm godoc
// @Summary      Return an invoice to draft
// @Description  Only invoices without payments can be unconfirmed; stock and balance are restored
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoicingapp.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/unconfirm [post]
func (h *InvoiceHandler) Unconfirm(c *gin.Context) {
	h.withInvoice(c, h.invoiceService.Unconfirm)
}

// Cancel godoc
// @Summary      Cancel an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoicingapp.CancelInvoiceRequest false "Cancel reason"
// @Success      200 {object} dto.Response{data=invoicingapp.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	var req invoicingapp.CancelInvoiceRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Cancel(c.Request.Context(), tenantID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Reopen godoc
// @Summary      Reopen a cancelled invoice
// @Description  A cancelled invoice goes back to draft
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoicingapp.InvoiceResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/reopen [post]
func (h *InvoiceHandler) Reopen(c *gin.Context) {
	h.withInvoice(c, h.invoiceService.Reopen)
}

func (h *InvoiceHandler) withInvoice(c *gin.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*invoicingapp.InvoiceResponse, error)) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	invoice, err := fn(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Summary godoc
// @Summary      Invoice summary
// @Description  Count and totals per status, plus outstanding and overdue amounts
// @Tags         invoices
// @Produce      json
// @Param        date_from query string false "Issued on or after (YYYY-MM-DD)"
// @Param        date_to   query string false "Issued on or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=invoicingapp.SummaryResponse}
// @Security     BearerAuth
// @Router       /invoices/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter invoicingapp.SummaryFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	summary, err := h.invoiceService.Summary(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// PDF godoc
// @Summary      Invoice PDF
// @Description  Render the invoice with the account branding; download=true forces an attachment
// @Tags         invoices
// @Produce      application/pdf
// @Param        id       path  string true  "Invoice ID" format(uuid)
// @Param        download query bool   false "Send as attachment"
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      501 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	doc, err := h.printService.PDF(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+"; filename=\""+doc.Filename+"\"")
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}

// Print godoc
// @Summary      Printable invoice
// @Description  The HTML document the PDF is rendered from
// @Tags         invoices
// @Produce      html
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {string} string
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/print [get]
func (h *InvoiceHandler) Print(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	html, err := h.printService.HTML(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// ListPayments godoc
// @Summary      Payments of an invoice
// @Tags         payments
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]invoicingapp.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [get]
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// RecordPayment godoc
// @Summary      Record a payment
// @Description  Record money received; the amount cannot exceed the open amount of the invoice
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoicingapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=invoicingapp.PaymentResultResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}

	var req invoicingapp.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Record(c.Request.Context(), tenantID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// DeletePayment godoc
// @Summary      Delete a payment
// @Description  Remove a payment and restore the open amount of the invoice
// @Tags         payments
// @Produce      json
// @Param        id        path string true "Invoice ID" format(uuid)
// @Param        paymentId path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=invoicingapp.InvoiceResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/payments/{paymentId} [delete]
func (h *InvoiceHandler) DeletePayment(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id", "invoice")
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "paymentId", "payment")
	if !ok {
		return
	}

	invoice, err := h.paymentService.Delete(c.Request.Context(), tenantID, invoiceID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}
