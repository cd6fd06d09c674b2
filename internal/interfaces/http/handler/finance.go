package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/ledgerly/backend/internal/application/finance"
)

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// Create godoc
// @Summary      Record an expense
// @Description  Record an expense; the number is assigned from the account's expense sequence
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateExpenseRequest true "Expense"
// @Success      201 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req financeapp.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// GetByID godoc
// @Summary      Get expense by ID
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "expense")
	if !ok {
		return
	}

	expense, err := h.expenseService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// List godoc
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        search    query string false "Search by number, description or payee"
// @Param        category  query string false "Expense category"
// @Param        date_from query string false "On or after (YYYY-MM-DD)"
// @Param        date_to   query string false "On or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]financeapp.ExpenseResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter financeapp.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	expenses, total, err := h.expenseService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID" format(uuid)
// @Param        request body financeapp.UpdateExpenseRequest true "Expense"
// @Success      200 {object} dto.Response{data=financeapp.ExpenseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "expense")
	if !ok {
		return
	}
	var req financeapp.UpdateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete godoc
// @Summary      Delete an expense
// @Tags         expenses
// @Param        id path string true "Expense ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "expense")
	if !ok {
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Summary godoc
// @Summary      Expense summary
// @Description  Totals per category for a date range; every category is listed
// @Tags         expenses
// @Produce      json
// @Param        date_from query string false "On or after (YYYY-MM-DD)"
// @Param        date_to   query string false "On or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=financeapp.SummaryResponse}
// @Security     BearerAuth
// @Router       /expenses/summary [get]
func (h *ExpenseHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter financeapp.SummaryFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	summary, err := h.expenseService.Summary(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// RevenueHandler handles revenue endpoints
type RevenueHandler struct {
	BaseHandler
	revenueService *financeapp.RevenueService
}

// NewRevenueHandler creates a new RevenueHandler
func NewRevenueHandler(revenueService *financeapp.RevenueService) *RevenueHandler {
	return &RevenueHandler{revenueService: revenueService}
}

// Create godoc
// @Summary      Record a revenue
// @Description  Record income not covered by invoices; it may reference a customer
// @Tags         revenues
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateRevenueRequest true "Revenue"
// @Success      201 {object} dto.Response{data=financeapp.RevenueResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /revenues [post]
func (h *RevenueHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var req financeapp.CreateRevenueRequest
	if !h.bindJSON(c, &req) {
		return
	}

	revenue, err := h.revenueService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, revenue)
}

// GetByID godoc
// @Summary      Get revenue by ID
// @Tags         revenues
// @Produce      json
// @Param        id path string true "Revenue ID" format(uuid)
// @Success      200 {object} dto.Response{data=financeapp.RevenueResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /revenues/{id} [get]
func (h *RevenueHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "revenue")
	if !ok {
		return
	}

	revenue, err := h.revenueService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, revenue)
}

// List godoc
// @Summary      List revenues
// @Tags         revenues
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Param        search      query string false "Search by number, description or payer"
// @Param        category    query string false "Revenue category"
// @Param        customer_id query string false "Filter by customer" format(uuid)
// @Param        date_from   query string false "On or after (YYYY-MM-DD)"
// @Param        date_to     query string false "On or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]financeapp.RevenueResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /revenues [get]
func (h *RevenueHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter financeapp.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.CustomerID, ok = h.queryUUID(c, "customer_id"); !ok {
		return
	}

	revenues, total, err := h.revenueService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, revenues, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a revenue
// @Tags         revenues
// @Accept       json
// @Produce      json
// @Param        id path string true "Revenue ID" format(uuid)
// @Param        request body financeapp.UpdateRevenueRequest true "Revenue"
// @Success      200 {object} dto.Response{data=financeapp.RevenueResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /revenues/{id} [put]
func (h *RevenueHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "revenue")
	if !ok {
		return
	}
	var req financeapp.UpdateRevenueRequest
	if !h.bindJSON(c, &req) {
		return
	}

	revenue, err := h.revenueService.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, revenue)
}

// Delete godoc
// @Summary      Delete a revenue
// @Tags         revenues
// @Param        id path string true "Revenue ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /revenues/{id} [delete]
func (h *RevenueHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "revenue")
	if !ok {
		return
	}

	if err := h.revenueService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Summary godoc
// @Summary      Revenue summary
// @Description  Totals per category for a date range; every category is listed
// @Tags         revenues
// @Produce      json
// @Param        date_from query string false "On or after (YYYY-MM-DD)"
// @Param        date_to   query string false "On or before (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=financeapp.SummaryResponse}
// @Security     BearerAuth
// @Router       /revenues/summary [get]
func (h *RevenueHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	var filter financeapp.SummaryFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	summary, err := h.revenueService.Summary(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
