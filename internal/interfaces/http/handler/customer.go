package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/ledgerly/backend/internal/application/partner"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create godoc
// @Summary      Create a new customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateCustomerRequest true "Customer creation request"
// @Success      201 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// GetByID godoc
// @Summary      Get customer by ID
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Param        search      query string false "Search by name, email or phone"
// @Param        is_active   query bool   false "Filter by active state"
// @Param        has_balance query bool   false "Only customers with an outstanding balance"
// @Success      200 {object} dto.Response{data=[]partnerapp.CustomerResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	customers, total, err := h.customerService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body partnerapp.UpdateCustomerRequest true "Customer update request"
// @Success      200 {object} dto.Response{data=partnerapp.CustomerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), tenantID, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Delete godoc
// @Summary      Delete a customer
// @Description  Customers with invoices or an open balance cannot be deleted
// @Tags         customers
// @Param        id path string true "Customer ID" format(uuid)
// @Success      204
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), tenantID, customerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Statement godoc
// @Summary      Customer statement
// @Description  Running ledger of invoices and payments with opening and closing balance
// @Tags         customers
// @Produce      json
// @Param        id        path  string true  "Customer ID" format(uuid)
// @Param        date_from query string false "Start date (YYYY-MM-DD)"
// @Param        date_to   query string false "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=partnerapp.StatementResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id}/statement [get]
func (h *CustomerHandler) Statement(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	var filter partnerapp.StatementFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	statement, err := h.customerService.Statement(c.Request.Context(), tenantID, customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}
