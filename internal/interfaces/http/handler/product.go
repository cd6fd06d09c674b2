package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/ledgerly/backend/internal/application/catalog"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Create godoc
// @Summary      Create a new product
// @Description  Create a product; tracked products can start with an initial stock
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID godoc
// @Summary      Get product by ID
// @Description  Retrieve a product by its ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Description  List products with search, filtering and pagination
// @Tags         products
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20) maximum(100)
// @Param        search      query string false "Search by SKU or name"
// @Param        is_active   query bool   false "Filter by active state"
// @Param        track_stock query bool   false "Filter stock-tracked products"
// @Param        order_by    query string false "Sort field" default(name)
// @Param        order_dir   query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}

	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a product
// @Description  Update product details; omitted fields are left unchanged
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Product update request"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), tenantID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Products used on non-draft invoices cannot be deleted
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), tenantID, productID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AdjustStock godoc
// @Summary      Adjust stock
// @Description  Book a manual stock correction; the stock may not go negative
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.AdjustStockRequest true "Stock delta and reason"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /products/{id}/stock-adjustments [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	productID, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	var req catalogapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), tenantID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}
