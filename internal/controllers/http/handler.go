package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ordersystem/internal/domain"
	"ordersystem/internal/repository"
	"ordersystem/internal/services"
)

type Handler struct {
	orders   *services.OrderService
	products *services.ProductService
	carts    *services.CartService
}

func NewHandler(orders *services.OrderService, products *services.ProductService, carts *services.CartService) *Handler {
	return &Handler{orders: orders, products: products, carts: carts}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id", h.GetOrder)
	r.POST("/orders/:id/pay", h.PayOrder)
	r.POST("/orders/:id/ship", h.ShipOrder)
	r.POST("/orders/:id/complete", h.CompleteOrder)
	r.POST("/orders/:id/cancel", h.CancelOrder)
	r.PUT("/orders/:id", h.EditOrder)
	r.DELETE("/orders/:id", h.DeleteOrder)

	r.POST("/products", h.AddProduct)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)
	r.POST("/products/:id/stock", h.AdjustStock)
	r.GET("/products/:id/image", h.GetProductImage)

	r.GET("/cart", h.ListCart)
	r.GET("/cart/count", h.CountCart)
	r.POST("/cart/items", h.AddToCart)
	r.PUT("/cart/items/:id", h.UpdateCartQuantity)
	r.PUT("/cart/items/:id/selected", h.SetCartSelected)
	r.DELETE("/cart/items/:id", h.RemoveCartItem)
	r.PUT("/cart/selected", h.SelectAllCart)
	r.DELETE("/cart", h.ClearCart)
	r.POST("/cart/checkout", h.CheckoutCart)

	r.GET("/stats/orders/count", h.CountOrders)
	r.GET("/stats/orders/recent", h.RecentOrderCounts)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.toOrder())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder resolves orders by their opaque public identifier; the numeric
// primary key is never accepted on client-facing lookups.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrderByPublicID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	var f repository.OrderFilter
	if v := c.Query("userId"); v != "" {
		f.UserID, _ = strconv.ParseUint(v, 10, 64)
	}
	if v := c.Query("status"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status := domain.OrderStatus(n)
		f.Status = &status
	}
	f.PublicID = c.Query("publicId")

	orders, total, err := h.orders.ListOrders(c.Request.Context(), f, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Total: total, Items: orders})
}

func (h *Handler) PayOrder(c *gin.Context) {
	h.lifecycle(c, func(id uint64) (*domain.Order, error) {
		return h.orders.PayOrder(c.Request.Context(), id)
	})
}

func (h *Handler) ShipOrder(c *gin.Context) {
	actor := actorFrom(c)
	h.lifecycle(c, func(id uint64) (*domain.Order, error) {
		return h.orders.ShipOrder(c.Request.Context(), id, actor)
	})
}

func (h *Handler) CompleteOrder(c *gin.Context) {
	h.lifecycle(c, func(id uint64) (*domain.Order, error) {
		return h.orders.CompleteOrder(c.Request.Context(), id)
	})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	h.lifecycle(c, func(id uint64) (*domain.Order, error) {
		return h.orders.CancelOrder(c.Request.Context(), id)
	})
}

func (h *Handler) EditOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req EditOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.EditOrder(c.Request.Context(), id, req.toEdit())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := h.products.AddProduct(c.Request.Context(), req.toProduct())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	product, err := h.products.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	var f repository.ProductFilter
	f.Name = c.Query("name")
	f.Category = c.Query("category")
	if v := c.Query("status"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status := domain.ProductStatus(n)
		f.Status = &status
	}
	products, err := h.products.ListProducts(c.Request.Context(), f, pageFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product := req.toProduct()
	product.ID = id
	updated, err := h.products.UpdateProduct(c.Request.Context(), product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdjustStock(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := h.products.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) GetProductImage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	image, err := h.products.GetProductImage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(image) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", image)
}

func (h *Handler) ListCart(c *gin.Context) {
	actor := actorFrom(c)
	items, err := h.carts.ListCart(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CountCart(c *gin.Context) {
	actor := actorFrom(c)
	n, err := h.carts.CountItems(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) AddToCart(c *gin.Context) {
	actor := actorFrom(c)
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.carts.AddToCart(c.Request.Context(), actor.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) UpdateCartQuantity(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.carts.UpdateQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) SetCartSelected(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req CartSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := h.carts.SetSelected(c.Request.Context(), id, *req.Selected)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.carts.RemoveItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SelectAllCart(c *gin.Context) {
	actor := actorFrom(c)
	var req CartSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.carts.SelectAll(c.Request.Context(), actor.UserID, *req.Selected); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearCart(c *gin.Context) {
	actor := actorFrom(c)
	if err := h.carts.ClearCart(c.Request.Context(), actor.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CheckoutCart(c *gin.Context) {
	actor := actorFrom(c)
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.carts.Checkout(c.Request.Context(), actor.UserID, req.toCheckout())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) CountOrders(c *gin.Context) {
	n, err := h.orders.CountOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) RecentOrderCounts(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))
	counts, err := h.orders.RecentOrderCounts(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) lifecycle(c *gin.Context, apply func(id uint64) (*domain.Order, error)) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := apply(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func pageFromQuery(c *gin.Context) repository.Page {
	num, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return repository.Page{Num: num, Size: size}
}

// actorFrom reads the identity attached by the upstream auth layer. The core
// does not authenticate; it only consults the pre-validated role.
func actorFrom(c *gin.Context) domain.Actor {
	userID, _ := strconv.ParseUint(c.GetHeader("X-User-Id"), 10, 64)
	return domain.Actor{
		UserID: userID,
		Role:   domain.Role(c.GetHeader("X-User-Role")),
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound) ||
		errors.Is(err, services.ErrCartItemNotFound) ||
		errors.Is(err, repository.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, services.ErrOrderNotEditable) ||
		errors.Is(err, services.ErrProductReferenced):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrOperatorRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInvalidOrder) ||
		errors.Is(err, domain.ErrInvalidOrderItem) ||
		errors.Is(err, domain.ErrInvalidProduct) ||
		errors.Is(err, domain.ErrInvalidCartItem) ||
		errors.Is(err, services.ErrEmptySelection) ||
		errors.Is(err, services.ErrProductUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		// Store failures stay generic; details go to the log, not the client.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
