// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/marketflow-backend/internal/domain/checkout"
	"github.com/your-org/marketflow-backend/internal/interfaces/http/middleware"
)

// OrderRecorder counts placed orders
type OrderRecorder interface {
	OrderPlaced(total decimal.Decimal)
}

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	recorder        OrderRecorder
}

// NewCheckoutHandler creates a new checkout handler. recorder may be nil.
func NewCheckoutHandler(checkoutService *checkout.Service, recorder OrderRecorder) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		recorder:        recorder,
	}
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req checkout.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.checkoutService.PlaceOrder(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.recorder != nil {
		h.recorder.OrderPlaced(order.Total)
	}

	c.Header("Location", "/api/v1/orders/"+strconv.FormatInt(order.ID, 10))
	respondOK(c, http.StatusCreated, "Order placed successfully", newOrderResponse(order))
}
