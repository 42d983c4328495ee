// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/domain/order"
)

// StatusNotifier tells a customer their order changed status
type StatusNotifier interface {
	SendStatusUpdate(ctx context.Context, o *order.Order) error
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
	notifier     StatusNotifier
	logger       *logrus.Logger
}

// NewOrderHandler creates a new order handler. notifier may be nil.
func NewOrderHandler(orderService *order.Service, notifier StatusNotifier, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		notifier:     notifier,
		logger:       logger,
	}
}

// orderResponse adds the display reference to an order
type orderResponse struct {
	*order.Order
	OrderNumber string `json:"orderNumber"`
	ItemCount   int    `json:"itemCount"`
}

func newOrderResponse(o *order.Order) orderResponse {
	return orderResponse{Order: o, OrderNumber: o.OrderNumber(), ItemCount: o.ItemCount()}
}

func newOrderResponses(orders []*order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = newOrderResponse(o)
	}
	return out
}

// GetOrders handles GET /orders
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	orders, err := h.orderService.GetAll(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Orders retrieved successfully", newOrderResponses(orders))
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	o, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order retrieved successfully", newOrderResponse(o))
}

// Admin endpoints

// AdminUpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.notifier != nil {
		if err := h.notifier.SendStatusUpdate(c.Request.Context(), o); err != nil {
			h.logger.WithError(err).WithField("order_id", o.ID).Warn("failed to send status update email")
		}
	}

	respondOK(c, http.StatusOK, "Order status updated successfully", newOrderResponse(o))
}

// AdminDeleteOrder handles DELETE /admin/orders/:id
func (h *OrderHandler) AdminDeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	o, err := h.orderService.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order deleted successfully", newOrderResponse(o))
}

// AdminGetStats handles GET /admin/orders/stats
func (h *OrderHandler) AdminGetStats(c *gin.Context) {
	stats, err := h.orderService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Order statistics retrieved successfully", stats)
}
