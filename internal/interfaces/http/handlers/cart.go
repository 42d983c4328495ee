// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/domain/cart"
	"github.com/your-org/marketflow-backend/internal/interfaces/http/middleware"
	"github.com/your-org/marketflow-backend/internal/pkg/notify"
)

const (
	cartUpdatedEvent  = "cart-updated"
	heartbeatInterval = 25 * time.Second
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	hub         *notify.Hub
	logger      *logrus.Logger
	heartbeat   time.Duration

	closing   chan struct{}
	closeOnce sync.Once
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, hub *notify.Hub, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		hub:         hub,
		logger:      logger,
		heartbeat:   heartbeatInterval,
		closing:     make(chan struct{}),
	}
}

// CloseStreams ends every open event stream so that a graceful shutdown
// does not wait on them
func (h *CartHandler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// cartResponse is the priced cart plus its display totals
type cartResponse struct {
	*cart.PricedCart
	Display cart.Summary `json:"display"`
}

func newCartResponse(priced *cart.PricedCart) cartResponse {
	return cartResponse{PricedCart: priced, Display: priced.Summary()}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	priced := h.cartService.GetCart(c.Request.Context(), middleware.GetSessionID(c))

	respondOK(c, http.StatusOK, "Cart retrieved successfully", newCartResponse(priced))
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	count := h.cartService.GetCartCount(c.Request.Context(), middleware.GetSessionID(c))

	respondOK(c, http.StatusOK, "Cart count retrieved successfully", gin.H{"count": count})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	priced, err := h.cartService.AddToCart(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item added to cart successfully", newCartResponse(priced))
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	priced, err := h.cartService.UpdateCartItem(c.Request.Context(), middleware.GetSessionID(c), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart item updated successfully", newCartResponse(priced))
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	priced, err := h.cartService.RemoveFromCart(c.Request.Context(), middleware.GetSessionID(c), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Item removed from cart successfully", newCartResponse(priced))
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Cart cleared successfully", nil)
}

// Events handles GET /cart/events. It streams a cart-updated event with
// the current count on connect and after every change to the session's
// cart. Bursts of changes may arrive as a single event.
func (h *CartHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.GetSessionID(c)

	sub := h.hub.Subscribe(sessionID)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	send := func() {
		c.SSEvent(cartUpdatedEvent, gin.H{"count": h.cartService.GetCartCount(ctx, sessionID)})
	}
	send()
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	h.logger.WithField("session_id", sessionID).Debug("cart event stream opened")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-h.closing:
			return false
		case <-sub.C:
			send()
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})

	h.logger.WithField("session_id", sessionID).Debug("cart event stream closed")
}
