package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketflow-backend/internal/config"
	"github.com/your-org/marketflow-backend/internal/domain/cart"
	"github.com/your-org/marketflow-backend/internal/domain/catalog"
	"github.com/your-org/marketflow-backend/internal/domain/checkout"
	"github.com/your-org/marketflow-backend/internal/domain/order"
	"github.com/your-org/marketflow-backend/internal/interfaces/http/handlers"
	"github.com/your-org/marketflow-backend/internal/interfaces/http/routes"
	"github.com/your-org/marketflow-backend/internal/pkg/email"
	"github.com/your-org/marketflow-backend/internal/pkg/logger"
	"github.com/your-org/marketflow-backend/internal/pkg/metrics"
	"github.com/your-org/marketflow-backend/internal/pkg/notify"
	"github.com/your-org/marketflow-backend/internal/pkg/pdf"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type healthFunc func(ctx context.Context) error

func (f healthFunc) Health(ctx context.Context) error { return f(ctx) }

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "MarketFlow", Version: "test", Environment: "test"},
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		Cart:   config.CartConfig{SessionCookie: "session_id", CookieMaxAge: 3600, KeyPrefix: "cart:session:"},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
			CORSAllowedHeaders: []string{"Content-Type"},
		},
	}
}

func newTestServer(t *testing.T, checks map[string]HealthChecker) *Server {
	t.Helper()
	log := logger.Discard()
	cfg := testConfig()

	products := catalog.NewMemoryRepository([]*catalog.Product{
		{ID: 1, Name: "Mug", Price: decimal.RequireFromString("12.50"), Images: []string{"mug.jpg"}, Stock: 10, Category: "Home", Featured: true},
		{ID: 2, Name: "Lamp", Price: decimal.RequireFromString("30.00"), CompareAtPrice: decimal.RequireFromString("40.00"), Images: []string{"lamp.jpg"}, Stock: 3, Category: "Lighting"},
	})
	catalogService := catalog.NewService(products, log)

	hub := notify.NewHub()
	store := cart.NewStore(cart.NewMemoryStorage(), hub, cfg.Cart.KeyPrefix, log)
	cartService := cart.NewService(store, cart.NewEnricher(catalogService, 4, log), catalogService, cart.DefaultRates(), log)

	registry := metrics.New()
	invoices := pdf.NewService(config.InvoiceConfig{CompanyName: "MarketFlow"})
	mailer := email.NewService(config.EmailConfig{Provider: email.ProviderLog}, invoices, log)

	orderService := order.NewService(order.NewMemoryRepository(), log)
	checkoutService := checkout.NewService(cartService, order.NewBuilder(orderService, "Credit Card"), mailer, log)

	srv, err := NewServer(cfg, Dependencies{
		Handlers: &routes.Handlers{
			Product:  handlers.NewProductHandler(catalogService),
			Cart:     handlers.NewCartHandler(cartService, hub, log),
			Checkout: handlers.NewCheckoutHandler(checkoutService, registry),
			Order:    handlers.NewOrderHandler(orderService, mailer, log),
			Invoice:  handlers.NewInvoiceHandler(orderService, invoices),
		},
		Checks:  checks,
		Metrics: registry,
	}, log)
	require.NoError(t, err)
	return srv
}

type client struct {
	t       *testing.T
	handler http.Handler
	session string
}

func newClient(t *testing.T, srv *Server) *client {
	return &client{t: t, handler: srv.Handler(), session: uuid.New().String()}
}

func (c *client) do(method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", c.session)

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func checkoutBody() map[string]interface{} {
	return map[string]interface{}{
		"email":     "ann@example.com",
		"firstName": "Ann",
		"lastName":  "Lee",
		"shippingAddress": map[string]interface{}{
			"street": "1 Main St", "city": "Springfield", "state": "IL", "zipCode": "62701", "country": "USA",
		},
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, map[string]HealthChecker{
		"redis": healthFunc(func(context.Context) error { return nil }),
	})
	w, body := newClient(t, srv).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])

	srv = newTestServer(t, map[string]HealthChecker{
		"database": healthFunc(func(context.Context) error { return errors.New("down") }),
	})
	w, body = newClient(t, srv).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, map[string]interface{}{"database": "unhealthy"}, body["checks"])
}

func TestMetrics(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	w, _ := c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 1, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = c.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	text := w.Body.String()
	assert.Contains(t, text, "marketflow_orders_placed_total 1")
	assert.Contains(t, text, `marketflow_http_requests_total{method="POST",route="/api/v1/checkout",status="201"} 1`)
}

func TestProducts(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	w, body := c.do(http.MethodGet, "/api/v1/products?category=Lighting", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := data(t, body)
	products := page["products"].([]interface{})
	require.Len(t, products, 1)
	lamp := products[0].(map[string]interface{})
	assert.Equal(t, "Lamp", lamp["name"])
	assert.Equal(t, true, lamp["onSale"])
	assert.Equal(t, float64(1), page["pagination"].(map[string]interface{})["totalPages"])

	w, body = c.do(http.MethodGet, "/api/v1/products/featured", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, body = c.do(http.MethodGet, "/api/v1/products/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Home", "Lighting"}, body["data"])

	w, body = c.do(http.MethodGet, "/api/v1/products/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product_not_found", body["code"])

	w, _ = c.do(http.MethodGet, "/api/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartFlow(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	w, body := c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	cartData := data(t, body)
	assert.Equal(t, "25.00", cartData["display"].(map[string]interface{})["subtotal"])

	// quantity defaults to one
	w, _ = c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = c.do(http.MethodGet, "/api/v1/cart/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), data(t, body)["count"])

	w, body = c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 2, "quantity": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "insufficient_stock", body["code"])

	w, body = c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 1, "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_quantity", body["code"])

	w, _ = c.do(http.MethodPut, "/api/v1/cart/items/1", map[string]interface{}{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = c.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, data(t, body)["items"])

	// another session sees its own cart
	other := &client{t: t, handler: c.handler, session: uuid.New().String()}
	_, body = other.do(http.MethodGet, "/api/v1/cart/count", nil)
	assert.Equal(t, float64(0), data(t, body)["count"])
}

func TestCheckout(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	w, body := c.do(http.MethodPost, "/api/v1/checkout", checkoutBody())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "/products", body["redirect"])

	_, _ = c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 1, "quantity": 2})

	w, body = c.do(http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)
	placed := data(t, body)
	assert.Equal(t, "pending", placed["status"])
	assert.Equal(t, "Ann Lee", placed["customerName"])
	assert.Equal(t, "36.99", placed["total"])
	assert.Equal(t, "/api/v1/orders/1", w.Header().Get("Location"))

	_, body = c.do(http.MethodGet, "/api/v1/cart/count", nil)
	assert.Equal(t, float64(0), data(t, body)["count"])

	w, body = c.do(http.MethodGet, "/api/v1/orders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, data(t, body)["orderNumber"], "ORD-")

	w, _ = c.do(http.MethodGet, "/api/v1/orders/1/invoice?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "$36.99")
}

func TestCheckout_CatalogPriceChangeKeepsOrder(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	_, _ = c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 1, "quantity": 2})
	w, _ := c.do(http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := c.do(http.MethodPut, "/api/v1/admin/products/1", map[string]interface{}{"price": "99.00"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, money(t, data(t, body)["price"]).Equal(decimal.RequireFromString("99.00")))

	w, body = c.do(http.MethodGet, "/api/v1/orders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	placed := data(t, body)
	assert.True(t, money(t, placed["total"]).Equal(decimal.RequireFromString("36.99")))
	items := placed["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.True(t, money(t, item["price"]).Equal(decimal.RequireFromString("12.50")))
	assert.True(t, money(t, item["total"]).Equal(decimal.RequireFromString("25.00")))

	w, _ = c.do(http.MethodGet, "/api/v1/orders/1/invoice?format=html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "$12.50")
	assert.NotContains(t, w.Body.String(), "$99.00")
}

func money(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "expected a decimal string, got %v", v)
	return decimal.RequireFromString(s)
}

func TestCheckout_InvalidRequest(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))
	_, _ = c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 1})

	req := checkoutBody()
	req["email"] = "nope"
	w, body := c.do(http.MethodPost, "/api/v1/checkout", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", body["code"])
}

func TestAdminOrders(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))
	_, _ = c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"productId": 2, "quantity": 2})
	w, _ := c.do(http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := c.do(http.MethodPut, "/api/v1/admin/orders/1/status", map[string]interface{}{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_transition", body["code"])

	w, body = c.do(http.MethodPut, "/api/v1/admin/orders/1/status", map[string]interface{}{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", body["code"])

	w, body = c.do(http.MethodPut, "/api/v1/admin/orders/1/status", map[string]interface{}{"status": "processing"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "processing", data(t, body)["status"])

	w, body = c.do(http.MethodGet, "/api/v1/admin/orders/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := data(t, body)
	assert.Equal(t, float64(1), stats["totalOrders"])
	assert.Equal(t, "64.80", stats["totalRevenue"])

	w, body = c.do(http.MethodGet, "/api/v1/orders?status=processing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, _ = c.do(http.MethodDelete, "/api/v1/admin/orders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodGet, "/api/v1/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminProducts(t *testing.T) {
	c := newClient(t, newTestServer(t, nil))

	w, body := c.do(http.MethodPost, "/api/v1/admin/products", map[string]interface{}{
		"name": "Rug", "price": "45.00", "stock": 4, "category": "Home",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := data(t, body)["id"].(float64)
	assert.Equal(t, float64(3), id)

	w, body = c.do(http.MethodPut, "/api/v1/admin/products/3/stock", map[string]interface{}{"stock": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, data(t, body)["inStock"])

	w, _ = c.do(http.MethodPut, "/api/v1/admin/products/3/stock", map[string]interface{}{"stock": -2})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = c.do(http.MethodDelete, "/api/v1/admin/products/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodGet, "/api/v1/products/3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartEvents(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	session := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/cart/events", nil)
	require.NoError(t, err)
	req.Header.Set("X-Session-ID", session)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if line := scanner.Text(); strings.HasPrefix(line, "data:") {
				events <- strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
		close(events)
	}()

	next := func() string {
		select {
		case ev := <-events:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for cart event")
			return ""
		}
	}

	assert.JSONEq(t, `{"count":0}`, next())

	add, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/cart/items", strings.NewReader(`{"productId":1,"quantity":2}`))
	require.NoError(t, err)
	add.Header.Set("Content-Type", "application/json")
	add.Header.Set("X-Session-ID", session)
	addResp, err := http.DefaultClient.Do(add)
	require.NoError(t, err)
	addResp.Body.Close()
	require.Equal(t, http.StatusOK, addResp.StatusCode)

	assert.JSONEq(t, `{"count":2}`, next())
}
