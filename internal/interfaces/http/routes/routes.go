// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/marketflow-backend/internal/config"
	"github.com/your-org/marketflow-backend/internal/interfaces/http/handlers"
	"github.com/your-org/marketflow-backend/internal/interfaces/http/middleware"
)

// CartEventsPath is the full route of the cart event stream. It is exempt
// from the request timeout.
const CartEventsPath = "/api/v1/cart/events"

// Handlers groups the handlers the API routes dispatch to
type Handlers struct {
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	Invoice  *handlers.InvoiceHandler
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	SetupProductRoutes(rg, h)
	SetupCartRoutes(rg, h, cfg)
	SetupOrderRoutes(rg, h)
	SetupAdminRoutes(rg, h)
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/featured", h.Product.GetFeatured)
		products.GET("/categories", h.Product.GetCategories)
		products.GET("/:id", h.Product.GetProduct)
	}
}

// SetupCartRoutes sets up the session-scoped cart and checkout routes
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.Session(cfg))
	{
		cart.GET("", h.Cart.GetCart)
		cart.GET("/count", h.Cart.GetCartCount)
		cart.GET("/events", h.Cart.Events)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:id", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:id", h.Cart.RemoveFromCart)
		cart.DELETE("", h.Cart.ClearCart)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.Session(cfg))
	{
		checkout.POST("", h.Checkout.PlaceOrder)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.Order.GetOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/:id/invoice", h.Invoice.GenerateInvoice)
	}
}

// SetupAdminRoutes sets up catalog and order maintenance routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers) {
	admin := rg.Group("/admin")
	{
		// Product management
		products := admin.Group("/products")
		{
			products.POST("", h.Product.AdminCreateProduct)
			products.PUT("/:id", h.Product.AdminUpdateProduct)
			products.DELETE("/:id", h.Product.AdminDeleteProduct)
			products.PUT("/:id/stock", h.Product.AdminUpdateStock)
		}

		// Order management
		orders := admin.Group("/orders")
		{
			orders.GET("", h.Order.GetOrders)
			orders.GET("/stats", h.Order.AdminGetStats)
			orders.PUT("/:id/status", h.Order.AdminUpdateStatus)
			orders.DELETE("/:id", h.Order.AdminDeleteOrder)
		}
	}
}
