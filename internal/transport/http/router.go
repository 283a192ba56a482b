package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kslmndz/bakery_shop/internal/handlers"
	"github.com/kslmndz/bakery_shop/internal/handlers/cart"
	"github.com/kslmndz/bakery_shop/internal/models"
	"github.com/kslmndz/bakery_shop/internal/service/token"
)

type Deps struct {
	DB               *gorm.DB
	AuthHandler      *handlers.AuthHandler
	ProductHandler   *handlers.ProductHandler
	CategoryHandler  *handlers.CategoryHandler
	UserHandler      *handlers.UserHandler
	OrderHandler     *handlers.OrderHandler
	DeliveryHandler  *handlers.DeliveryHandler
	DashboardHandler *handlers.DashboardHandler
	SearchHandler    *handlers.SearchHandler
	CartHandler      *cart.CartHandler
	TokenService     *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	// Creation is optionally authenticated: anonymous creates are
	// attributed to the default baker. The role gate lives in the
	// handler.
	products.POST("", d.ProductHandler.CreateProduct, d.TokenService.OptionalAuth)
	products.GET("/mine", d.ProductHandler.MyProducts,
		d.TokenService.RequireAuth,
		d.TokenService.RequireRole(models.RoleAdmin, models.RoleBaker))
	products.GET("/:id", d.ProductHandler.GetProduct)

	staff := d.TokenService.RequireRole(models.RoleAdmin, models.RoleBaker, models.RoleDeliveryPerson)
	products.PATCH("/:id", d.ProductHandler.PatchProduct, d.TokenService.RequireAuth, staff)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.TokenService.RequireAuth, staff)
	products.PATCH("/:id/stock", d.ProductHandler.UpdateStock, d.TokenService.RequireAuth, staff)

	categories := v1.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.GET("/:id", d.CategoryHandler.GetCategory)

	adminOnly := d.TokenService.RequireRole(models.RoleAdmin)
	categories.POST("", d.CategoryHandler.CreateCategory, d.TokenService.RequireAuth, adminOnly)
	categories.PATCH("/:id", d.CategoryHandler.PatchCategory, d.TokenService.RequireAuth, adminOnly)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory, d.TokenService.RequireAuth, adminOnly)

	// Guests keep a session cart; only checkout needs a login.
	cartGroup := v1.Group("/cart")
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddToCart)
	cartGroup.PATCH("/:id", d.CartHandler.UpdateQuantity)
	cartGroup.DELETE("/:id", d.CartHandler.RemoveFromCart)
	cartGroup.DELETE("", d.CartHandler.ClearCart)
	cartGroup.POST("/checkout", d.CartHandler.Checkout, d.TokenService.RequireAuth)

	ordersGroup := v1.Group("/orders", d.TokenService.RequireAuth)
	ordersGroup.GET("", d.OrderHandler.GetOrders)
	ordersGroup.GET("/mine", d.OrderHandler.MyOrders)
	ordersGroup.GET("/:id", d.OrderHandler.GetOrder)
	ordersGroup.POST("", d.OrderHandler.CreateOrder)
	ordersGroup.PATCH("/:id/status", d.OrderHandler.UpdateStatus)

	deliveries := v1.Group("/deliveries", d.TokenService.RequireAuth)
	deliveries.GET("", d.DeliveryHandler.GetDeliveries)
	deliveries.POST("/:id/assign", d.DeliveryHandler.AssignDelivery, adminOnly)
	deliveries.PATCH("/:id/status", d.DeliveryHandler.UpdateStatus)

	users := v1.Group("/users", d.TokenService.RequireAuth)
	users.GET("", d.UserHandler.GetUsers, adminOnly)
	users.GET("/:id", d.UserHandler.GetUser)
	users.PATCH("/:id", d.UserHandler.PatchUser)
	users.DELETE("/:id", d.UserHandler.DeactivateUser, adminOnly)
	users.POST("/:id/activate", d.UserHandler.ActivateUser, adminOnly)

	v1.GET("/dashboard/stats", d.DashboardHandler.GetStats, d.TokenService.RequireAuth, adminOnly)
}
