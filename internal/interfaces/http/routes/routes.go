// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/cubazar/marketplace-backend/internal/config"
	"github.com/cubazar/marketplace-backend/internal/interfaces/http/handlers"
	"github.com/cubazar/marketplace-backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes wires all API route groups
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupAuthRoutes(rg, db, redisClient, cfg)
	SetupProductRoutes(rg, db, redisClient, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
	SetupOrderRoutes(rg, db, redisClient, cfg)
	SetupWishlistRoutes(rg, db, redisClient, cfg)
	SetupSupportRoutes(rg, db, redisClient, cfg)
	SetupPremiumRoutes(rg, db, redisClient, cfg)
	SetupAdminRoutes(rg, db, redisClient, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
			protected.GET("/validate", authHandler.ValidateToken)
		}
	}
}

// SetupProductRoutes sets up listing and category routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, redisClient, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg)) // Optional auth for view tracking
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/featured", productHandler.GetFeaturedProducts)
		products.GET("/:id", productHandler.GetProduct)

		// Seller endpoints
		protected := products.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/my-listings", productHandler.GetMyListings)
			protected.POST("", productHandler.CreateProduct)
			protected.PUT("/:id", productHandler.UpdateProduct)
			protected.DELETE("/:id", productHandler.DeleteProduct)
		}
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
	}
}

// SetupCartRoutes sets up cart and checkout routes
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.GET("/count", cartHandler.GetCartCount)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.GET("", checkoutHandler.GetCheckoutSummary)
		checkout.GET("/payment-methods", checkoutHandler.GetPaymentMethods)
		checkout.POST("", checkoutHandler.ProcessCheckout)
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/history", orderHandler.GetOrderHistory)
		orders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
	}
}

// SetupWishlistRoutes sets up wishlist related routes
func SetupWishlistRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	wishlistHandler := handlers.NewWishlistHandler(db, redisClient, cfg)

	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.AuthMiddleware(cfg))
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.GET("/ids", wishlistHandler.GetWishlistIDs)
		wishlist.GET("/:id", wishlistHandler.CheckWishlisted)
		wishlist.POST("/:id/toggle", wishlistHandler.ToggleWishlist)
		wishlist.DELETE("", wishlistHandler.ClearWishlist)
	}
}

// SetupSupportRoutes sets up support ticket routes
func SetupSupportRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	supportHandler := handlers.NewSupportHandler(db, cfg)

	support := rg.Group("/support/tickets")
	support.Use(middleware.AuthMiddleware(cfg))
	{
		support.POST("", supportHandler.CreateTicket)
		support.GET("", supportHandler.GetMyTickets)
		support.GET("/:id", supportHandler.GetTicket)
		support.POST("/:id/messages", supportHandler.AddMessage)
	}
}

// SetupPremiumRoutes sets up premium plan routes
func SetupPremiumRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	premiumHandler := handlers.NewPremiumHandler(db, cfg)

	premium := rg.Group("/premium")
	{
		premium.GET("/plans", premiumHandler.GetPlans)
		premium.GET("/plans/:id", premiumHandler.GetPlan)
	}
}

// SetupAdminRoutes sets up staff and admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, redisClient, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, cfg)
	supportHandler := handlers.NewSupportHandler(db, cfg)
	premiumHandler := handlers.NewPremiumHandler(db, cfg)
	userAdminHandler := handlers.NewUserAdminHandler(db, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.StaffMiddleware())
	{
		// Support queue is open to moderators and admins
		support := admin.Group("/support/tickets")
		{
			support.GET("", supportHandler.StaffGetOpenTickets)
			support.PUT("/:id/status", supportHandler.StaffUpdateTicketStatus)
		}

		// The rest requires full admin
		full := admin.Group("")
		full.Use(middleware.AdminMiddleware())
		{
			products := full.Group("/products")
			{
				products.PUT("/:id/featured", productHandler.AdminSetFeatured)
			}

			categories := full.Group("/categories")
			{
				categories.POST("", categoryHandler.AdminCreateCategory)
				categories.PUT("/:id", categoryHandler.AdminUpdateCategory)
				categories.DELETE("/:id", categoryHandler.AdminDeleteCategory)
			}

			users := full.Group("/users")
			{
				users.GET("", userAdminHandler.GetUsers)
				users.GET("/stats", userAdminHandler.GetUserStats)
				users.GET("/:id", userAdminHandler.GetUser)
				users.PUT("/:id/role", userAdminHandler.SetUserRole)
				users.PUT("/:id/deactivate", userAdminHandler.DeactivateUser)
				users.PUT("/:id/premium", premiumHandler.AdminGrantPremium)
			}
		}
	}
}
