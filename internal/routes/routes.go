package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bettashop/internal/config"
	"github.com/example/bettashop/internal/handlers"
	"github.com/example/bettashop/internal/middleware"
	"github.com/example/bettashop/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	settingsService := services.NewSettingsService(db, cfg)
	gateway := services.NewStripeClient(cfg.StripeSecretKey)
	orderService := services.NewOrderService(db, gateway, settingsService, telegramService)

	authHandler := handlers.NewAuthHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, cfg.MediaUploadDir)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db, orderService)
	paymentHandler := handlers.NewPaymentHandler(db, cfg, orderService, gateway, settingsService)
	blogHandler := handlers.NewBlogHandler(db)
	adminHandler := handlers.NewAdminHandler(db, orderService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	app.Static("/static", cfg.MediaUploadDir)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Storefront catalog
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:sku", productHandler.GetProduct)

	// Cart
	cart := api.Group("/cart")
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/items", cartHandler.AddItem)
	cart.Delete("/items/:id", cartHandler.RemoveItem)

	// Checkout and order status
	orders := api.Group("/orders", middleware.OptionalAuth(cfg))
	orders.Post("/checkout", orderHandler.Checkout)
	orders.Get("/:order_no", orderHandler.GetOrderStatus)

	// Payments
	payments := api.Group("/payments")
	payments.Get("/:order_no/promptpay-qr", paymentHandler.PromptPayQR)
	payments.Get("/:order_no/stripe-intent", paymentHandler.StripeIntent)
	payments.Post("/:order_no/stripe-confirm", paymentHandler.StripeConfirm)
	payments.Post("/:order_no/slip", paymentHandler.UploadSlip)

	// Blog
	blog := api.Group("/blog")
	blog.Get("/", blogHandler.ListPosts)
	blog.Get("/:slug", blogHandler.GetPost)

	// Back office
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireAdmin())
	admin.Get("/stats", adminHandler.DashboardStats)

	admin.Get("/orders", adminHandler.ListOrders)
	admin.Get("/orders/:id", adminHandler.GetOrder)
	admin.Post("/orders/:id/confirm-payment", adminHandler.ConfirmPayment)
	admin.Post("/orders/:id/ship", adminHandler.ShipOrder)
	admin.Post("/orders/:id/cancel", adminHandler.CancelOrder)

	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)

	admin.Get("/blog", blogHandler.ListAllPosts)
	admin.Post("/blog", blogHandler.CreatePost)
	admin.Put("/blog/:id", blogHandler.UpdatePost)
	admin.Delete("/blog/:id", blogHandler.DeletePost)

	admin.Get("/settings", settingsHandler.ListSettings)
	admin.Put("/settings", settingsHandler.UpdateSettings)
}
