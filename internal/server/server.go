package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gotix/gotix/config"
	"github.com/gotix/gotix/internal/handlers"
	"github.com/gotix/gotix/internal/middleware"
	"github.com/gotix/gotix/internal/services"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	stripeCfg, err := config.LoadStripeConfig()
	if err != nil {
		return fmt.Errorf("failed to load stripe config: %v", err)
	}
	provider := config.InitPaymentProvider(stripeCfg)

	r := gin.Default()

	setupRoutes(r, db, provider)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, provider services.PaymentProvider) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.PaymentsMiddleware(provider))

	public := r.Group("/v1")
	public.Use(middleware.OptionalAuthMiddleware())
	{
		public.GET("/events/:id", handlers.GetEvent)
		public.POST("/bookings", handlers.CreateBooking)
		public.GET("/bookings/:id", handlers.GetBooking)
		public.POST("/checkout/sessions", handlers.CreateCheckoutSession)
		public.GET("/tickets/:code/qr", handlers.TicketQR)
	}

	// The processor signs its own requests; no session auth here.
	r.POST("/v1/webhooks/payment", handlers.HandlePaymentWebhook)

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.POST("/tickets/scan", handlers.ScanTicket)
	}
}
