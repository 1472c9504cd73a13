package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/gotix/gotix/internal/services"
)

func PaymentsMiddleware(provider services.PaymentProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("payment_provider", provider)
		c.Next()
	}
}

func GetPaymentProvider(c *gin.Context) services.PaymentProvider {
	provider, exists := c.Get("payment_provider")
	if !exists {
		return nil
	}
	return provider.(services.PaymentProvider)
}
