package routes

import (
	"voyago/internal/handlers"
	"voyago/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupDiscountRoutes wires the discount catalog endpoints. Travellers
// can browse active discounts and resolve coupon codes; catalog writes
// are restricted to admins.
func SetupDiscountRoutes(r *gin.RouterGroup, discountHandler *handlers.DiscountHandler, jwtSecret string) {
	discounts := r.Group("/discounts")
	discounts.Use(middleware.AuthRequired(jwtSecret))
	{
		discounts.GET("/", discountHandler.ListActive)
		discounts.GET("/code/:code", discountHandler.GetByCode)
	}

	admin := discounts.Group("")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/", discountHandler.Create)
		admin.PATCH("/:id", discountHandler.Update)
		admin.DELETE("/:id", discountHandler.Delete)
	}
}
