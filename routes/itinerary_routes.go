package routes

import (
	"voyago/internal/handlers"
	"voyago/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupItineraryRoutes wires the itinerary mutation and pricing endpoints.
// Every mutation returns the fully refreshed and re-priced aggregate.
func SetupItineraryRoutes(r *gin.RouterGroup, itineraryHandler *handlers.ItineraryHandler, jwtSecret string) {
	itineraries := r.Group("/itinerary")
	itineraries.Use(middleware.AuthRequired(jwtSecret))
	{
		itineraries.POST("/", itineraryHandler.Create)
		itineraries.GET("/", itineraryHandler.List)
		itineraries.GET("/:id", itineraryHandler.Get)
		itineraries.GET("/:id/versions", itineraryHandler.GetVersions)
		itineraries.DELETE("/:id", itineraryHandler.Delete)

		// Tree mutations
		itineraries.PATCH("/:id/cities/add-city", itineraryHandler.AddCity)
		itineraries.PATCH("/:id/cities/:index/delete-city", itineraryHandler.DeleteCity)
		itineraries.PATCH("/:id/cities/:index/replace-city", itineraryHandler.ReplaceCity)
		itineraries.PATCH("/:id/cities/:index/add-days", itineraryHandler.AddDays)
		itineraries.PATCH("/:id/cities/:index/delete-days", itineraryHandler.DeleteDays)
		itineraries.PATCH("/:id/cities/:index/transport-mode", itineraryHandler.ChangeTransportMode)

		// Activity slots
		itineraries.PATCH("/:id/activity/:scheduledActivityId/replace", itineraryHandler.ReplaceActivity)
		itineraries.PATCH("/:id/activity/:scheduledActivityId/replaceLeisure", itineraryHandler.ReplaceWithLeisure)

		// Trip-level details and discounts
		itineraries.PATCH("/:id/update-details", itineraryHandler.UpdateDetails)
		itineraries.PATCH("/:id/addCoupon/:discountId", itineraryHandler.ApplyCoupon)
	}
}
