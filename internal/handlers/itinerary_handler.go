package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"voyago/internal/middleware"
	"voyago/internal/models"
	"voyago/internal/services"
	"voyago/internal/utils"
	"voyago/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ItineraryHandler struct {
	itineraryService services.ItineraryService
}

func NewItineraryHandler(itineraryService services.ItineraryService) *ItineraryHandler {
	return &ItineraryHandler{
		itineraryService: itineraryService,
	}
}

// Create builds a priced itinerary from the draft generator's output.
func (h *ItineraryHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request models.CreateItineraryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateCreateItineraryRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	itinerary, err := h.itineraryService.Create(c.Request.Context(), userID, &request)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Itinerary created successfully", itinerary)
}

// Get returns the full aggregate including all price fields.
func (h *ItineraryHandler) Get(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}

	itinerary, err := h.itineraryService.Get(c.Request.Context(), itineraryID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Itinerary retrieved successfully", itinerary)
}

// List returns the caller's itineraries, newest first.
func (h *ItineraryHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	params := utils.GetPaginationParams(c)
	itineraries, total, err := h.itineraryService.List(c.Request.Context(), userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Count:      len(itineraries),
	}
	utils.SuccessResponseWithMeta(c, "Itineraries retrieved successfully", itineraries, meta)
}

// GetVersions lists the pre-mutation snapshots of an itinerary.
func (h *ItineraryHandler) GetVersions(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	versions, total, err := h.itineraryService.GetVersions(c.Request.Context(), itineraryID, userID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Count:      len(versions),
	}
	utils.SuccessResponseWithMeta(c, "Itinerary versions retrieved successfully", versions, meta)
}

func (h *ItineraryHandler) Delete(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.itineraryService.Delete(c.Request.Context(), itineraryID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Itinerary deleted successfully", nil)
}

func (h *ItineraryHandler) AddCity(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}

	var request models.AddCityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateAddCityRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	itinerary, err := h.itineraryService.AddCity(c.Request.Context(), itineraryID, userID, *request.Position, request.NewCity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "City added successfully", itinerary)
}

func (h *ItineraryHandler) DeleteCity(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}
	index, ok := h.legIndex(c)
	if !ok {
		return
	}

	itinerary, err := h.itineraryService.DeleteCity(c.Request.Context(), itineraryID, userID, index)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "City removed successfully", itinerary)
}

func (h *ItineraryHandler) ReplaceCity(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}
	index, ok := h.legIndex(c)
	if !ok {
		return
	}

	var request models.ReplaceCityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateReplaceCityRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	itinerary, err := h.itineraryService.ReplaceCity(c.Request.Context(), itineraryID, userID, index, request.NewCity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "City replaced successfully", itinerary)
}

func (h *ItineraryHandler) AddDays(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}
	index, ok := h.legIndex(c)
	if !ok {
		return
	}

	var request models.AddDaysRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateAddDaysRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	itinerary, err := h.itineraryService.AddDays(c.Request.Context(), itineraryID, userID, index, request.AdditionalDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Days added successfully", itinerary)
}

func (h *ItineraryHandler) DeleteDays(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}
	index, ok := h.legIndex(c)
	if !ok {
		return
	}

	var request models.DeleteDaysRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateDeleteDaysRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	itinerary, err := h.itineraryService.DeleteDays(c.Request.Context(), itineraryID, userID, index, request.DaysToDelete)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Days removed successfully", itinerary)
}

func (h *ItineraryHandler) ChangeTransportMode(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}
	index, ok := h.legIndex(c)
	if !ok {
		return
	}

	var request models.TransportModeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateTransportModeRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	itinerary, err := h.itineraryService.ChangeTransportMode(c.Request.Context(), itineraryID, userID, index, models.TransportMode(request.NewMode))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Transport mode changed successfully", itinerary)
}

func (h *ItineraryHandler) ReplaceActivity(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}
	scheduledID, err := primitive.ObjectIDFromHex(c.Param("scheduledActivityId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid scheduled activity ID")
		return
	}

	var request models.ReplaceActivityRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateReplaceActivityRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}
	newActivityID, err := primitive.ObjectIDFromHex(request.NewActivityID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid activity ID")
		return
	}

	itinerary, err := h.itineraryService.ReplaceActivity(c.Request.Context(), itineraryID, userID, scheduledID, newActivityID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Activity replaced successfully", itinerary)
}

func (h *ItineraryHandler) ReplaceWithLeisure(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}
	scheduledID, err := primitive.ObjectIDFromHex(c.Param("scheduledActivityId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid scheduled activity ID")
		return
	}

	itinerary, err := h.itineraryService.ReplaceWithLeisure(c.Request.Context(), itineraryID, userID, scheduledID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Activity replaced with leisure successfully", itinerary)
}

func (h *ItineraryHandler) UpdateDetails(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}

	var request models.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateUpdateDetailsRequest(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	var newStartDate *time.Time
	if request.NewStartDate != "" {
		parsed, err := time.Parse("2006-01-02", request.NewStartDate)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid start date")
			return
		}
		newStartDate = &parsed
	}

	itinerary, err := h.itineraryService.UpdateDetails(c.Request.Context(), itineraryID, userID, newStartDate, request.TravellingWith, request.Rooms)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Itinerary details updated successfully", itinerary)
}

func (h *ItineraryHandler) ApplyCoupon(c *gin.Context) {
	userID, itineraryID, ok := h.identity(c)
	if !ok {
		return
	}
	discountID, err := primitive.ObjectIDFromHex(c.Param("discountId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid discount ID")
		return
	}

	itinerary, err := h.itineraryService.ApplyCoupon(c.Request.Context(), itineraryID, userID, discountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Coupon applied successfully", itinerary)
}

func (h *ItineraryHandler) identity(c *gin.Context) (userID, itineraryID primitive.ObjectID, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	itineraryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid itinerary ID")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return userID, itineraryID, true
}

func (h *ItineraryHandler) legIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		utils.BadRequestResponse(c, "Invalid city leg index")
		return 0, false
	}
	return index, true
}

// respondServiceError maps domain errors onto HTTP statuses. Anything not
// recognized is a 500 with a generic message.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrItineraryNotFound),
		errors.Is(err, services.ErrActivityNotFound),
		errors.Is(err, services.ErrDiscountNotFound),
		errors.Is(err, services.ErrCityNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrNotOwner):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrInvalidPosition),
		errors.Is(err, services.ErrLastLeg),
		errors.Is(err, services.ErrInsufficientDays),
		errors.Is(err, services.ErrInvalidMode),
		errors.Is(err, services.ErrInvalidLegIndex):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "INVALID_MUTATION", err.Error())
	case errors.Is(err, services.ErrDiscountNotGeneral),
		errors.Is(err, services.ErrDiscountInactive),
		errors.Is(err, services.ErrUserNotEligible):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "DISCOUNT_REJECTED", err.Error())
	case errors.Is(err, services.ErrDiscountAlreadyApplied):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrStaleWrite):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.InternalServerErrorResponse(c)
	}
}
