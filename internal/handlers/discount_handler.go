package handlers

import (
	"voyago/internal/models"
	"voyago/internal/services"
	"voyago/internal/utils"
	"voyago/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountHandler struct {
	discountService services.DiscountService
}

func NewDiscountHandler(discountService services.DiscountService) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
	}
}

// Create registers a new discount in the catalog.
func (h *DiscountHandler) Create(c *gin.Context) {
	var discount models.Discount
	if err := c.ShouldBindJSON(&discount); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateDiscount(&discount); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.ToMap())
		return
	}

	if err := h.discountService.Create(c.Request.Context(), &discount); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Discount created successfully", discount)
}

func (h *DiscountHandler) Update(c *gin.Context) {
	id, ok := h.discountID(c)
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if len(updates) == 0 {
		utils.BadRequestResponse(c, "No fields to update")
		return
	}

	if err := h.discountService.Update(c.Request.Context(), id, updates); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Discount updated successfully", nil)
}

func (h *DiscountHandler) Delete(c *gin.Context) {
	id, ok := h.discountID(c)
	if !ok {
		return
	}

	if err := h.discountService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Discount deleted successfully", nil)
}

// ListActive returns the currently redeemable discounts.
func (h *DiscountHandler) ListActive(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	discounts, total, err := h.discountService.ListActive(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Count:      len(discounts),
	}
	utils.SuccessResponseWithMeta(c, "Discounts retrieved successfully", discounts, meta)
}

// GetByCode resolves a coupon code so the client can apply it by id.
func (h *DiscountHandler) GetByCode(c *gin.Context) {
	discount, err := h.discountService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Discount retrieved successfully", discount)
}

func (h *DiscountHandler) discountID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid discount ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
