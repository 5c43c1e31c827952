package validators

import (
	"voyago/internal/models"
)

func ValidateDiscount(d *models.Discount) ValidationErrors {
	errors := ValidateStruct(d)

	if d.DiscountPercentage <= 0 || d.DiscountPercentage > 100 {
		errors = append(errors, ValidationError{
			Field:   "discount_percentage",
			Message: "Discount percentage must be between 0 and 100",
		})
	}
	if d.DiscountType != models.DiscountTypeGeneral && d.DiscountType != models.DiscountTypeCouponless {
		errors = append(errors, ValidationError{
			Field:   "discount_type",
			Message: "Discount type must be general or couponless",
		})
	}
	switch d.UserType {
	case "", models.DiscountUserAll, models.DiscountUserNew, models.DiscountUserOld:
	default:
		errors = append(errors, ValidationError{
			Field:   "user_type",
			Message: "User type must be all, new or old",
		})
	}
	if !d.ValidFrom.IsZero() && !d.ValidUntil.IsZero() && d.ValidUntil.Before(d.ValidFrom) {
		errors = append(errors, ValidationError{
			Field:   "valid_until",
			Message: "Validity window must end after it starts",
		})
	}

	return errors
}
