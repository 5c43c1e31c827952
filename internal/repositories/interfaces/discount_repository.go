package interfaces

import (
	"context"

	"voyago/internal/models"
	"voyago/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountRepository interface {
	Create(ctx context.Context, discount *models.Discount) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error)
	GetByCode(ctx context.Context, code string) (*models.Discount, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error)

	// GetActiveCouponless returns the active couponless discount for a
	// destination; when several match, the most recently created wins.
	GetActiveCouponless(ctx context.Context, destinationID primitive.ObjectID) (*models.Discount, error)
}

// DiscountUsageRepository is the ledger from which usage caps are derived.
type DiscountUsageRepository interface {
	Record(ctx context.Context, usage *models.DiscountUsage) error
	CountByUser(ctx context.Context, discountID, userID primitive.ObjectID) (int64, error)
	CountDistinctUsers(ctx context.Context, discountID primitive.ObjectID) (int64, error)
}
