package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"
	"voyago/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type discountRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewDiscountRepository(db *mongo.Database, cache CacheService) interfaces.DiscountRepository {
	return &discountRepository{
		collection: db.Collection("discounts"),
		cache:      cache,
	}
}

func (r *discountRepository) Create(ctx context.Context, discount *models.Discount) error {
	if discount.ID.IsZero() {
		discount.ID = primitive.NewObjectID()
	}
	now := time.Now()
	discount.CreatedAt = now
	discount.UpdatedAt = now
	discount.Code = strings.ToUpper(discount.Code)

	if _, err := r.collection.InsertOne(ctx, discount); err != nil {
		return fmt.Errorf("failed to create discount: %w", err)
	}
	return nil
}

func (r *discountRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error) {
	var discount models.Discount
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&discount)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("discount not found")
		}
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}
	return &discount, nil
}

func (r *discountRepository) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	code = strings.ToUpper(code)

	cacheKey := fmt.Sprintf("discount_code:%s", code)
	if r.cache != nil {
		var cached models.Discount
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var discount models.Discount
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&discount)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("discount not found with code")
		}
		return nil, fmt.Errorf("failed to get discount by code: %w", err)
	}

	if r.cache != nil && discount.Active {
		r.cache.Set(ctx, cacheKey, discount, 30*time.Minute)
	}
	return &discount, nil
}

func (r *discountRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	if code, exists := updates["code"]; exists {
		if codeStr, ok := code.(string); ok {
			updates["code"] = strings.ToUpper(codeStr)
		}
	}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates}); err != nil {
		return fmt.Errorf("failed to update discount: %w", err)
	}
	return nil
}

func (r *discountRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete discount: %w", err)
	}
	return nil
}

func (r *discountRepository) GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error) {
	now := time.Now()
	filter := bson.M{
		"is_active":   true,
		"valid_from":  bson.M{"$lte": now},
		"valid_until": bson.M{"$gte": now},
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count discounts: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find discounts: %w", err)
	}
	defer cursor.Close(ctx)

	var discounts []*models.Discount
	for cursor.Next(ctx) {
		var discount models.Discount
		if err := cursor.Decode(&discount); err != nil {
			return nil, 0, fmt.Errorf("failed to decode discount: %w", err)
		}
		discounts = append(discounts, &discount)
	}
	return discounts, total, nil
}

// GetActiveCouponless picks one automatic discount per destination; when
// several are live at once the most recently created wins.
func (r *discountRepository) GetActiveCouponless(ctx context.Context, destinationID primitive.ObjectID) (*models.Discount, error) {
	filter := bson.M{
		"discount_type": models.DiscountTypeCouponless,
		"is_active":     true,
		"$or": []bson.M{
			{"destination_id": destinationID},
			{"destination_id": nil},
		},
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var discount models.Discount
	err := r.collection.FindOne(ctx, filter, opts).Decode(&discount)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get couponless discount: %w", err)
	}
	return &discount, nil
}

type discountUsageRepository struct {
	collection *mongo.Collection
}

func NewDiscountUsageRepository(db *mongo.Database) interfaces.DiscountUsageRepository {
	return &discountUsageRepository{collection: db.Collection("discount_usages")}
}

func (r *discountUsageRepository) Record(ctx context.Context, usage *models.DiscountUsage) error {
	if usage.ID.IsZero() {
		usage.ID = primitive.NewObjectID()
	}
	if usage.UsedAt.IsZero() {
		usage.UsedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, usage); err != nil {
		return fmt.Errorf("failed to record discount usage: %w", err)
	}
	return nil
}

func (r *discountUsageRepository) CountByUser(ctx context.Context, discountID, userID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"discount_id": discountID,
		"user_id":     userID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count discount usage: %w", err)
	}
	return count, nil
}

func (r *discountUsageRepository) CountDistinctUsers(ctx context.Context, discountID primitive.ObjectID) (int64, error) {
	users, err := r.collection.Distinct(ctx, "user_id", bson.M{"discount_id": discountID})
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct discount users: %w", err)
	}
	return int64(len(users)), nil
}
