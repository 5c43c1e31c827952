package services

import (
	"context"
	"fmt"
	"time"

	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"
	"voyago/internal/utils"
	"voyago/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscountService evaluates eligibility, enforces usage caps from the
// usage ledger, computes discount amounts and records redemptions. It
// also carries the admin surface for managing the discount catalog.
type DiscountService interface {
	// GetByID loads any discount; ErrDiscountNotFound when missing.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error)

	// GetByCode resolves a coupon code to its discount.
	GetByCode(ctx context.Context, code string) (*models.Discount, error)

	// Catalog management, exposed on the admin routes.
	Create(ctx context.Context, discount *models.Discount) error
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error)

	// ActiveCouponless returns the destination's automatic discount the
	// current user is eligible for, or nil when there is none. The
	// itinerary being priced is excluded from the eligibility count.
	ActiveCouponless(ctx context.Context, destinationID, userID, itineraryID primitive.ObjectID) (*models.Discount, error)

	// CheckEligibility rejects (with ErrUserNotEligible) rather than
	// returning a zero amount: an ineligible user is an error condition.
	// The exclude id keeps the itinerary under evaluation out of the
	// user's trip count, so eligibility is stable across recomputes.
	CheckEligibility(ctx context.Context, userID primitive.ObjectID, discount *models.Discount, exclude primitive.ObjectID) error

	// Amount applies the percentage, the max-discount cap and the usage
	// caps; a reached cap yields 0 with no error. Nothing is recorded.
	Amount(ctx context.Context, userID primitive.ObjectID, discount *models.Discount, amount float64) (float64, error)

	// Replay recomputes the value of an already-applied discount against
	// a fresh base, without consulting the ledger: membership in the
	// itinerary's discount list is the proof it was validly redeemed.
	Replay(discount *models.Discount, amount float64) float64

	// RecordRedemption writes the ledger row for a redemption that has
	// already been persisted on the itinerary: exactly one row per
	// successful application.
	RecordRedemption(ctx context.Context, userID, itineraryID primitive.ObjectID, discount *models.Discount, value float64) error
}

type discountService struct {
	discountRepo  interfaces.DiscountRepository
	usageRepo     interfaces.DiscountUsageRepository
	itineraryRepo interfaces.ItineraryRepository
	logger        *logger.Logger
}

func NewDiscountService(
	discountRepo interfaces.DiscountRepository,
	usageRepo interfaces.DiscountUsageRepository,
	itineraryRepo interfaces.ItineraryRepository,
	log *logger.Logger,
) DiscountService {
	return &discountService{
		discountRepo:  discountRepo,
		usageRepo:     usageRepo,
		itineraryRepo: itineraryRepo,
		logger:        log,
	}
}

func (s *discountService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrDiscountNotFound
	}
	return discount, nil
}

func (s *discountService) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, ErrDiscountNotFound
	}
	return discount, nil
}

func (s *discountService) Create(ctx context.Context, discount *models.Discount) error {
	if discount.UserType == "" {
		discount.UserType = models.DiscountUserAll
	}
	return s.discountRepo.Create(ctx, discount)
}

func (s *discountService) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.discountRepo.Update(ctx, id, updates)
}

func (s *discountService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.discountRepo.Delete(ctx, id)
}

func (s *discountService) ListActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error) {
	return s.discountRepo.GetActive(ctx, params)
}

func (s *discountService) ActiveCouponless(ctx context.Context, destinationID, userID, itineraryID primitive.ObjectID) (*models.Discount, error) {
	discount, err := s.discountRepo.GetActiveCouponless(ctx, destinationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load couponless discount: %w", err)
	}
	if discount == nil || !discount.ValidAt(time.Now()) {
		return nil, nil
	}
	if err := s.CheckEligibility(ctx, userID, discount, itineraryID); err != nil {
		return nil, nil
	}
	return discount, nil
}

func (s *discountService) CheckEligibility(ctx context.Context, userID primitive.ObjectID, discount *models.Discount, exclude primitive.ObjectID) error {
	switch discount.UserType {
	case models.DiscountUserAll, "":
		return nil
	case models.DiscountUserNew:
		count, err := s.itineraryRepo.CountByUser(ctx, userID, exclude)
		if err != nil {
			return fmt.Errorf("failed to count user itineraries: %w", err)
		}
		if count > 0 {
			return ErrUserNotEligible
		}
		return nil
	case models.DiscountUserOld:
		count, err := s.itineraryRepo.CountByUser(ctx, userID, exclude)
		if err != nil {
			return fmt.Errorf("failed to count user itineraries: %w", err)
		}
		if count == 0 {
			return ErrUserNotEligible
		}
		return nil
	}
	return ErrUserNotEligible
}

func (s *discountService) Amount(ctx context.Context, userID primitive.ObjectID, discount *models.Discount, amount float64) (float64, error) {
	used, err := s.usageRepo.CountByUser(ctx, discount.ID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read usage ledger: %w", err)
	}
	if discount.NoOfUsesPerUser > 0 && used >= int64(discount.NoOfUsesPerUser) {
		return 0, nil
	}

	if discount.NoOfUsersTotal > 0 && used == 0 {
		distinct, err := s.usageRepo.CountDistinctUsers(ctx, discount.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to read usage ledger: %w", err)
		}
		// The global cap only blocks users who never redeemed before.
		if distinct >= int64(discount.NoOfUsersTotal) {
			return 0, nil
		}
	}

	return s.Replay(discount, amount), nil
}

func (s *discountService) Replay(discount *models.Discount, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	value := amount * discount.DiscountPercentage / 100
	if !discount.NoLimit && discount.MaxDiscount > 0 && value > discount.MaxDiscount {
		value = discount.MaxDiscount
	}
	return value
}

func (s *discountService) RecordRedemption(ctx context.Context, userID, itineraryID primitive.ObjectID, discount *models.Discount, value float64) error {
	usage := &models.DiscountUsage{
		DiscountID:  discount.ID,
		UserID:      userID,
		ItineraryID: itineraryID,
		Amount:      value,
		UsedAt:      time.Now(),
	}
	if err := s.usageRepo.Record(ctx, usage); err != nil {
		return fmt.Errorf("failed to record discount usage: %w", err)
	}
	return nil
}
