package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"
	"voyago/internal/utils"
	"voyago/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// saveRetries bounds the optimistic-concurrency retry loop. Each retry
// reloads the aggregate and replays the whole mutation against it.
const saveRetries = 3

// ItineraryService orchestrates the full mutation pipeline: load the
// aggregate, apply the structural edit on a deep copy, refresh the
// invalidated sub-resources, recompute the price and persist with a
// history snapshot. Callers always receive the post-save aggregate.
type ItineraryService interface {
	Create(ctx context.Context, userID primitive.ObjectID, req *models.CreateItineraryRequest) (*models.Itinerary, error)
	Get(ctx context.Context, id, userID primitive.ObjectID) (*models.Itinerary, error)
	List(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Itinerary, int64, error)
	GetVersions(ctx context.Context, id, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ItineraryVersion, int64, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error

	AddCity(ctx context.Context, id, userID primitive.ObjectID, position int, cityName string) (*models.Itinerary, error)
	DeleteCity(ctx context.Context, id, userID primitive.ObjectID, index int) (*models.Itinerary, error)
	ReplaceCity(ctx context.Context, id, userID primitive.ObjectID, index int, cityName string) (*models.Itinerary, error)
	AddDays(ctx context.Context, id, userID primitive.ObjectID, legIndex, count int) (*models.Itinerary, error)
	DeleteDays(ctx context.Context, id, userID primitive.ObjectID, legIndex, count int) (*models.Itinerary, error)
	ChangeTransportMode(ctx context.Context, id, userID primitive.ObjectID, legIndex int, mode models.TransportMode) (*models.Itinerary, error)
	ReplaceActivity(ctx context.Context, id, userID primitive.ObjectID, scheduledID, newActivityID primitive.ObjectID) (*models.Itinerary, error)
	ReplaceWithLeisure(ctx context.Context, id, userID primitive.ObjectID, scheduledID primitive.ObjectID) (*models.Itinerary, error)
	UpdateDetails(ctx context.Context, id, userID primitive.ObjectID, newStartDate *time.Time, travellingWith string, rooms *models.Rooms) (*models.Itinerary, error)

	ApplyCoupon(ctx context.Context, id, userID, discountID primitive.ObjectID) (*models.Itinerary, error)

	// Reprice runs the refresh-and-recompute pass against current supplier
	// prices without a structural edit; used by the scheduled job.
	Reprice(ctx context.Context, itinerary *models.Itinerary) error
}

type itineraryService struct {
	itineraryRepo interfaces.ItineraryRepository
	flightRepo    interfaces.FlightRepository
	taxiRepo      interfaces.TaxiRepository
	ferryRepo     interfaces.FerryRepository
	hotelRepo     interfaces.HotelRepository
	catalogRepo   interfaces.CatalogRepository
	leadRepo      interfaces.LeadRepository

	mutationSvc MutationService
	refreshSvc  RefreshService
	pricingSvc  PricingService
	discountSvc DiscountService
	logger      *logger.Logger
}

func NewItineraryService(
	itineraryRepo interfaces.ItineraryRepository,
	flightRepo interfaces.FlightRepository,
	taxiRepo interfaces.TaxiRepository,
	ferryRepo interfaces.FerryRepository,
	hotelRepo interfaces.HotelRepository,
	catalogRepo interfaces.CatalogRepository,
	leadRepo interfaces.LeadRepository,
	mutationSvc MutationService,
	refreshSvc RefreshService,
	pricingSvc PricingService,
	discountSvc DiscountService,
	log *logger.Logger,
) ItineraryService {
	return &itineraryService{
		itineraryRepo: itineraryRepo,
		flightRepo:    flightRepo,
		taxiRepo:      taxiRepo,
		ferryRepo:     ferryRepo,
		hotelRepo:     hotelRepo,
		catalogRepo:   catalogRepo,
		leadRepo:      leadRepo,
		mutationSvc:   mutationSvc,
		refreshSvc:    refreshSvc,
		pricingSvc:    pricingSvc,
		discountSvc:   discountSvc,
		logger:        log,
	}
}

func (s *itineraryService) Create(ctx context.Context, userID primitive.ObjectID, req *models.CreateItineraryRequest) (*models.Itinerary, error) {
	destinationID, err := primitive.ObjectIDFromHex(req.DestinationID)
	if err != nil {
		return nil, fmt.Errorf("invalid destination id: %w", err)
	}
	if _, err := s.catalogRepo.GetDestination(ctx, destinationID); err != nil {
		return nil, fmt.Errorf("failed to load destination: %w", err)
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}

	it := &models.Itinerary{
		ID:                          primitive.NewObjectID(),
		UserID:                      userID,
		Title:                       req.Title,
		DestinationID:               destinationID,
		Origin:                      req.Origin,
		StartDate:                   utils.StartOfDay(startDate.UTC()),
		TravellingWith:              req.TravellingWith,
		Rooms:                       req.Rooms,
		IncludeInternationalFlights: req.IncludeInternationalFlights,
		Version:                     1,
		CreatedAt:                   time.Now(),
		UpdatedAt:                   time.Now(),
	}

	for _, cityName := range req.Cities {
		city, err := s.catalogRepo.GetCityByName(ctx, cityName)
		if err != nil {
			return nil, ErrCityNotFound
		}
		leg, err := s.mutationSvc.BuildLeg(ctx, city)
		if err != nil {
			return nil, err
		}
		it.Legs = append(it.Legs, *leg)
	}
	s.mutationSvc.RecalculateDates(it)

	if err := s.refreshSvc.Refresh(ctx, it, nil); err != nil {
		return nil, err
	}
	if err := s.pricingSvc.Recompute(ctx, it); err != nil {
		return nil, err
	}

	if err := s.itineraryRepo.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}

	s.recordLead(ctx, it)
	return it, nil
}

// recordLead is CRM plumbing; a failure is logged, never surfaced.
func (s *itineraryService) recordLead(ctx context.Context, it *models.Itinerary) {
	lead := &models.Lead{
		UserID:      it.UserID,
		ItineraryID: it.ID,
		Destination: it.DestinationID.Hex(),
		StartDate:   it.StartDate,
		Travellers:  it.Rooms.Travellers(),
		Source:      "itinerary",
		CreatedAt:   time.Now(),
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		s.logger.WithField("itinerary_id", it.ID.Hex()).WithError(err).Warn("failed to record lead")
	}
}

func (s *itineraryService) Get(ctx context.Context, id, userID primitive.ObjectID) (*models.Itinerary, error) {
	return s.load(ctx, id, userID)
}

func (s *itineraryService) List(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Itinerary, int64, error) {
	return s.itineraryRepo.GetByUser(ctx, userID, params)
}

func (s *itineraryService) GetVersions(ctx context.Context, id, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ItineraryVersion, int64, error) {
	if _, err := s.load(ctx, id, userID); err != nil {
		return nil, 0, err
	}
	return s.itineraryRepo.GetVersions(ctx, id, params)
}

// Delete removes the aggregate and every sub-resource it owns; orphaned
// flight or hotel documents would otherwise accumulate forever.
func (s *itineraryService) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	it, err := s.load(ctx, id, userID)
	if err != nil {
		return err
	}

	byKind := make(map[models.ResourceKind][]primitive.ObjectID)
	byKind[models.ResourceKindFlight] = append(byKind[models.ResourceKindFlight], it.InternationalFlights...)
	for i := range it.Legs {
		leg := &it.Legs[i]
		if ref := leg.Transport.Ref(); ref != nil {
			kind := leg.Transport.Mode.ResourceKind()
			byKind[kind] = append(byKind[kind], *ref)
		}
		if leg.HotelRef != nil {
			byKind[models.ResourceKindHotel] = append(byKind[models.ResourceKindHotel], *leg.HotelRef)
		}
	}

	for kind, ids := range byKind {
		if len(ids) == 0 {
			continue
		}
		var err error
		switch kind {
		case models.ResourceKindFlight:
			err = s.flightRepo.DeleteMany(ctx, ids)
		case models.ResourceKindTaxi:
			err = s.taxiRepo.DeleteMany(ctx, ids)
		case models.ResourceKindFerry:
			err = s.ferryRepo.DeleteMany(ctx, ids)
		case models.ResourceKindHotel:
			err = s.hotelRepo.DeleteMany(ctx, ids)
		}
		if err != nil {
			return fmt.Errorf("failed to delete %s resources: %w", kind, err)
		}
	}

	if err := s.itineraryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	return nil
}

func (s *itineraryService) AddCity(ctx context.Context, id, userID primitive.ObjectID, position int, cityName string) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.AddCity(ctx, it, position, cityName)
	})
}

func (s *itineraryService) DeleteCity(ctx context.Context, id, userID primitive.ObjectID, index int) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.DeleteCity(ctx, it, index)
	})
}

func (s *itineraryService) ReplaceCity(ctx context.Context, id, userID primitive.ObjectID, index int, cityName string) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.ReplaceCity(ctx, it, index, cityName)
	})
}

func (s *itineraryService) AddDays(ctx context.Context, id, userID primitive.ObjectID, legIndex, count int) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.AddDays(ctx, it, legIndex, count)
	})
}

func (s *itineraryService) DeleteDays(ctx context.Context, id, userID primitive.ObjectID, legIndex, count int) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.DeleteDays(ctx, it, legIndex, count)
	})
}

func (s *itineraryService) ChangeTransportMode(ctx context.Context, id, userID primitive.ObjectID, legIndex int, mode models.TransportMode) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.ChangeTransportMode(ctx, it, legIndex, mode)
	})
}

func (s *itineraryService) ReplaceActivity(ctx context.Context, id, userID primitive.ObjectID, scheduledID, newActivityID primitive.ObjectID) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.ReplaceActivity(ctx, it, scheduledID, newActivityID)
	})
}

func (s *itineraryService) ReplaceWithLeisure(ctx context.Context, id, userID primitive.ObjectID, scheduledID primitive.ObjectID) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.ReplaceWithLeisure(ctx, it, scheduledID)
	})
}

func (s *itineraryService) UpdateDetails(ctx context.Context, id, userID primitive.ObjectID, newStartDate *time.Time, travellingWith string, rooms *models.Rooms) (*models.Itinerary, error) {
	return s.mutate(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		return s.mutationSvc.UpdateDetails(ctx, it, newStartDate, travellingWith, rooms)
	})
}

// ApplyCoupon validates a coupon discount, adds it to the itinerary and
// recomputes the price so the replay pass picks up the new entry. The
// discount id joins the itinerary's list exactly once.
func (s *itineraryService) ApplyCoupon(ctx context.Context, id, userID, discountID primitive.ObjectID) (*models.Itinerary, error) {
	discount, err := s.discountSvc.GetByID(ctx, discountID)
	if err != nil {
		return nil, err
	}
	if discount.DiscountType != models.DiscountTypeGeneral {
		return nil, ErrDiscountNotGeneral
	}
	if !discount.ValidAt(time.Now()) {
		return nil, ErrDiscountInactive
	}

	var redeemed float64
	it, err := s.mutateWith(ctx, id, userID, func(it *models.Itinerary) (*Changeset, error) {
		if it.HasDiscount(discount.ID) {
			return nil, ErrDiscountAlreadyApplied
		}
		if discount.DestinationID != nil && *discount.DestinationID != it.DestinationID {
			return nil, ErrDiscountInactive
		}
		if err := s.discountSvc.CheckEligibility(ctx, userID, discount, it.ID); err != nil {
			return nil, err
		}

		value, err := s.discountSvc.Amount(ctx, userID, discount, GeneralDiscountBase(it, discount))
		if err != nil {
			return nil, err
		}
		if value <= 0 {
			return nil, ErrUserNotEligible
		}
		redeemed = value
		it.Discounts = append(it.Discounts, discount.ID)
		return &Changeset{}, nil
	}, false)
	if err != nil {
		return nil, err
	}

	// The ledger row is written only after the save has landed; a
	// rejected attempt must leave no usage behind.
	if err := s.discountSvc.RecordRedemption(ctx, userID, it.ID, discount, redeemed); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *itineraryService) Reprice(ctx context.Context, it *models.Itinerary) error {
	prev := it.Clone()
	if err := s.refreshSvc.Refresh(ctx, it, nil); err != nil {
		return err
	}
	if err := s.pricingSvc.Recompute(ctx, it); err != nil {
		return err
	}
	return s.save(ctx, prev, it)
}

func (s *itineraryService) load(ctx context.Context, id, userID primitive.ObjectID) (*models.Itinerary, error) {
	it, err := s.itineraryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrItineraryNotFound
	}
	if it.UserID != userID {
		return nil, ErrNotOwner
	}
	return it, nil
}

type mutateFunc func(it *models.Itinerary) (*Changeset, error)

func (s *itineraryService) mutate(ctx context.Context, id, userID primitive.ObjectID, fn mutateFunc) (*models.Itinerary, error) {
	return s.mutateWith(ctx, id, userID, fn, true)
}

// mutateWith is the shared pipeline. All work happens on a clone; the
// stored aggregate is untouched until SaveWithHistory succeeds, so a
// failing supplier or pricing pass leaves no partial state behind.
func (s *itineraryService) mutateWith(ctx context.Context, id, userID primitive.ObjectID, fn mutateFunc, refresh bool) (*models.Itinerary, error) {
	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		prev, err := s.load(ctx, id, userID)
		if err != nil {
			return nil, err
		}

		next := prev.Clone()
		changeset, err := fn(next)
		if err != nil {
			return nil, err
		}

		if refresh {
			if err := s.refreshSvc.Refresh(ctx, next, changeset); err != nil {
				return nil, err
			}
		}
		if err := s.pricingSvc.Recompute(ctx, next); err != nil {
			return nil, err
		}

		if err := s.save(ctx, prev, next); err != nil {
			if errors.Is(err, ErrStaleWrite) {
				lastErr = err
				s.logger.WithFields(map[string]interface{}{
					"itinerary_id": id.Hex(),
					"attempt":      attempt + 1,
				}).Warn("concurrent itinerary write; retrying mutation")
				continue
			}
			return nil, err
		}
		return next, nil
	}
	return nil, fmt.Errorf("mutation retries exhausted: %w", lastErr)
}

func (s *itineraryService) save(ctx context.Context, prev, next *models.Itinerary) error {
	next.Version = prev.Version + 1
	next.UpdatedAt = time.Now()
	return s.itineraryRepo.SaveWithHistory(ctx, prev, next)
}
