package services

import (
	"context"
	"fmt"

	"voyago/internal/config"
	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"
	"voyago/pkg/logger"
)

// PricingService is the Cost Aggregation Engine: it walks the refreshed
// tree, sums category subtotals, applies markups, the couponless
// discount, tax and the service fee, and replays the itinerary's applied
// coupon discounts. Recompute is idempotent: every run rebuilds all
// price fields from the tree and sub-resources alone.
type PricingService interface {
	Recompute(ctx context.Context, itinerary *models.Itinerary) error
}

type pricingService struct {
	flightRepo  interfaces.FlightRepository
	taxiRepo    interfaces.TaxiRepository
	ferryRepo   interfaces.FerryRepository
	hotelRepo   interfaces.HotelRepository
	catalogRepo interfaces.CatalogRepository
	discountSvc DiscountService
	pricing     *config.PricingConfig
	logger      *logger.Logger
}

func NewPricingService(
	flightRepo interfaces.FlightRepository,
	taxiRepo interfaces.TaxiRepository,
	ferryRepo interfaces.FerryRepository,
	hotelRepo interfaces.HotelRepository,
	catalogRepo interfaces.CatalogRepository,
	discountSvc DiscountService,
	pricing *config.PricingConfig,
	log *logger.Logger,
) PricingService {
	return &pricingService{
		flightRepo:  flightRepo,
		taxiRepo:    taxiRepo,
		ferryRepo:   ferryRepo,
		hotelRepo:   hotelRepo,
		catalogRepo: catalogRepo,
		discountSvc: discountSvc,
		pricing:     pricing,
		logger:      log,
	}
}

func (s *pricingService) Recompute(ctx context.Context, it *models.Itinerary) error {
	destination, err := s.catalogRepo.GetDestination(ctx, it.DestinationID)
	if err != nil {
		return fmt.Errorf("failed to load destination: %w", err)
	}

	couponless, err := s.discountSvc.ActiveCouponless(ctx, it.DestinationID, it.UserID, it.ID)
	if err != nil {
		// Losing the automatic discount degrades the price, it does not
		// fail the recompute.
		s.logger.WithField("itinerary_id", it.ID.Hex()).WithError(err).Warn("couponless discount lookup failed")
		couponless = nil
	}

	var totalPrice, shadow float64

	// International flights are charged at cost; no category markup in
	// the current model.
	intlTotal := 0.0
	for _, id := range it.InternationalFlights {
		flight, err := s.flightRepo.GetByID(ctx, id)
		if err != nil {
			s.logger.WithField("flight_id", id.Hex()).WithError(err).Warn("international flight reference dangling")
			continue
		}
		intlTotal += flight.Price
	}
	totalPrice += intlTotal
	shadow += intlTotal

	// Domestic transport, marked up per category.
	var domesticFlights, taxiTotal, ferryTotal float64
	for i := range it.Legs {
		leg := &it.Legs[i]
		ref := leg.Transport.Ref()
		if i == 0 || ref == nil {
			continue
		}
		switch leg.Transport.Mode {
		case models.TransportModeFlight:
			flight, err := s.flightRepo.GetByID(ctx, *ref)
			if err != nil {
				s.logger.WithField("flight_id", ref.Hex()).WithError(err).Warn("flight reference dangling")
				continue
			}
			domesticFlights += flight.Price * (1 + s.pricing.FlightMarkupPercent/100)
		case models.TransportModeCar:
			taxi, err := s.taxiRepo.GetByID(ctx, *ref)
			if err != nil {
				s.logger.WithField("taxi_id", ref.Hex()).WithError(err).Warn("taxi reference dangling")
				continue
			}
			taxiTotal += taxi.Price * (1 + s.pricing.TaxiMarkupPercent/100)
		case models.TransportModeFerry:
			ferry, err := s.ferryRepo.GetByID(ctx, *ref)
			if err != nil {
				s.logger.WithField("ferry_id", ref.Hex()).WithError(err).Warn("ferry reference dangling")
				continue
			}
			ferryTotal += ferry.Price * (1 + s.pricing.FerryMarkupPercent/100)
		}
	}
	totalPrice += domesticFlights + taxiTotal + ferryTotal
	shadow += domesticFlights + taxiTotal + ferryTotal

	// The flight discount applies once, to the aggregate of international
	// and domestic flights, and reduces totalPrice only: the shadow total
	// stays the tax base.
	flightAggregate := intlTotal + domesticFlights
	if couponless != nil && couponless.ApplicableOn.Flights && flightAggregate > 0 {
		value, err := s.discountSvc.Amount(ctx, it.UserID, couponless, flightAggregate)
		if err != nil {
			return err
		}
		totalPrice -= value
	}

	// Hotels: per-room stay price times room count, stay markup, with the
	// hotel discount applied per leg.
	hotelTotal := 0.0
	for i := range it.Legs {
		leg := &it.Legs[i]
		if leg.HotelRef == nil {
			continue
		}
		hotel, err := s.hotelRepo.GetByID(ctx, *leg.HotelRef)
		if err != nil {
			s.logger.WithField("hotel_id", leg.HotelRef.Hex()).WithError(err).Warn("hotel reference dangling")
			continue
		}
		price := hotel.Price * float64(it.Rooms.RoomCount) * (1 + s.pricing.StayMarkupPercent/100)
		hotelTotal += price
		shadow += price
		if couponless != nil && couponless.ApplicableOn.Hotels {
			value, err := s.discountSvc.Amount(ctx, it.UserID, couponless, price)
			if err != nil {
				return err
			}
			totalPrice += price - value
		} else {
			totalPrice += price
		}
	}

	// Activities: unit price per traveller, leisure placeholders free.
	activityTotal := 0.0
	travellers := float64(it.Rooms.Travellers())
	for i := range it.Legs {
		for j := range it.Legs[i].Days {
			for _, slot := range it.Legs[i].Days[j].Activities {
				if slot.IsLeisure {
					continue
				}
				activityTotal += slot.PricePerPerson * travellers
			}
		}
	}
	shadow += activityTotal
	if couponless != nil && couponless.ApplicableOn.Activities && activityTotal > 0 {
		value, err := s.discountSvc.Amount(ctx, it.UserID, couponless, activityTotal)
		if err != nil {
			return err
		}
		totalPrice += activityTotal - value
	} else {
		totalPrice += activityTotal
	}

	// Whole-trip destination markup, after the category markups.
	destMarkup := 1 + destination.MarkupPercentage/100
	totalPrice *= destMarkup
	shadow *= destMarkup

	if couponless != nil && couponless.ApplicableOn.Package {
		value, err := s.discountSvc.Amount(ctx, it.UserID, couponless, totalPrice)
		if err != nil {
			return err
		}
		totalPrice -= value
	}

	// Tax and service fee are charged on the pre-discount shadow total;
	// the couponless discount comes off once at the end so it never
	// reduces the taxable base.
	couponlessDiscount := shadow - totalPrice
	tax := shadow * s.pricing.TaxRate
	grandTotal := shadow + tax + s.pricing.ServiceFee - couponlessDiscount

	it.InternationalFlightTotal = intlTotal
	it.FlightTotal = domesticFlights
	it.TaxiTotal = taxiTotal
	it.FerryTotal = ferryTotal
	it.HotelTotal = hotelTotal
	it.ActivityTotal = activityTotal
	it.TotalPrice = totalPrice
	it.PriceWithoutCoupon = shadow
	it.CouponlessDiscount = couponlessDiscount
	it.Tax = tax
	it.ServiceFee = s.pricing.ServiceFee
	it.GrandTotal = grandTotal

	return s.replayGeneralDiscounts(ctx, it)
}

// replayGeneralDiscounts re-applies every coupon discount on the
// itinerary against the freshly computed subtotals. Replaying from
// scratch keeps the recompute idempotent: amounts never accumulate
// across runs.
func (s *pricingService) replayGeneralDiscounts(ctx context.Context, it *models.Itinerary) error {
	it.GeneralDiscount = 0
	for _, id := range it.Discounts {
		discount, err := s.discountSvc.GetByID(ctx, id)
		if err != nil {
			s.logger.WithField("discount_id", id.Hex()).Warn("applied discount no longer exists; skipping")
			continue
		}
		if discount.DiscountType != models.DiscountTypeGeneral {
			continue
		}
		value := s.discountSvc.Replay(discount, GeneralDiscountBase(it, discount))
		it.TotalPrice -= value
		it.GeneralDiscount += value
	}
	it.CurrentTotalPrice = it.TotalPrice*(1+s.pricing.TaxRate) + s.pricing.ServiceFee
	return nil
}

// GeneralDiscountBase picks the single category a coupon discount
// reduces: the first applicable flag wins, in the order flights, hotels,
// activities, whole package.
func GeneralDiscountBase(it *models.Itinerary, discount *models.Discount) float64 {
	switch {
	case discount.ApplicableOn.Flights:
		return it.InternationalFlightTotal + it.FlightTotal
	case discount.ApplicableOn.Hotels:
		return it.HotelTotal
	case discount.ApplicableOn.Activities:
		return it.ActivityTotal
	case discount.ApplicableOn.Package:
		return it.TotalPrice
	}
	return 0
}
