package services

import (
	"context"
	"fmt"
	"time"

	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"
	"voyago/pkg/logger"
	"voyago/pkg/suppliers"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// RefreshService is the Resource Refresh Coordinator: after a mutation it
// deletes the sub-resources the changeset orphaned and re-fetches a
// priced replacement for every leg slot left empty. Re-running it on an
// itinerary with no missing references makes no supplier calls.
type RefreshService interface {
	Refresh(ctx context.Context, itinerary *models.Itinerary, changeset *Changeset) error
}

type refreshService struct {
	flightSupplier suppliers.SupplierAdapter
	taxiSupplier   suppliers.SupplierAdapter
	ferrySupplier  suppliers.SupplierAdapter
	hotelSupplier  suppliers.HotelAdapter

	flightRepo  interfaces.FlightRepository
	taxiRepo    interfaces.TaxiRepository
	ferryRepo   interfaces.FerryRepository
	hotelRepo   interfaces.HotelRepository
	catalogRepo interfaces.CatalogRepository

	callTimeout time.Duration
	logger      *logger.Logger
}

func NewRefreshService(
	flightSupplier suppliers.SupplierAdapter,
	taxiSupplier suppliers.SupplierAdapter,
	ferrySupplier suppliers.SupplierAdapter,
	hotelSupplier suppliers.HotelAdapter,
	flightRepo interfaces.FlightRepository,
	taxiRepo interfaces.TaxiRepository,
	ferryRepo interfaces.FerryRepository,
	hotelRepo interfaces.HotelRepository,
	catalogRepo interfaces.CatalogRepository,
	callTimeout time.Duration,
	log *logger.Logger,
) RefreshService {
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	return &refreshService{
		flightSupplier: flightSupplier,
		taxiSupplier:   taxiSupplier,
		ferrySupplier:  ferrySupplier,
		hotelSupplier:  hotelSupplier,
		flightRepo:     flightRepo,
		taxiRepo:       taxiRepo,
		ferryRepo:      ferryRepo,
		hotelRepo:      hotelRepo,
		catalogRepo:    catalogRepo,
		callTimeout:    callTimeout,
		logger:         log,
	}
}

func (s *refreshService) Refresh(ctx context.Context, it *models.Itinerary, ch *Changeset) error {
	if ch == nil {
		ch = &Changeset{}
	}

	if err := s.deleteStale(ctx, it, ch); err != nil {
		return err
	}

	// Supplier calls fan out per leg; each goroutine writes only its own
	// leg's slots, so the final tree keeps its order.
	g, gctx := errgroup.WithContext(ctx)
	for i := range it.Legs {
		i := i
		leg := &it.Legs[i]
		if i > 0 && leg.Transport.Mode.Valid() && leg.Transport.Ref() == nil {
			g.Go(func() error {
				return s.refreshTransport(gctx, it, i)
			})
		}
		if leg.HotelRef == nil && len(leg.Days) > 0 {
			g.Go(func() error {
				return s.refreshHotel(gctx, it, i)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return s.refreshInternationalFlights(ctx, it)
}

func (s *refreshService) deleteStale(ctx context.Context, it *models.Itinerary, ch *Changeset) error {
	byKind := make(map[models.ResourceKind][]primitive.ObjectID)
	for _, stale := range ch.Stale {
		byKind[stale.Kind] = append(byKind[stale.Kind], stale.ID)
	}

	if ch.EdgesTouched && len(it.InternationalFlights) > 0 {
		byKind[models.ResourceKindFlight] = append(byKind[models.ResourceKindFlight], it.InternationalFlights...)
		it.InternationalFlights = nil
	}

	for kind, ids := range byKind {
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
			return fmt.Errorf("failed to delete stale %s resources: %w", kind, err)
		}
	}
	return nil
}

func (s *refreshService) refreshTransport(ctx context.Context, it *models.Itinerary, i int) error {
	leg := &it.Legs[i]
	first := leg.FirstDay()
	if first == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	request := &suppliers.SearchRequest{
		Origin:      it.Legs[i-1].CityName,
		Destination: leg.CityName,
		Date:        first.Date,
		Party:       partyOf(it),
	}

	var adapter suppliers.SupplierAdapter
	switch leg.Transport.Mode {
	case models.TransportModeFlight:
		adapter = s.flightSupplier
	case models.TransportModeCar:
		adapter = s.taxiSupplier
	case models.TransportModeFerry:
		adapter = s.ferrySupplier
	default:
		return nil
	}

	offers, err := adapter.Search(callCtx, request)
	if err != nil {
		// Supplier degradation: the leg keeps a nil reference and the
		// traveller can retry a refresh later.
		s.logger.WithFields(map[string]interface{}{
			"itinerary_id": it.ID.Hex(),
			"leg":          i,
			"mode":         string(leg.Transport.Mode),
		}).WithError(err).Warn("transport supplier search failed")
		return nil
	}
	best, ok := suppliers.LowestPrice(offers)
	if !ok {
		s.logger.WithFields(map[string]interface{}{
			"itinerary_id": it.ID.Hex(),
			"leg":          i,
			"mode":         string(leg.Transport.Mode),
		}).Warn("transport supplier returned no offers")
		return nil
	}

	id, err := s.persistTransport(ctx, leg.Transport.Mode, request, best)
	if err != nil {
		return err
	}
	leg.Transport.SetRef(id)
	return nil
}

func (s *refreshService) persistTransport(ctx context.Context, mode models.TransportMode, request *suppliers.SearchRequest, offer suppliers.Offer) (primitive.ObjectID, error) {
	switch mode {
	case models.TransportModeFlight:
		doc := &models.Flight{
			Airline:       offer.Metadata["airline"],
			FlightNumber:  offer.Metadata["flight_number"],
			Origin:        request.Origin,
			Destination:   request.Destination,
			DepartureDate: request.Date,
			Price:         offer.Price,
			Currency:      offer.Currency,
			Vendor:        offer.Vendor,
		}
		if err := s.flightRepo.Create(ctx, doc); err != nil {
			return primitive.NilObjectID, err
		}
		return doc.ID, nil
	case models.TransportModeCar:
		doc := &models.Taxi{
			Vendor:       offer.Vendor,
			VehicleClass: offer.Metadata["vehicle_class"],
			Origin:       request.Origin,
			Destination:  request.Destination,
			TravelDate:   request.Date,
			Price:        offer.Price,
			Currency:     offer.Currency,
		}
		if err := s.taxiRepo.Create(ctx, doc); err != nil {
			return primitive.NilObjectID, err
		}
		return doc.ID, nil
	case models.TransportModeFerry:
		doc := &models.Ferry{
			Operator:    offer.Metadata["operator"],
			Origin:      request.Origin,
			Destination: request.Destination,
			TravelDate:  request.Date,
			Price:       offer.Price,
			Currency:    offer.Currency,
		}
		if err := s.ferryRepo.Create(ctx, doc); err != nil {
			return primitive.NilObjectID, err
		}
		return doc.ID, nil
	}
	return primitive.NilObjectID, fmt.Errorf("unsupported transport mode %q", mode)
}

func (s *refreshService) refreshHotel(ctx context.Context, it *models.Itinerary, i int) error {
	leg := &it.Legs[i]
	first, last := leg.FirstDay(), leg.LastDay()
	if first == nil || last == nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	request := &suppliers.StayRequest{
		City:      leg.CityName,
		Arrival:   first.Date,
		Departure: last.Date.AddDate(0, 0, 1),
		Party:     partyOf(it),
	}
	offers, err := s.hotelSupplier.SearchStay(callCtx, request)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"itinerary_id": it.ID.Hex(),
			"leg":          i,
			"city":         leg.CityName,
		}).WithError(err).Warn("hotel supplier search failed")
		return nil
	}
	best, ok := suppliers.LowestPrice(offers)
	if !ok {
		s.logger.WithFields(map[string]interface{}{
			"itinerary_id": it.ID.Hex(),
			"leg":          i,
			"city":         leg.CityName,
		}).Warn("hotel supplier returned no offers")
		return nil
	}

	doc := &models.Hotel{
		Name:      best.Metadata["hotel_name"],
		CityName:  leg.CityName,
		CheckIn:   request.Arrival,
		CheckOut:  request.Departure,
		RoomCount: it.Rooms.RoomCount,
		Price:     best.Price,
		Currency:  best.Currency,
		Vendor:    best.Vendor,
	}
	if err := s.hotelRepo.Create(ctx, doc); err != nil {
		return err
	}
	leg.HotelRef = &doc.ID
	return nil
}

// refreshInternationalFlights re-derives the two bracketing flights from
// the nearest international airports of the first and last leg's cities.
// Fetched only when the bracket is empty, keeping the pass idempotent.
func (s *refreshService) refreshInternationalFlights(ctx context.Context, it *models.Itinerary) error {
	if !it.IncludeInternationalFlights || len(it.Legs) == 0 || len(it.InternationalFlights) > 0 {
		return nil
	}

	firstCity, err := s.catalogRepo.GetCity(ctx, it.Legs[0].CityID)
	if err != nil {
		return fmt.Errorf("failed to load first city: %w", err)
	}
	lastCity, err := s.catalogRepo.GetCity(ctx, it.Legs[len(it.Legs)-1].CityID)
	if err != nil {
		return fmt.Errorf("failed to load last city: %w", err)
	}

	brackets := []*suppliers.SearchRequest{
		{
			Origin:      it.Origin,
			Destination: firstCity.NearestInternationalAirport,
			Date:        it.StartDate,
			Party:       partyOf(it),
		},
		{
			Origin:      lastCity.NearestInternationalAirport,
			Destination: it.Origin,
			Date:        it.EndDate().AddDate(0, 0, 1),
			Party:       partyOf(it),
		},
	}

	for _, request := range brackets {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		offers, err := s.flightSupplier.Search(callCtx, request)
		cancel()
		if err != nil {
			s.logger.WithFields(map[string]interface{}{
				"itinerary_id": it.ID.Hex(),
				"origin":       request.Origin,
				"destination":  request.Destination,
			}).WithError(err).Warn("international flight search failed")
			continue
		}
		best, ok := suppliers.LowestPrice(offers)
		if !ok {
			s.logger.WithFields(map[string]interface{}{
				"itinerary_id": it.ID.Hex(),
				"origin":       request.Origin,
				"destination":  request.Destination,
			}).Warn("international flight search returned no offers")
			continue
		}

		doc := &models.Flight{
			Airline:       best.Metadata["airline"],
			FlightNumber:  best.Metadata["flight_number"],
			Origin:        request.Origin,
			Destination:   request.Destination,
			DepartureDate: request.Date,
			Price:         best.Price,
			Currency:      best.Currency,
			Vendor:        best.Vendor,
			International: true,
		}
		if err := s.flightRepo.Create(ctx, doc); err != nil {
			return err
		}
		it.InternationalFlights = append(it.InternationalFlights, doc.ID)
	}
	return nil
}

func partyOf(it *models.Itinerary) suppliers.Party {
	return suppliers.Party{
		Adults:    it.Rooms.Adults,
		Children:  it.Rooms.Children,
		ChildAges: it.Rooms.ChildAges,
		Rooms:     it.Rooms.RoomCount,
	}
}
