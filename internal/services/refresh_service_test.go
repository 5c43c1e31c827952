package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"voyago/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type refreshFixture struct {
	flightSupplier *fakeSupplier
	taxiSupplier   *fakeSupplier
	ferrySupplier  *fakeSupplier
	hotelSupplier  *fakeHotelSupplier

	flightRepo *fakeFlightRepo
	taxiRepo   *fakeTaxiRepo
	ferryRepo  *fakeFerryRepo
	hotelRepo  *fakeHotelRepo
	catalog    *fakeCatalogRepo

	svc RefreshService
}

func newRefreshFixture(t *testing.T) *refreshFixture {
	t.Helper()
	f := &refreshFixture{
		flightSupplier: &fakeSupplier{offers: singleOffer(300, "airline")},
		taxiSupplier:   &fakeSupplier{offers: singleOffer(60, "cabco")},
		ferrySupplier:  &fakeSupplier{offers: singleOffer(45, "ferryco")},
		hotelSupplier:  &fakeHotelSupplier{offers: singleOffer(120, "hotelco")},
		flightRepo:     newFakeFlightRepo(),
		taxiRepo:       newFakeTaxiRepo(),
		ferryRepo:      newFakeFerryRepo(),
		hotelRepo:      newFakeHotelRepo(),
		catalog:        newFakeCatalogRepo(),
	}
	f.catalog.addCity("Tokyo", "NRT")
	f.catalog.addCity("Kyoto", "KIX")
	f.svc = NewRefreshService(
		f.flightSupplier, f.taxiSupplier, f.ferrySupplier, f.hotelSupplier,
		f.flightRepo, f.taxiRepo, f.ferryRepo, f.hotelRepo, f.catalog,
		time.Second, testLogger(),
	)
	return f
}

func (f *refreshFixture) itinerary(t *testing.T, stays ...int) *models.Itinerary {
	t.Helper()
	names := []string{"Tokyo", "Kyoto"}
	require.LessOrEqual(t, len(stays), len(names))

	it := &models.Itinerary{
		ID:        primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		Origin:    "LHR",
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Rooms:     models.Rooms{Adults: 2, Children: 1, ChildAges: []int{6}, RoomCount: 1},
	}
	cursor := it.StartDate
	for i, stay := range stays {
		city := f.catalog.cities[names[i]]
		leg := models.CityLeg{
			ID:        primitive.NewObjectID(),
			CityID:    city.ID,
			CityName:  city.Name,
			StayDays:  stay,
			Transport: models.NewTransportRef(models.TransportModeCar),
		}
		for d := 0; d < stay; d++ {
			leg.Days = append(leg.Days, models.Day{DayNumber: d + 1, Date: cursor})
			cursor = cursor.AddDate(0, 0, 1)
		}
		it.Legs = append(it.Legs, leg)
	}
	return it
}

func TestRefreshFillsEmptySlots(t *testing.T) {
	f := newRefreshFixture(t)
	it := f.itinerary(t, 2, 3)

	err := f.svc.Refresh(context.Background(), it, nil)
	require.NoError(t, err)

	// First leg never gets inbound domestic transport.
	assert.Nil(t, it.Legs[0].Transport.Ref())
	require.NotNil(t, it.Legs[1].Transport.Ref())
	require.NotNil(t, it.Legs[0].HotelRef)
	require.NotNil(t, it.Legs[1].HotelRef)

	taxi, err := f.taxiRepo.GetByID(context.Background(), *it.Legs[1].Transport.Ref())
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", taxi.Origin)
	assert.Equal(t, "Kyoto", taxi.Destination)
	assert.True(t, taxi.TravelDate.Equal(it.Legs[1].Days[0].Date))

	require.Equal(t, 1, f.taxiSupplier.calls())
	request := f.taxiSupplier.requests[0]
	assert.Equal(t, 2, request.Party.Adults)
	assert.Equal(t, 1, request.Party.Children)
}

func TestRefreshHotelStayWindow(t *testing.T) {
	f := newRefreshFixture(t)
	it := f.itinerary(t, 3)

	err := f.svc.Refresh(context.Background(), it, nil)
	require.NoError(t, err)

	require.Equal(t, 1, f.hotelSupplier.calls())
	request := f.hotelSupplier.requests[0]
	assert.Equal(t, "Tokyo", request.City)
	assert.True(t, request.Arrival.Equal(it.Legs[0].Days[0].Date))
	// Checkout is the morning after the last day.
	assert.True(t, request.Departure.Equal(it.Legs[0].Days[2].Date.AddDate(0, 0, 1)))

	hotel, err := f.hotelRepo.GetByID(context.Background(), *it.Legs[0].HotelRef)
	require.NoError(t, err)
	assert.Equal(t, 120.0, hotel.Price)
}

func TestRefreshIsIdempotent(t *testing.T) {
	f := newRefreshFixture(t)
	it := f.itinerary(t, 2, 2)

	require.NoError(t, f.svc.Refresh(context.Background(), it, nil))
	taxiCalls, hotelCalls := f.taxiSupplier.calls(), f.hotelSupplier.calls()

	// Second pass with every slot filled makes no supplier calls.
	require.NoError(t, f.svc.Refresh(context.Background(), it, nil))
	assert.Equal(t, taxiCalls, f.taxiSupplier.calls())
	assert.Equal(t, hotelCalls, f.hotelSupplier.calls())
}

func TestRefreshDeletesStaleResources(t *testing.T) {
	f := newRefreshFixture(t)
	it := f.itinerary(t, 2, 2)

	staleTaxi := f.taxiRepo.add(50)
	staleHotel := f.hotelRepo.add(100)
	ch := &Changeset{Stale: []StaleResource{
		{Kind: models.ResourceKindTaxi, ID: staleTaxi},
		{Kind: models.ResourceKindHotel, ID: staleHotel},
	}}

	require.NoError(t, f.svc.Refresh(context.Background(), it, ch))

	assert.Contains(t, f.taxiRepo.deleted, staleTaxi)
	assert.Contains(t, f.hotelRepo.deleted, staleHotel)
	_, err := f.taxiRepo.GetByID(context.Background(), staleTaxi)
	assert.Error(t, err)
}

func TestRefreshSupplierFailureDegrades(t *testing.T) {
	f := newRefreshFixture(t)
	f.taxiSupplier.err = errors.New("supplier down")
	it := f.itinerary(t, 2, 2)

	err := f.svc.Refresh(context.Background(), it, nil)
	require.NoError(t, err)

	// The transport slot stays empty; hotels were unaffected.
	assert.Nil(t, it.Legs[1].Transport.Ref())
	assert.NotNil(t, it.Legs[0].HotelRef)
	assert.NotNil(t, it.Legs[1].HotelRef)
}

func TestRefreshNoOffersLeavesSlotEmpty(t *testing.T) {
	f := newRefreshFixture(t)
	f.hotelSupplier.offers = nil
	it := f.itinerary(t, 2)

	err := f.svc.Refresh(context.Background(), it, nil)
	require.NoError(t, err)
	assert.Nil(t, it.Legs[0].HotelRef)
}

func TestRefreshInternationalBracket(t *testing.T) {
	f := newRefreshFixture(t)
	it := f.itinerary(t, 2, 2)
	it.IncludeInternationalFlights = true

	require.NoError(t, f.svc.Refresh(context.Background(), it, nil))

	require.Len(t, it.InternationalFlights, 2)
	require.Equal(t, 2, f.flightSupplier.calls())

	outbound := f.flightSupplier.requests[0]
	assert.Equal(t, "LHR", outbound.Origin)
	assert.Equal(t, "NRT", outbound.Destination)
	assert.True(t, outbound.Date.Equal(it.StartDate))

	inbound := f.flightSupplier.requests[1]
	assert.Equal(t, "KIX", inbound.Origin)
	assert.Equal(t, "LHR", inbound.Destination)
	assert.True(t, inbound.Date.Equal(it.EndDate().AddDate(0, 0, 1)))

	flight, err := f.flightRepo.GetByID(context.Background(), it.InternationalFlights[0])
	require.NoError(t, err)
	assert.True(t, flight.International)

	// A second pass leaves the existing bracket alone.
	require.NoError(t, f.svc.Refresh(context.Background(), it, nil))
	assert.Equal(t, 2, f.flightSupplier.calls())
	assert.Len(t, it.InternationalFlights, 2)
}

func TestRefreshEdgesTouchedDropsBracket(t *testing.T) {
	f := newRefreshFixture(t)
	it := f.itinerary(t, 2, 2)
	it.IncludeInternationalFlights = true

	oldOut := f.flightRepo.add(500)
	oldBack := f.flightRepo.add(520)
	it.InternationalFlights = []primitive.ObjectID{oldOut, oldBack}

	require.NoError(t, f.svc.Refresh(context.Background(), it, &Changeset{EdgesTouched: true}))

	assert.Contains(t, f.flightRepo.deleted, oldOut)
	assert.Contains(t, f.flightRepo.deleted, oldBack)
	// A fresh bracket replaces the dropped one.
	require.Len(t, it.InternationalFlights, 2)
	assert.NotContains(t, it.InternationalFlights, oldOut)
}

func TestRefreshSkipsBracketWhenDisabled(t *testing.T) {
	f := newRefreshFixture(t)
	it := f.itinerary(t, 2)
	it.IncludeInternationalFlights = false

	require.NoError(t, f.svc.Refresh(context.Background(), it, nil))
	assert.Empty(t, it.InternationalFlights)
	assert.Equal(t, 0, f.flightSupplier.calls())
}

func TestRefreshFlightModeUsesFlightSupplier(t *testing.T) {
	f := newRefreshFixture(t)
	it := f.itinerary(t, 2, 2)
	it.Legs[1].Transport.SetMode(models.TransportModeFlight)

	require.NoError(t, f.svc.Refresh(context.Background(), it, nil))

	require.NotNil(t, it.Legs[1].Transport.FlightRef)
	assert.Nil(t, it.Legs[1].Transport.TaxiRef)
	assert.Equal(t, 1, f.flightSupplier.calls())
	assert.Equal(t, 0, f.taxiSupplier.calls())
}
