package services

import (
	"context"
	"testing"
	"time"

	"voyago/internal/config"
	"voyago/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type itineraryFixture struct {
	itinRepo     *fakeItineraryRepo
	flightRepo   *fakeFlightRepo
	taxiRepo     *fakeTaxiRepo
	ferryRepo    *fakeFerryRepo
	hotelRepo    *fakeHotelRepo
	catalog      *fakeCatalogRepo
	leadRepo     *fakeLeadRepo
	discountRepo *fakeDiscountRepo
	usageRepo    *fakeUsageRepo

	taxiSupplier  *fakeSupplier
	hotelSupplier *fakeHotelSupplier

	destination *models.Destination
	svc         ItineraryService
}

func newItineraryFixture(t *testing.T) *itineraryFixture {
	t.Helper()
	f := &itineraryFixture{
		itinRepo:     newFakeItineraryRepo(),
		flightRepo:   newFakeFlightRepo(),
		taxiRepo:     newFakeTaxiRepo(),
		ferryRepo:    newFakeFerryRepo(),
		hotelRepo:    newFakeHotelRepo(),
		catalog:      newFakeCatalogRepo(),
		leadRepo:     &fakeLeadRepo{},
		discountRepo: newFakeDiscountRepo(),
		usageRepo:    &fakeUsageRepo{},

		taxiSupplier:  &fakeSupplier{offers: singleOffer(80, "cabco")},
		hotelSupplier: &fakeHotelSupplier{offers: singleOffer(150, "hotelco")},
	}
	f.destination = f.catalog.addDestination(0)
	tokyo := f.catalog.addCity("Tokyo", "NRT")
	kyoto := f.catalog.addCity("Kyoto", "KIX")
	f.catalog.addActivity(tokyo.ID, "Tokyo tour", 30)
	f.catalog.addActivity(kyoto.ID, "Kyoto temples", 20)

	log := testLogger()
	flightSupplier := &fakeSupplier{offers: singleOffer(500, "airline")}
	ferrySupplier := &fakeSupplier{offers: singleOffer(40, "ferryco")}

	mutationSvc := NewMutationService(f.catalog, &fakeDraftGenerator{daysPerCity: 2}, log)
	refreshSvc := NewRefreshService(
		flightSupplier, f.taxiSupplier, ferrySupplier, f.hotelSupplier,
		f.flightRepo, f.taxiRepo, f.ferryRepo, f.hotelRepo, f.catalog,
		time.Second, log,
	)
	discountSvc := NewDiscountService(f.discountRepo, f.usageRepo, f.itinRepo, log)
	pricingSvc := NewPricingService(
		f.flightRepo, f.taxiRepo, f.ferryRepo, f.hotelRepo, f.catalog,
		discountSvc, &config.PricingConfig{
			FlightMarkupPercent: 10,
			TaxiMarkupPercent:   10,
			FerryMarkupPercent:  10,
			StayMarkupPercent:   10,
			ServiceFee:          50,
			TaxRate:             0.18,
		}, log,
	)
	f.svc = NewItineraryService(
		f.itinRepo, f.flightRepo, f.taxiRepo, f.ferryRepo, f.hotelRepo,
		f.catalog, f.leadRepo,
		mutationSvc, refreshSvc, pricingSvc, discountSvc,
		log,
	)
	return f
}

func (f *itineraryFixture) create(t *testing.T, userID primitive.ObjectID) *models.Itinerary {
	t.Helper()
	it, err := f.svc.Create(context.Background(), userID, &models.CreateItineraryRequest{
		Title:          "Japan in autumn",
		Origin:         "LHR",
		DestinationID:  f.destination.ID.Hex(),
		Cities:         []string{"Tokyo", "Kyoto"},
		StartDate:      "2026-09-01",
		TravellingWith: "partner",
		Rooms:          models.Rooms{Adults: 2, RoomCount: 1},
	})
	require.NoError(t, err)
	return it
}

func TestCreateBuildsRefreshesAndPrices(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()

	it := f.create(t, userID)

	require.Len(t, it.Legs, 2)
	assert.Equal(t, "Tokyo", it.Legs[0].CityName)
	assert.Equal(t, "Kyoto", it.Legs[1].CityName)
	assert.Equal(t, int64(1), it.Version)
	assert.Equal(t, 4, it.TotalDays())
	assert.True(t, it.StartDate.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))

	// Both hotel slots and the inbound taxi were fetched and priced.
	assert.NotNil(t, it.Legs[0].HotelRef)
	assert.NotNil(t, it.Legs[1].HotelRef)
	assert.NotNil(t, it.Legs[1].Transport.Ref())
	assert.Greater(t, it.GrandTotal, 0.0)

	stored, err := f.itinRepo.GetByID(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Equal(t, it.GrandTotal, stored.GrandTotal)

	require.Len(t, f.leadRepo.leads, 1)
	assert.Equal(t, userID, f.leadRepo.leads[0].UserID)
	assert.Equal(t, it.ID, f.leadRepo.leads[0].ItineraryID)
}

func TestCreateUnknownDestination(t *testing.T) {
	f := newItineraryFixture(t)
	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), &models.CreateItineraryRequest{
		Origin:        "LHR",
		DestinationID: primitive.NewObjectID().Hex(),
		Cities:        []string{"Tokyo"},
		StartDate:     "2026-09-01",
		Rooms:         models.Rooms{Adults: 1, RoomCount: 1},
	})
	assert.Error(t, err)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newItineraryFixture(t)
	owner := primitive.NewObjectID()
	it := f.create(t, owner)

	got, err := f.svc.Get(context.Background(), it.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, it.ID, got.ID)

	_, err = f.svc.Get(context.Background(), it.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.svc.Get(context.Background(), primitive.NewObjectID(), owner)
	assert.ErrorIs(t, err, ErrItineraryNotFound)
}

func TestMutationBumpsVersionAndSnapshots(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	updated, err := f.svc.AddDays(context.Background(), it.ID, userID, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, 5, updated.TotalDays())

	versions, total, err := f.svc.GetVersions(context.Background(), it.ID, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, versions, 1)
	assert.Equal(t, int64(1), versions[0].Version)
	assert.Equal(t, 4, versions[0].Snapshot.TotalDays())
}

func TestMutationRetriesOnStaleWrite(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	f.itinRepo.staleWrites = 2
	savesBefore := f.itinRepo.saves

	updated, err := f.svc.AddDays(context.Background(), it.ID, userID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	// Two rejected attempts plus the one that landed.
	assert.Equal(t, savesBefore+3, f.itinRepo.saves)
}

func TestMutationGivesUpAfterRetryBudget(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	f.itinRepo.staleWrites = saveRetries

	_, err := f.svc.AddDays(context.Background(), it.ID, userID, 0, 1)
	assert.ErrorIs(t, err, ErrStaleWrite)
}

func TestMutationValidationLeavesStateUntouched(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	_, err := f.svc.DeleteDays(context.Background(), it.ID, userID, 0, 10)
	assert.ErrorIs(t, err, ErrInsufficientDays)

	stored, err := f.itinRepo.GetByID(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.Equal(t, 4, stored.TotalDays())
}

func TestAddThenDeleteDaysRestoresDatesAndPrice(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	collectDates := func(it *models.Itinerary) [][]time.Time {
		var out [][]time.Time
		for i := range it.Legs {
			var dates []time.Time
			for j := range it.Legs[i].Days {
				dates = append(dates, it.Legs[i].Days[j].Date)
			}
			out = append(out, dates)
		}
		return out
	}
	originalDates := collectDates(it)

	grown, err := f.svc.AddDays(context.Background(), it.ID, userID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, it.TotalDays()+2, grown.TotalDays())

	restored, err := f.svc.DeleteDays(context.Background(), grown.ID, userID, 0, 2)
	require.NoError(t, err)

	// Growing and shrinking the same leg by the same amount lands the
	// trip back on its original shape, dates and totals.
	assert.Equal(t, it.TotalDays(), restored.TotalDays())
	assert.Equal(t, originalDates, collectDates(restored))
	assert.InDelta(t, it.TotalPrice, restored.TotalPrice, 1e-9)
	assert.InDelta(t, it.GrandTotal, restored.GrandTotal, 1e-9)
	assert.Equal(t, int64(3), restored.Version)
}

func TestApplyCouponRedeemsOnce(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	coupon := f.discountRepo.add(&models.Discount{
		Code:               "SAVE10",
		DiscountType:       models.DiscountTypeGeneral,
		ApplicableOn:       models.ApplicableOn{Package: true},
		DiscountPercentage: 10,
		NoLimit:            true,
		NoOfUsesPerUser:    1,
		Active:             true,
	})

	updated, err := f.svc.ApplyCoupon(context.Background(), it.ID, userID, coupon.ID)
	require.NoError(t, err)

	assert.True(t, updated.HasDiscount(coupon.ID))
	assert.Greater(t, updated.GeneralDiscount, 0.0)
	assert.Less(t, updated.TotalPrice, it.TotalPrice)
	require.Len(t, f.usageRepo.rows, 1)

	_, err = f.svc.ApplyCoupon(context.Background(), updated.ID, userID, coupon.ID)
	assert.ErrorIs(t, err, ErrDiscountAlreadyApplied)
	assert.Len(t, f.usageRepo.rows, 1)
}

func TestApplyCouponRetryRecordsSingleUsage(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	coupon := f.discountRepo.add(&models.Discount{
		Code:               "ONCE10",
		DiscountType:       models.DiscountTypeGeneral,
		ApplicableOn:       models.ApplicableOn{Package: true},
		DiscountPercentage: 10,
		NoLimit:            true,
		NoOfUsesPerUser:    1,
		Active:             true,
	})

	// A concurrent write rejects the first save; the retried application
	// must still succeed and leave exactly one ledger row behind.
	f.itinRepo.staleWrites = 1

	updated, err := f.svc.ApplyCoupon(context.Background(), it.ID, userID, coupon.ID)
	require.NoError(t, err)

	assert.True(t, updated.HasDiscount(coupon.ID))
	assert.Greater(t, updated.GeneralDiscount, 0.0)
	require.Len(t, f.usageRepo.rows, 1)
	assert.Equal(t, updated.ID, f.usageRepo.rows[0].ItineraryID)
}

func TestApplyCouponRejectsCouponlessType(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	auto := f.discountRepo.add(&models.Discount{
		Code:               "AUTO",
		DiscountType:       models.DiscountTypeCouponless,
		ApplicableOn:       models.ApplicableOn{Package: true},
		DiscountPercentage: 5,
		Active:             true,
	})

	_, err := f.svc.ApplyCoupon(context.Background(), it.ID, userID, auto.ID)
	assert.ErrorIs(t, err, ErrDiscountNotGeneral)
}

func TestApplyCouponRejectsInactive(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	expired := f.discountRepo.add(&models.Discount{
		Code:               "EXPIRED",
		DiscountType:       models.DiscountTypeGeneral,
		ApplicableOn:       models.ApplicableOn{Package: true},
		DiscountPercentage: 10,
		Active:             true,
		ValidUntil:         time.Now().Add(-time.Hour),
	})

	_, err := f.svc.ApplyCoupon(context.Background(), it.ID, userID, expired.ID)
	assert.ErrorIs(t, err, ErrDiscountInactive)
}

func TestApplyCouponRejectsWrongDestination(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	otherDest := primitive.NewObjectID()
	coupon := f.discountRepo.add(&models.Discount{
		Code:               "ELSEWHERE",
		DiscountType:       models.DiscountTypeGeneral,
		ApplicableOn:       models.ApplicableOn{Package: true},
		DiscountPercentage: 10,
		DestinationID:      &otherDest,
		Active:             true,
	})

	_, err := f.svc.ApplyCoupon(context.Background(), it.ID, userID, coupon.ID)
	assert.ErrorIs(t, err, ErrDiscountInactive)
}

func TestDeleteCascadesOwnedResources(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	it := f.create(t, userID)

	taxiID := *it.Legs[1].Transport.Ref()
	hotelIDs := []primitive.ObjectID{*it.Legs[0].HotelRef, *it.Legs[1].HotelRef}

	require.NoError(t, f.svc.Delete(context.Background(), it.ID, userID))

	_, err := f.itinRepo.GetByID(context.Background(), it.ID)
	assert.Error(t, err)
	assert.Contains(t, f.taxiRepo.deleted, taxiID)
	for _, id := range hotelIDs {
		assert.Contains(t, f.hotelRepo.deleted, id)
	}
}

func TestDeleteRejectsForeignUser(t *testing.T) {
	f := newItineraryFixture(t)
	owner := primitive.NewObjectID()
	it := f.create(t, owner)

	err := f.svc.Delete(context.Background(), it.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.itinRepo.GetByID(context.Background(), it.ID)
	assert.NoError(t, err)
}

func TestRepriceKeepsNewUserCouponlessDiscount(t *testing.T) {
	f := newItineraryFixture(t)
	f.discountRepo.add(&models.Discount{
		Code:               "FIRSTTRIP",
		DiscountType:       models.DiscountTypeCouponless,
		UserType:           models.DiscountUserNew,
		ApplicableOn:       models.ApplicableOn{Hotels: true},
		DiscountPercentage: 10,
		NoLimit:            true,
		Active:             true,
	})
	userID := primitive.NewObjectID()
	created := f.create(t, userID)
	require.Greater(t, created.CouponlessDiscount, 0.0)

	// The user's only trip is the one being repriced, so the new-user
	// discount must not disappear between recomputes.
	stored, err := f.itinRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.Reprice(context.Background(), stored))

	assert.InDelta(t, created.CouponlessDiscount, stored.CouponlessDiscount, 1e-9)
	assert.InDelta(t, created.GrandTotal, stored.GrandTotal, 1e-9)
}

func TestRepriceRefetchesAndSaves(t *testing.T) {
	f := newItineraryFixture(t)
	userID := primitive.NewObjectID()
	created := f.create(t, userID)

	// Simulate the overnight price drift: the stored taxi reference goes
	// away, so the next refresh fetches a new offer at the current price.
	stored, err := f.itinRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	oldTaxi := *stored.Legs[1].Transport.Ref()
	require.NoError(t, f.taxiRepo.Delete(context.Background(), oldTaxi))
	stored.Legs[1].Transport.Clear()
	f.taxiSupplier.offers = singleOffer(200, "cabco")

	require.NoError(t, f.svc.Reprice(context.Background(), stored))

	assert.Equal(t, int64(2), stored.Version)
	assert.Greater(t, stored.TaxiTotal, created.TaxiTotal)

	persisted, err := f.itinRepo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.GrandTotal, persisted.GrandTotal)
}
