package services

import (
	"context"
	"testing"
	"time"

	"voyago/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mutationFixture struct {
	catalog *fakeCatalogRepo
	svc     MutationService
}

func newMutationFixture(t *testing.T) *mutationFixture {
	t.Helper()
	catalog := newFakeCatalogRepo()
	for _, name := range []string{"Tokyo", "Kyoto", "Osaka", "Nara"} {
		city := catalog.addCity(name, "NRT")
		catalog.addActivity(city.ID, name+" walking tour", 40)
		catalog.addActivity(city.ID, name+" museum", 25)
	}
	return &mutationFixture{
		catalog: catalog,
		svc:     NewMutationService(catalog, &fakeDraftGenerator{daysPerCity: 2}, testLogger()),
	}
}

func (f *mutationFixture) itinerary(t *testing.T, stays ...int) *models.Itinerary {
	t.Helper()
	names := []string{"Tokyo", "Kyoto", "Osaka", "Nara"}
	require.LessOrEqual(t, len(stays), len(names))

	it := &models.Itinerary{
		ID:        primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Rooms:     models.Rooms{Adults: 2, RoomCount: 1},
	}
	for i, stay := range stays {
		city := f.catalog.cities[names[i]]
		leg := models.CityLeg{
			ID:        primitive.NewObjectID(),
			CityID:    city.ID,
			CityName:  city.Name,
			Transport: models.NewTransportRef(models.TransportModeCar),
		}
		for d := 0; d < stay; d++ {
			leg.Days = append(leg.Days, models.Day{
				Activities: []models.ScheduledActivity{{
					ID:             primitive.NewObjectID(),
					Name:           "placeholder",
					PricePerPerson: 10,
				}},
			})
		}
		it.Legs = append(it.Legs, leg)
	}
	f.svc.RecalculateDates(it)
	return it
}

// seedRefs attaches fabricated transport and hotel references to every leg
// so invalidation has something to clear. The first leg gets a hotel only.
func seedRefs(it *models.Itinerary) (transportIDs, hotelIDs []primitive.ObjectID) {
	for i := range it.Legs {
		leg := &it.Legs[i]
		if i > 0 {
			id := primitive.NewObjectID()
			leg.Transport.SetRef(id)
			transportIDs = append(transportIDs, id)
		}
		id := primitive.NewObjectID()
		leg.HotelRef = &id
		hotelIDs = append(hotelIDs, id)
	}
	return transportIDs, hotelIDs
}

func assertNormalized(t *testing.T, it *models.Itinerary) {
	t.Helper()
	cursor := it.StartDate
	for i, leg := range it.Legs {
		assert.Equal(t, len(leg.Days), leg.StayDays, "leg %d stay days", i)
		for j, day := range leg.Days {
			assert.Equal(t, j+1, day.DayNumber, "leg %d day %d number", i, j)
			assert.True(t, day.Date.Equal(cursor), "leg %d day %d expected %s got %s", i, j, cursor, day.Date)
			cursor = cursor.AddDate(0, 0, 1)
		}
		if i+1 < len(it.Legs) {
			assert.Equal(t, it.Legs[i+1].CityName, leg.NextCity)
		} else {
			assert.Empty(t, leg.NextCity)
		}
	}
}

func staleIDs(ch *Changeset) map[primitive.ObjectID]models.ResourceKind {
	out := make(map[primitive.ObjectID]models.ResourceKind, len(ch.Stale))
	for _, s := range ch.Stale {
		out[s.ID] = s.Kind
	}
	return out
}

func TestAddCityInsertsAndRenumbers(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 3, 2)

	ch, err := f.svc.AddCity(context.Background(), it, 1, "Osaka")
	require.NoError(t, err)

	require.Len(t, it.Legs, 3)
	assert.Equal(t, "Osaka", it.Legs[1].CityName)
	assert.Equal(t, 7, it.TotalDays())
	assertNormalized(t, it)
	// The inserted leg shifts everything behind it, so the trip edges moved.
	assert.True(t, ch.EdgesTouched)
}

func TestAddCityAtEnd(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2)

	_, err := f.svc.AddCity(context.Background(), it, 1, "Kyoto")
	require.NoError(t, err)

	require.Len(t, it.Legs, 2)
	assert.Equal(t, "Kyoto", it.Legs[1].CityName)
	assert.Equal(t, "Kyoto", it.Legs[0].NextCity)
	assertNormalized(t, it)
}

func TestAddCityRejectsBadPosition(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2)

	_, err := f.svc.AddCity(context.Background(), it, 5, "Kyoto")
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = f.svc.AddCity(context.Background(), it, -1, "Kyoto")
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestAddCityUnknownCity(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2)

	_, err := f.svc.AddCity(context.Background(), it, 0, "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestDeleteCityCollectsRemovedResources(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 3, 2)
	transportIDs, hotelIDs := seedRefs(it)

	ch, err := f.svc.DeleteCity(context.Background(), it, 1)
	require.NoError(t, err)

	require.Len(t, it.Legs, 2)
	assert.Equal(t, 4, it.TotalDays())
	assertNormalized(t, it)

	stale := staleIDs(ch)
	// The removed leg's own transport and hotel are orphaned.
	assert.Contains(t, stale, transportIDs[0])
	assert.Contains(t, stale, hotelIDs[1])
	// The former third leg's inbound origin changed from Kyoto to Tokyo and
	// its dates shifted, so its references are stale too.
	assert.Contains(t, stale, transportIDs[1])
	assert.Contains(t, stale, hotelIDs[2])
	assert.Nil(t, it.Legs[1].Transport.Ref())
	assert.Nil(t, it.Legs[1].HotelRef)
	assert.True(t, ch.EdgesTouched)
}

func TestDeleteCityKeepsAtLeastOneLeg(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 3)

	_, err := f.svc.DeleteCity(context.Background(), it, 0)
	assert.ErrorIs(t, err, ErrLastLeg)
}

func TestReplaceCityKeepsStayLength(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 4)
	transportIDs, hotelIDs := seedRefs(it)

	ch, err := f.svc.ReplaceCity(context.Background(), it, 1, "Osaka")
	require.NoError(t, err)

	require.Len(t, it.Legs, 2)
	assert.Equal(t, "Osaka", it.Legs[1].CityName)
	assert.Equal(t, 4, it.Legs[1].StayDays)
	assert.Equal(t, 6, it.TotalDays())
	assertNormalized(t, it)

	stale := staleIDs(ch)
	assert.Contains(t, stale, transportIDs[0])
	assert.Contains(t, stale, hotelIDs[1])
	assert.Nil(t, it.Legs[1].Transport.Ref())
	assert.Nil(t, it.Legs[1].HotelRef)
	// The last leg was swapped out, so the international bracket is stale.
	assert.True(t, ch.EdgesTouched)
}

func TestAddDaysShiftsDownstreamLegs(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 2)
	transportIDs, hotelIDs := seedRefs(it)

	ch, err := f.svc.AddDays(context.Background(), it, 0, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, it.Legs[0].StayDays)
	assert.Equal(t, 6, it.TotalDays())
	assertNormalized(t, it)

	// New days carry the leisure placeholder.
	for _, day := range it.Legs[0].Days[2:] {
		require.Len(t, day.Activities, 1)
		assert.True(t, day.Activities[0].IsLeisure)
	}

	stale := staleIDs(ch)
	// Leg 0's stay window grew, so its hotel is stale; leg 1 shifted in
	// time, so both its references are stale.
	assert.Contains(t, stale, hotelIDs[0])
	assert.Contains(t, stale, transportIDs[0])
	assert.Contains(t, stale, hotelIDs[1])
	assert.True(t, ch.EdgesTouched)
}

func TestAddDaysRejectsZeroCount(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2)

	_, err := f.svc.AddDays(context.Background(), it, 0, 0)
	assert.ErrorIs(t, err, ErrInsufficientDays)
}

func TestDeleteDaysKeepsAtLeastOneDay(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 3)

	_, err := f.svc.DeleteDays(context.Background(), it, 0, 3)
	assert.ErrorIs(t, err, ErrInsufficientDays)

	ch, err := f.svc.DeleteDays(context.Background(), it, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, it.Legs[0].StayDays)
	assertNormalized(t, it)
	assert.True(t, ch.EdgesTouched)
}

func TestDeleteDaysLeavesUpstreamLegAlone(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 3)
	transportIDs, hotelIDs := seedRefs(it)

	ch, err := f.svc.DeleteDays(context.Background(), it, 1, 1)
	require.NoError(t, err)

	stale := staleIDs(ch)
	// Leg 0 is untouched: same window, same origin.
	assert.NotContains(t, stale, hotelIDs[0])
	assert.NotNil(t, it.Legs[0].HotelRef)
	// Leg 1 kept its first date and inbound origin but lost its last day.
	assert.Contains(t, stale, hotelIDs[1])
	assert.Contains(t, stale, transportIDs[0])
}

func TestChangeTransportModeDropsOldReference(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 2)
	transportIDs, _ := seedRefs(it)

	ch, err := f.svc.ChangeTransportMode(context.Background(), it, 1, models.TransportModeFerry)
	require.NoError(t, err)

	assert.Equal(t, models.TransportModeFerry, it.Legs[1].Transport.Mode)
	assert.Nil(t, it.Legs[1].Transport.Ref())
	stale := staleIDs(ch)
	assert.Equal(t, models.ResourceKindTaxi, stale[transportIDs[0]])
	// Dates did not move; the international bracket survives.
	assert.False(t, ch.EdgesTouched)
}

func TestChangeTransportModeRejectsUnknownMode(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 2)

	_, err := f.svc.ChangeTransportMode(context.Background(), it, 1, models.TransportMode("teleport"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestReplaceActivityKeepsSlotIdentity(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2)
	slot := it.Legs[0].Days[0].Activities[0]

	city := f.catalog.cities["Tokyo"]
	replacement := f.catalog.addActivity(city.ID, "Tea ceremony", 80)

	ch, err := f.svc.ReplaceActivity(context.Background(), it, slot.ID, replacement.ID)
	require.NoError(t, err)

	updated := it.Legs[0].Days[0].Activities[0]
	assert.Equal(t, slot.ID, updated.ID)
	assert.Equal(t, replacement.ID, updated.ActivityID)
	assert.Equal(t, "Tea ceremony", updated.Name)
	assert.Equal(t, 80.0, updated.PricePerPerson)
	// Activity swaps never touch transport or hotels.
	assert.Empty(t, ch.Stale)
	assert.False(t, ch.EdgesTouched)
}

func TestReplaceActivityUnknownSlot(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2)

	_, err := f.svc.ReplaceActivity(context.Background(), it, primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestReplaceWithLeisureSubstitutesPlaceholder(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2)
	slot := it.Legs[0].Days[0].Activities[0]

	_, err := f.svc.ReplaceWithLeisure(context.Background(), it, slot.ID)
	require.NoError(t, err)

	updated := it.Legs[0].Days[0].Activities[0]
	assert.Equal(t, slot.ID, updated.ID)
	assert.True(t, updated.IsLeisure)
	assert.Zero(t, updated.PricePerPerson)
	require.Len(t, it.Legs[0].Days[0].Activities, 1)
}

func TestUpdateDetailsStartDateShiftInvalidatesAll(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 2)
	transportIDs, hotelIDs := seedRefs(it)

	newStart := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	ch, err := f.svc.UpdateDetails(context.Background(), it, &newStart, "", nil)
	require.NoError(t, err)

	assert.True(t, it.StartDate.Equal(newStart))
	assertNormalized(t, it)

	stale := staleIDs(ch)
	assert.Contains(t, stale, transportIDs[0])
	assert.Contains(t, stale, hotelIDs[0])
	assert.Contains(t, stale, hotelIDs[1])
	assert.True(t, ch.EdgesTouched)
}

func TestUpdateDetailsPartyChangeInvalidatesAll(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 2)
	transportIDs, hotelIDs := seedRefs(it)

	rooms := &models.Rooms{Adults: 3, Children: 1, ChildAges: []int{7}, RoomCount: 2}
	ch, err := f.svc.UpdateDetails(context.Background(), it, nil, "family", rooms)
	require.NoError(t, err)

	assert.Equal(t, "family", it.TravellingWith)
	assert.Equal(t, 4, it.Rooms.Travellers())

	stale := staleIDs(ch)
	for _, id := range transportIDs {
		assert.Contains(t, stale, id)
	}
	for _, id := range hotelIDs {
		assert.Contains(t, stale, id)
	}
	for i := range it.Legs {
		assert.Nil(t, it.Legs[i].Transport.Ref())
		assert.Nil(t, it.Legs[i].HotelRef)
	}
	assert.True(t, ch.EdgesTouched)
}

func TestUpdateDetailsTravellingWithOnlyKeepsResources(t *testing.T) {
	f := newMutationFixture(t)
	it := f.itinerary(t, 2, 2)
	seedRefs(it)

	ch, err := f.svc.UpdateDetails(context.Background(), it, nil, "friends", nil)
	require.NoError(t, err)

	assert.Empty(t, ch.Stale)
	assert.False(t, ch.EdgesTouched)
	assert.NotNil(t, it.Legs[1].Transport.Ref())
	assert.NotNil(t, it.Legs[0].HotelRef)
}

func TestBuildLegFillsEmptyDaysWithLeisure(t *testing.T) {
	catalog := newFakeCatalogRepo()
	city := catalog.addCity("Sapporo", "CTS")
	catalog.addActivity(city.ID, "Snow festival", 30)
	svc := NewMutationService(catalog, &fakeDraftGenerator{daysPerCity: 3}, testLogger())

	leg, err := svc.BuildLeg(context.Background(), city)
	require.NoError(t, err)

	assert.Equal(t, 3, leg.StayDays)
	require.Len(t, leg.Days, 3)
	// The single catalog activity lands in day one; later days fall back to
	// the leisure placeholder.
	assert.False(t, leg.Days[0].Activities[0].IsLeisure)
	assert.True(t, leg.Days[1].Activities[0].IsLeisure)
	assert.True(t, leg.Days[2].Activities[0].IsLeisure)
	assert.Equal(t, models.TransportModeCar, leg.Transport.Mode)
}
