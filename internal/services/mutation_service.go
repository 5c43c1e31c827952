package services

import (
	"context"
	"fmt"
	"time"

	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"
	"voyago/internal/utils"
	"voyago/pkg/draft"
	"voyago/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StaleResource identifies a priced sub-resource whose owning slot was
// invalidated by a mutation. The refresh pass deletes it from storage.
type StaleResource struct {
	Kind models.ResourceKind
	ID   primitive.ObjectID
}

// Changeset is what a tree mutation hands to the Resource Refresh
// Coordinator: the sub-resources it orphaned and whether the trip's
// edges moved (which invalidates the international bracket).
type Changeset struct {
	Stale        []StaleResource
	EdgesTouched bool
}

func (c *Changeset) addStale(kind models.ResourceKind, id *primitive.ObjectID) {
	if id == nil {
		return
	}
	c.Stale = append(c.Stale, StaleResource{Kind: kind, ID: *id})
}

// MutationService implements the structural edits on the city/day/activity
// tree. Every operation returns with dates and day numbers normalized and
// makes no supplier calls; re-pricing happens downstream.
type MutationService interface {
	AddCity(ctx context.Context, itinerary *models.Itinerary, position int, cityName string) (*Changeset, error)
	DeleteCity(ctx context.Context, itinerary *models.Itinerary, index int) (*Changeset, error)
	ReplaceCity(ctx context.Context, itinerary *models.Itinerary, index int, cityName string) (*Changeset, error)
	AddDays(ctx context.Context, itinerary *models.Itinerary, legIndex, count int) (*Changeset, error)
	DeleteDays(ctx context.Context, itinerary *models.Itinerary, legIndex, count int) (*Changeset, error)
	ReplaceActivity(ctx context.Context, itinerary *models.Itinerary, scheduledID, newActivityID primitive.ObjectID) (*Changeset, error)
	ReplaceWithLeisure(ctx context.Context, itinerary *models.Itinerary, scheduledID primitive.ObjectID) (*Changeset, error)
	ChangeTransportMode(ctx context.Context, itinerary *models.Itinerary, legIndex int, newMode models.TransportMode) (*Changeset, error)
	UpdateDetails(ctx context.Context, itinerary *models.Itinerary, newStartDate *time.Time, travellingWith string, rooms *models.Rooms) (*Changeset, error)

	// BuildLeg seeds a single-city leg from the draft generator's output;
	// also used when assembling a fresh itinerary from a draft tree.
	BuildLeg(ctx context.Context, city *models.City) (*models.CityLeg, error)
	RecalculateDates(itinerary *models.Itinerary)
}

type mutationService struct {
	catalogRepo interfaces.CatalogRepository
	draftGen    draft.Generator
	logger      *logger.Logger
}

func NewMutationService(catalogRepo interfaces.CatalogRepository, draftGen draft.Generator, log *logger.Logger) MutationService {
	return &mutationService{
		catalogRepo: catalogRepo,
		draftGen:    draftGen,
		logger:      log,
	}
}

// legFingerprint captures the parts of a leg's context that priced
// sub-resources depend on: the stay window and the inbound origin city.
type legFingerprint struct {
	firstDate time.Time
	lastDate  time.Time
	prevCity  string
}

type treeSnapshot struct {
	fingerprints map[primitive.ObjectID]legFingerprint
	firstLegID   primitive.ObjectID
	lastLegID    primitive.ObjectID
}

func snapshotTree(it *models.Itinerary) treeSnapshot {
	snap := treeSnapshot{fingerprints: make(map[primitive.ObjectID]legFingerprint, len(it.Legs))}
	prevCity := ""
	for i := range it.Legs {
		leg := &it.Legs[i]
		fp := legFingerprint{prevCity: prevCity}
		if d := leg.FirstDay(); d != nil {
			fp.firstDate = d.Date
		}
		if d := leg.LastDay(); d != nil {
			fp.lastDate = d.Date
		}
		snap.fingerprints[leg.ID] = fp
		prevCity = leg.CityName
	}
	if len(it.Legs) > 0 {
		snap.firstLegID = it.Legs[0].ID
		snap.lastLegID = it.Legs[len(it.Legs)-1].ID
	}
	return snap
}

// applyInvalidation compares the normalized tree against the pre-mutation
// snapshot and clears every reference whose owning context changed:
// transport when the stay window or the inbound origin moved, hotel when
// the stay window moved. Cleared ids are collected for deletion.
func (s *mutationService) applyInvalidation(it *models.Itinerary, before treeSnapshot) *Changeset {
	ch := &Changeset{}
	prevCity := ""
	for i := range it.Legs {
		leg := &it.Legs[i]

		var datesChanged, originChanged bool
		fp, existed := before.fingerprints[leg.ID]
		if !existed {
			datesChanged, originChanged = true, true
		} else {
			var first, last time.Time
			if d := leg.FirstDay(); d != nil {
				first = d.Date
			}
			if d := leg.LastDay(); d != nil {
				last = d.Date
			}
			datesChanged = !fp.firstDate.Equal(first) || !fp.lastDate.Equal(last)
			originChanged = fp.prevCity != prevCity
		}

		if datesChanged || originChanged {
			ch.addStale(leg.Transport.Mode.ResourceKind(), leg.Transport.Ref())
			leg.Transport.Clear()
		}
		if datesChanged {
			ch.addStale(models.ResourceKindHotel, leg.HotelRef)
			leg.HotelRef = nil
		}
		if (datesChanged || originChanged) && (i == 0 || i == len(it.Legs)-1) {
			ch.EdgesTouched = true
		}
		prevCity = leg.CityName
	}

	if len(it.Legs) > 0 {
		if it.Legs[0].ID != before.firstLegID || it.Legs[len(it.Legs)-1].ID != before.lastLegID {
			ch.EdgesTouched = true
		}
	}
	return ch
}

func (s *mutationService) AddCity(ctx context.Context, it *models.Itinerary, position int, cityName string) (*Changeset, error) {
	if position < 0 || position > len(it.Legs) {
		return nil, ErrInvalidPosition
	}

	city, err := s.catalogRepo.GetCityByName(ctx, cityName)
	if err != nil {
		return nil, ErrCityNotFound
	}

	leg, err := s.BuildLeg(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to seed leg for %s: %w", cityName, err)
	}

	before := snapshotTree(it)
	it.Legs = append(it.Legs, models.CityLeg{})
	copy(it.Legs[position+1:], it.Legs[position:])
	it.Legs[position] = *leg
	s.RecalculateDates(it)

	return s.applyInvalidation(it, before), nil
}

func (s *mutationService) DeleteCity(ctx context.Context, it *models.Itinerary, index int) (*Changeset, error) {
	if len(it.Legs) <= 1 {
		return nil, ErrLastLeg
	}
	if index < 0 || index >= len(it.Legs) {
		return nil, ErrInvalidLegIndex
	}

	before := snapshotTree(it)
	removed := it.Legs[index]
	it.Legs = append(it.Legs[:index], it.Legs[index+1:]...)
	s.RecalculateDates(it)

	ch := s.applyInvalidation(it, before)
	ch.addStale(removed.Transport.Mode.ResourceKind(), removed.Transport.Ref())
	ch.addStale(models.ResourceKindHotel, removed.HotelRef)
	return ch, nil
}

func (s *mutationService) ReplaceCity(ctx context.Context, it *models.Itinerary, index int, cityName string) (*Changeset, error) {
	if index < 0 || index >= len(it.Legs) {
		return nil, ErrInvalidLegIndex
	}

	city, err := s.catalogRepo.GetCityByName(ctx, cityName)
	if err != nil {
		return nil, ErrCityNotFound
	}

	leg, err := s.BuildLeg(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("failed to seed leg for %s: %w", cityName, err)
	}

	// Trip length is unaffected: the replacement keeps the stay length of
	// the leg it displaces.
	if err := s.resizeLeg(ctx, leg, it.Legs[index].StayDays); err != nil {
		return nil, err
	}

	before := snapshotTree(it)
	removed := it.Legs[index]
	leg.Transport.Mode = removed.Transport.Mode
	it.Legs[index] = *leg
	s.RecalculateDates(it)

	ch := s.applyInvalidation(it, before)
	ch.addStale(removed.Transport.Mode.ResourceKind(), removed.Transport.Ref())
	ch.addStale(models.ResourceKindHotel, removed.HotelRef)
	return ch, nil
}

func (s *mutationService) AddDays(ctx context.Context, it *models.Itinerary, legIndex, count int) (*Changeset, error) {
	if legIndex < 0 || legIndex >= len(it.Legs) {
		return nil, ErrInvalidLegIndex
	}
	if count < 1 {
		return nil, ErrInsufficientDays
	}

	leg := &it.Legs[legIndex]
	leisure, err := s.catalogRepo.GetLeisureActivity(ctx, leg.CityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leisure placeholder: %w", err)
	}

	before := snapshotTree(it)
	for i := 0; i < count; i++ {
		leg.Days = append(leg.Days, models.Day{
			Activities: []models.ScheduledActivity{models.ScheduleActivity(leisure)},
		})
	}
	s.RecalculateDates(it)

	return s.applyInvalidation(it, before), nil
}

func (s *mutationService) DeleteDays(ctx context.Context, it *models.Itinerary, legIndex, count int) (*Changeset, error) {
	if legIndex < 0 || legIndex >= len(it.Legs) {
		return nil, ErrInvalidLegIndex
	}
	leg := &it.Legs[legIndex]
	if count < 1 || len(leg.Days)-count < 1 {
		return nil, ErrInsufficientDays
	}

	before := snapshotTree(it)
	leg.Days = leg.Days[:len(leg.Days)-count]
	s.RecalculateDates(it)

	return s.applyInvalidation(it, before), nil
}

func (s *mutationService) ReplaceActivity(ctx context.Context, it *models.Itinerary, scheduledID, newActivityID primitive.ObjectID) (*Changeset, error) {
	li, di, ai, ok := it.FindScheduledActivity(scheduledID)
	if !ok {
		return nil, ErrActivityNotFound
	}

	activity, err := s.catalogRepo.GetActivity(ctx, newActivityID)
	if err != nil {
		return nil, ErrActivityNotFound
	}

	it.Legs[li].Days[di].Activities[ai].ApplyCatalogActivity(activity)
	return &Changeset{}, nil
}

func (s *mutationService) ReplaceWithLeisure(ctx context.Context, it *models.Itinerary, scheduledID primitive.ObjectID) (*Changeset, error) {
	li, di, ai, ok := it.FindScheduledActivity(scheduledID)
	if !ok {
		return nil, ErrActivityNotFound
	}

	// A day never holds zero activities; "delete" substitutes the city's
	// leisure placeholder instead.
	leisure, err := s.catalogRepo.GetLeisureActivity(ctx, it.Legs[li].CityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leisure placeholder: %w", err)
	}

	it.Legs[li].Days[di].Activities[ai].ApplyCatalogActivity(leisure)
	return &Changeset{}, nil
}

func (s *mutationService) ChangeTransportMode(ctx context.Context, it *models.Itinerary, legIndex int, newMode models.TransportMode) (*Changeset, error) {
	if legIndex < 0 || legIndex >= len(it.Legs) {
		return nil, ErrInvalidLegIndex
	}
	if !newMode.Valid() {
		return nil, ErrInvalidMode
	}

	leg := &it.Legs[legIndex]
	ch := &Changeset{}
	ch.addStale(leg.Transport.Mode.ResourceKind(), leg.Transport.Ref())
	leg.Transport.SetMode(newMode)
	return ch, nil
}

func (s *mutationService) UpdateDetails(ctx context.Context, it *models.Itinerary, newStartDate *time.Time, travellingWith string, rooms *models.Rooms) (*Changeset, error) {
	before := snapshotTree(it)

	if newStartDate != nil {
		it.StartDate = utils.StartOfDay(newStartDate.UTC())
	}
	if travellingWith != "" {
		it.TravellingWith = travellingWith
	}
	partyChanged := false
	if rooms != nil {
		partyChanged = true
		it.Rooms = *rooms
	}

	s.RecalculateDates(it)
	ch := s.applyInvalidation(it, before)

	// Every fetched offer was priced for the previous party composition.
	if partyChanged {
		for i := range it.Legs {
			leg := &it.Legs[i]
			ch.addStale(leg.Transport.Mode.ResourceKind(), leg.Transport.Ref())
			leg.Transport.Clear()
			ch.addStale(models.ResourceKindHotel, leg.HotelRef)
			leg.HotelRef = nil
		}
		ch.EdgesTouched = true
	}
	return ch, nil
}

func (s *mutationService) BuildLeg(ctx context.Context, city *models.City) (*models.CityLeg, error) {
	catalog, err := s.catalogRepo.GetActivitiesByCity(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities for %s: %w", city.Name, err)
	}

	byID := make(map[string]*models.Activity, len(catalog))
	ids := make([]string, 0, len(catalog))
	for _, a := range catalog {
		if a.IsLeisure || !a.Active {
			continue
		}
		byID[a.ID.Hex()] = a
		ids = append(ids, a.ID.Hex())
	}

	tree, err := s.draftGen.Generate(ctx, []string{city.Name}, map[string][]string{city.Name: ids})
	if err != nil {
		return nil, fmt.Errorf("draft generation failed: %w", err)
	}

	leisure, err := s.catalogRepo.GetLeisureActivity(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leisure placeholder: %w", err)
	}

	leg := &models.CityLeg{
		ID:        primitive.NewObjectID(),
		CityID:    city.ID,
		CityName:  city.Name,
		Transport: models.NewTransportRef(models.TransportModeCar),
	}
	for _, draftDay := range tree.Legs[0].Days {
		day := models.Day{}
		for _, hex := range draftDay.Activities {
			if a, ok := byID[hex]; ok {
				day.Activities = append(day.Activities, models.ScheduleActivity(a))
			} else {
				s.logger.WithField("activity_id", hex).Warn("draft generator returned unknown activity; skipping")
			}
		}
		if len(day.Activities) == 0 {
			day.Activities = append(day.Activities, models.ScheduleActivity(leisure))
		}
		leg.Days = append(leg.Days, day)
	}
	if len(leg.Days) == 0 {
		leg.Days = []models.Day{{Activities: []models.ScheduledActivity{models.ScheduleActivity(leisure)}}}
	}
	leg.StayDays = len(leg.Days)
	return leg, nil
}

// resizeLeg trims or pads a freshly seeded leg to the requested stay
// length; padding days get the leisure placeholder.
func (s *mutationService) resizeLeg(ctx context.Context, leg *models.CityLeg, stayDays int) error {
	if stayDays < 1 {
		stayDays = 1
	}
	if len(leg.Days) > stayDays {
		leg.Days = leg.Days[:stayDays]
	}
	if len(leg.Days) < stayDays {
		leisure, err := s.catalogRepo.GetLeisureActivity(ctx, leg.CityID)
		if err != nil {
			return fmt.Errorf("failed to load leisure placeholder: %w", err)
		}
		for len(leg.Days) < stayDays {
			leg.Days = append(leg.Days, models.Day{
				Activities: []models.ScheduledActivity{models.ScheduleActivity(leisure)},
			})
		}
	}
	leg.StayDays = len(leg.Days)
	return nil
}

// RecalculateDates is the shared normalization pass: starting from the
// itinerary's anchor date it walks legs in order, assigns one calendar
// day per day slot, renumbers days 1-based within each leg, and rewires
// each leg's next-city pointer.
func (s *mutationService) RecalculateDates(it *models.Itinerary) {
	cursor := utils.StartOfDay(it.StartDate.UTC())
	for i := range it.Legs {
		leg := &it.Legs[i]
		for j := range leg.Days {
			leg.Days[j].DayNumber = j + 1
			leg.Days[j].Date = cursor
			cursor = cursor.AddDate(0, 0, 1)
		}
		leg.StayDays = len(leg.Days)
		if i+1 < len(it.Legs) {
			leg.NextCity = it.Legs[i+1].CityName
		} else {
			leg.NextCity = ""
		}
	}
}
