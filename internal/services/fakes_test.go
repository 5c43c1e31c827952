package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"voyago/internal/models"
	"voyago/internal/utils"
	"voyago/pkg/draft"
	"voyago/pkg/logger"
	"voyago/pkg/suppliers"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	if err != nil {
		panic(err)
	}
	return log
}

var errFakeNotFound = errors.New("not found")

// ---- catalog ----

type fakeCatalogRepo struct {
	mu           sync.Mutex
	destinations map[primitive.ObjectID]*models.Destination
	cities       map[string]*models.City
	activities   map[primitive.ObjectID]*models.Activity
	leisure      map[primitive.ObjectID]*models.Activity
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		destinations: make(map[primitive.ObjectID]*models.Destination),
		cities:       make(map[string]*models.City),
		activities:   make(map[primitive.ObjectID]*models.Activity),
		leisure:      make(map[primitive.ObjectID]*models.Activity),
	}
}

func (f *fakeCatalogRepo) addDestination(markup float64) *models.Destination {
	d := &models.Destination{ID: primitive.NewObjectID(), Name: "Japan", MarkupPercentage: markup, Active: true}
	f.destinations[d.ID] = d
	return d
}

func (f *fakeCatalogRepo) addCity(name, airport string) *models.City {
	c := &models.City{ID: primitive.NewObjectID(), Name: name, NearestInternationalAirport: airport, Active: true}
	f.cities[name] = c
	return c
}

func (f *fakeCatalogRepo) addActivity(cityID primitive.ObjectID, name string, price float64) *models.Activity {
	a := &models.Activity{ID: primitive.NewObjectID(), CityID: cityID, Name: name, PricePerPerson: price, Active: true}
	f.activities[a.ID] = a
	return a
}

func (f *fakeCatalogRepo) GetDestination(ctx context.Context, id primitive.ObjectID) (*models.Destination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.destinations[id]; ok {
		return d, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeCatalogRepo) GetCityByName(ctx context.Context, name string) (*models.City, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cities[name]; ok {
		return c, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeCatalogRepo) GetCity(ctx context.Context, id primitive.ObjectID) (*models.City, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cities {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeCatalogRepo) GetActivity(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.activities[id]; ok {
		return a, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeCatalogRepo) GetActivitiesByCity(ctx context.Context, cityID primitive.ObjectID) ([]*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Activity
	for _, a := range f.activities {
		if a.CityID == cityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetLeisureActivity(ctx context.Context, cityID primitive.ObjectID) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.leisure[cityID]; ok {
		return a, nil
	}
	a := &models.Activity{
		ID:        primitive.NewObjectID(),
		CityID:    cityID,
		Name:      "Leisure day",
		Category:  models.ActivityCategoryLeisure,
		IsLeisure: true,
		Active:    true,
	}
	f.leisure[cityID] = a
	return a, nil
}

// ---- draft generator ----

type fakeDraftGenerator struct {
	daysPerCity int
}

func (f *fakeDraftGenerator) Generate(ctx context.Context, cities []string, activities map[string][]string) (*draft.Tree, error) {
	days := f.daysPerCity
	if days < 1 {
		days = 2
	}
	tree := &draft.Tree{}
	for _, city := range cities {
		leg := draft.Leg{City: city}
		ids := activities[city]
		for i := 0; i < days; i++ {
			day := draft.Day{}
			if i < len(ids) {
				day.Activities = []string{ids[i]}
			}
			leg.Days = append(leg.Days, day)
		}
		tree.Legs = append(tree.Legs, leg)
	}
	return tree, nil
}

// ---- resource repositories ----

type fakeFlightRepo struct {
	mu      sync.Mutex
	store   map[primitive.ObjectID]*models.Flight
	deleted []primitive.ObjectID
}

func newFakeFlightRepo() *fakeFlightRepo {
	return &fakeFlightRepo{store: make(map[primitive.ObjectID]*models.Flight)}
}

func (f *fakeFlightRepo) add(price float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.store[id] = &models.Flight{ID: id, Price: price}
	return id
}

func (f *fakeFlightRepo) Create(ctx context.Context, doc *models.Flight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc.ID = primitive.NewObjectID()
	f.store[doc.ID] = doc
	return nil
}

func (f *fakeFlightRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Flight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc, ok := f.store[id]; ok {
		return doc, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeFlightRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return f.DeleteMany(ctx, []primitive.ObjectID{id})
}

func (f *fakeFlightRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.store, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

type fakeTaxiRepo struct {
	mu      sync.Mutex
	store   map[primitive.ObjectID]*models.Taxi
	deleted []primitive.ObjectID
}

func newFakeTaxiRepo() *fakeTaxiRepo {
	return &fakeTaxiRepo{store: make(map[primitive.ObjectID]*models.Taxi)}
}

func (f *fakeTaxiRepo) add(price float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.store[id] = &models.Taxi{ID: id, Price: price}
	return id
}

func (f *fakeTaxiRepo) Create(ctx context.Context, doc *models.Taxi) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc.ID = primitive.NewObjectID()
	f.store[doc.ID] = doc
	return nil
}

func (f *fakeTaxiRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Taxi, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc, ok := f.store[id]; ok {
		return doc, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeTaxiRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return f.DeleteMany(ctx, []primitive.ObjectID{id})
}

func (f *fakeTaxiRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.store, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

type fakeFerryRepo struct {
	mu      sync.Mutex
	store   map[primitive.ObjectID]*models.Ferry
	deleted []primitive.ObjectID
}

func newFakeFerryRepo() *fakeFerryRepo {
	return &fakeFerryRepo{store: make(map[primitive.ObjectID]*models.Ferry)}
}

func (f *fakeFerryRepo) Create(ctx context.Context, doc *models.Ferry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc.ID = primitive.NewObjectID()
	f.store[doc.ID] = doc
	return nil
}

func (f *fakeFerryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ferry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc, ok := f.store[id]; ok {
		return doc, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeFerryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return f.DeleteMany(ctx, []primitive.ObjectID{id})
}

func (f *fakeFerryRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.store, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

type fakeHotelRepo struct {
	mu      sync.Mutex
	store   map[primitive.ObjectID]*models.Hotel
	deleted []primitive.ObjectID
}

func newFakeHotelRepo() *fakeHotelRepo {
	return &fakeHotelRepo{store: make(map[primitive.ObjectID]*models.Hotel)}
}

func (f *fakeHotelRepo) add(price float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.store[id] = &models.Hotel{ID: id, Price: price}
	return id
}

func (f *fakeHotelRepo) Create(ctx context.Context, doc *models.Hotel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc.ID = primitive.NewObjectID()
	f.store[doc.ID] = doc
	return nil
}

func (f *fakeHotelRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hotel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc, ok := f.store[id]; ok {
		return doc, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeHotelRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return f.DeleteMany(ctx, []primitive.ObjectID{id})
}

func (f *fakeHotelRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		delete(f.store, id)
		f.deleted = append(f.deleted, id)
	}
	return nil
}

// ---- suppliers ----

type fakeSupplier struct {
	mu       sync.Mutex
	offers   []suppliers.Offer
	err      error
	requests []*suppliers.SearchRequest
}

func (f *fakeSupplier) Search(ctx context.Context, request *suppliers.SearchRequest) ([]suppliers.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

func (f *fakeSupplier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeHotelSupplier struct {
	mu       sync.Mutex
	offers   []suppliers.Offer
	err      error
	requests []*suppliers.StayRequest
}

func (f *fakeHotelSupplier) SearchStay(ctx context.Context, request *suppliers.StayRequest) ([]suppliers.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.offers, nil
}

func (f *fakeHotelSupplier) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func singleOffer(price float64, vendor string) []suppliers.Offer {
	return []suppliers.Offer{{Price: price, Currency: "USD", Vendor: vendor, Metadata: map[string]string{}}}
}

// ---- itinerary repository ----

type fakeItineraryRepo struct {
	mu          sync.Mutex
	store       map[primitive.ObjectID]*models.Itinerary
	versions    []*models.ItineraryVersion
	staleWrites int
	saves       int
	tripsByUser map[primitive.ObjectID]int64
}

func newFakeItineraryRepo() *fakeItineraryRepo {
	return &fakeItineraryRepo{
		store:       make(map[primitive.ObjectID]*models.Itinerary),
		tripsByUser: make(map[primitive.ObjectID]int64),
	}
}

func (f *fakeItineraryRepo) Create(ctx context.Context, it *models.Itinerary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it.ID.IsZero() {
		it.ID = primitive.NewObjectID()
	}
	f.store[it.ID] = it.Clone()
	return nil
}

func (f *fakeItineraryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Itinerary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if it, ok := f.store[id]; ok {
		return it.Clone(), nil
	}
	return nil, errFakeNotFound
}

func (f *fakeItineraryRepo) SaveWithHistory(ctx context.Context, prev, next *models.Itinerary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.staleWrites > 0 {
		f.staleWrites--
		return ErrStaleWrite
	}
	current, ok := f.store[next.ID]
	if !ok || current.Version != prev.Version {
		return ErrStaleWrite
	}
	f.versions = append(f.versions, &models.ItineraryVersion{
		ID:          primitive.NewObjectID(),
		ItineraryID: prev.ID,
		Version:     prev.Version,
		Snapshot:    *prev.Clone(),
		CreatedAt:   time.Now(),
	})
	f.store[next.ID] = next.Clone()
	return nil
}

func (f *fakeItineraryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, id)
	return nil
}

func (f *fakeItineraryRepo) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Itinerary, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Itinerary
	for _, it := range f.store {
		if it.UserID == userID {
			out = append(out, it.Clone())
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeItineraryRepo) CountByUser(ctx context.Context, userID primitive.ObjectID, exclude primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := f.tripsByUser[userID]
	for _, it := range f.store {
		if it.UserID == userID && it.ID != exclude {
			count++
		}
	}
	return count, nil
}

func (f *fakeItineraryRepo) GetUpcoming(ctx context.Context, after time.Time, params *utils.PaginationParams) ([]*models.Itinerary, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Itinerary
	for _, it := range f.store {
		if it.StartDate.After(after) {
			out = append(out, it.Clone())
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeItineraryRepo) GetVersions(ctx context.Context, itineraryID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ItineraryVersion, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ItineraryVersion
	for _, v := range f.versions {
		if v.ItineraryID == itineraryID {
			out = append(out, v)
		}
	}
	return out, int64(len(out)), nil
}

// ---- discounts ----

type fakeDiscountRepo struct {
	mu         sync.Mutex
	store      map[primitive.ObjectID]*models.Discount
	couponless *models.Discount
}

func newFakeDiscountRepo() *fakeDiscountRepo {
	return &fakeDiscountRepo{store: make(map[primitive.ObjectID]*models.Discount)}
}

func (f *fakeDiscountRepo) add(d *models.Discount) *models.Discount {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	f.store[d.ID] = d
	if d.DiscountType == models.DiscountTypeCouponless {
		f.couponless = d
	}
	return d
}

func (f *fakeDiscountRepo) Create(ctx context.Context, d *models.Discount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add(d)
	return nil
}

func (f *fakeDiscountRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Discount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.store[id]; ok {
		return d, nil
	}
	return nil, errFakeNotFound
}

func (f *fakeDiscountRepo) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.store {
		if d.Code == code {
			return d, nil
		}
	}
	return nil, errFakeNotFound
}

func (f *fakeDiscountRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeDiscountRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, id)
	return nil
}

func (f *fakeDiscountRepo) GetActive(ctx context.Context, params *utils.PaginationParams) ([]*models.Discount, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Discount
	for _, d := range f.store {
		if d.Active {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeDiscountRepo) GetActiveCouponless(ctx context.Context, destinationID primitive.ObjectID) (*models.Discount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.couponless == nil || !f.couponless.Active {
		return nil, nil
	}
	if f.couponless.DestinationID != nil && *f.couponless.DestinationID != destinationID {
		return nil, nil
	}
	return f.couponless, nil
}

type fakeUsageRepo struct {
	mu   sync.Mutex
	rows []*models.DiscountUsage
}

func (f *fakeUsageRepo) Record(ctx context.Context, usage *models.DiscountUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	usage.ID = primitive.NewObjectID()
	f.rows = append(f.rows, usage)
	return nil
}

func (f *fakeUsageRepo) CountByUser(ctx context.Context, discountID, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, row := range f.rows {
		if row.DiscountID == discountID && row.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeUsageRepo) CountDistinctUsers(ctx context.Context, discountID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[primitive.ObjectID]bool)
	for _, row := range f.rows {
		if row.DiscountID == discountID {
			seen[row.UserID] = true
		}
	}
	return int64(len(seen)), nil
}

type fakeLeadRepo struct {
	mu    sync.Mutex
	leads []*models.Lead
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead *models.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return nil
}
