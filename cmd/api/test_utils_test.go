package main

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"venuebook/internal/refcode"
	"venuebook/internal/store"

	"github.com/9ssi7/exponent"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// In-memory store fakes. The bookings fake enforces the same active-slot
// uniqueness and CAS semantics as the database, and the reviews fake
// maintains the venue rating aggregate the same way the transactional SQL
// does, so handler tests exercise real conflict and aggregation paths.

type fakeUsersStore struct {
	mu    sync.Mutex
	users map[int64]*store.User
}

func (f *fakeUsersStore) Create(ctx context.Context, user *store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	user.ID = int64(len(f.users) + 1)
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsersStore) GetByID(ctx context.Context, userID int64) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsersStore) Update(ctx context.Context, userID int64, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		u.Name = v.(string)
	}
	if v, ok := updates["phone"]; ok {
		u.Phone = v.(string)
	}
	if v, ok := updates["email"]; ok {
		u.Email = v.(string)
	}
	return nil
}

func (f *fakeUsersStore) SaveRefreshToken(ctx context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.RefreshToken = token
	}
	return nil
}

func (f *fakeUsersStore) GetRefreshToken(ctx context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return "", store.ErrNotFound
	}
	return u.RefreshToken, nil
}

func (f *fakeUsersStore) DeleteRefreshToken(ctx context.Context, userID int64) error {
	return f.SaveRefreshToken(ctx, userID, "")
}

func (f *fakeUsersStore) UpdateResetToken(ctx context.Context, email, token string, expires time.Time) error {
	if _, err := f.GetByEmail(ctx, email); err != nil {
		return err
	}
	return nil
}

func (f *fakeUsersStore) GetByResetToken(ctx context.Context, token string) (*store.User, error) {
	return nil, store.ErrNotFound
}

func (f *fakeUsersStore) UpdatePassword(ctx context.Context, userID int64, hash []byte) error {
	return nil
}

type fakeVenuesStore struct {
	mu     sync.Mutex
	venues map[int64]*store.Venue
}

func (f *fakeVenuesStore) Create(ctx context.Context, venue *store.Venue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	venue.ID = int64(len(f.venues) + 1)
	venue.Status = store.VenuePending
	venue.CreatedAt = time.Now()
	cp := *venue
	f.venues[venue.ID] = &cp
	return nil
}

func (f *fakeVenuesStore) GetByID(ctx context.Context, venueID int64) (*store.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[venueID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVenuesStore) List(ctx context.Context, filter store.VenueFilter) ([]store.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Venue
	for _, v := range f.venues {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeVenuesStore) Update(ctx context.Context, venueID int64, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[venueID]
	if !ok {
		return store.ErrNotFound
	}
	if val, ok := updates["name"]; ok {
		v.Name = val.(string)
	}
	if val, ok := updates["capacity"]; ok {
		v.Capacity = val.(int)
	}
	if val, ok := updates["price"]; ok {
		v.Price = val.(int64)
	}
	return nil
}

func (f *fakeVenuesStore) UpdateStatus(ctx context.Context, venueID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.venues[venueID]
	if !ok {
		return store.ErrNotFound
	}
	v.Status = status
	return nil
}

func (f *fakeVenuesStore) Delete(ctx context.Context, venueID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.venues[venueID]; !ok {
		return store.ErrNotFound
	}
	delete(f.venues, venueID)
	return nil
}

type fakeBookingsStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*store.Booking
}

func (f *fakeBookingsStore) Create(ctx context.Context, booking *store.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.VenueID == booking.VenueID && b.EventDate.Equal(booking.EventDate) &&
			(b.Status == store.BookingPending || b.Status == store.BookingConfirmed) {
			return store.ErrDateTaken
		}
	}
	f.nextID++
	booking.ID = f.nextID
	booking.Status = store.BookingPending
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	f.bookings[booking.ID] = &cp
	return nil
}

func (f *fakeBookingsStore) GetByID(ctx context.Context, bookingID int64) (*store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingsStore) GetReservedDates(ctx context.Context, venueID int64) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var dates []time.Time
	today := time.Now().Truncate(24 * time.Hour)
	for _, b := range f.bookings {
		if b.VenueID != venueID {
			continue
		}
		if b.Status != store.BookingPending && b.Status != store.BookingConfirmed {
			continue
		}
		if b.EventDate.Before(today) {
			continue
		}
		dates = append(dates, b.EventDate)
	}
	return dates, nil
}

func (f *fakeBookingsStore) UpdateStatus(ctx context.Context, bookingID int64, from, to string) error {
	if !store.ValidTransition(from, to) {
		return store.ErrInvalidTransition
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok || b.Status != from {
		return store.ErrConflict
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

func (f *fakeBookingsStore) GetByCustomer(ctx context.Context, customerID int64) ([]store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingsStore) GetByVenue(ctx context.Context, venueID int64) ([]store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Booking
	for _, b := range f.bookings {
		if b.VenueID == venueID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingsStore) GetAll(ctx context.Context) ([]store.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Booking
	for _, b := range f.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBookingsStore) CompletePastBookings(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	today := time.Now().Truncate(24 * time.Hour)
	for _, b := range f.bookings {
		if b.Status == store.BookingConfirmed && b.EventDate.Before(today) {
			b.Status = store.BookingCompleted
			n++
		}
	}
	return n, nil
}

type fakeReviewsStore struct {
	mu      sync.Mutex
	nextID  int64
	reviews map[int64]*store.Review
	venues  *fakeVenuesStore
}

// refreshVenueRating mirrors the store's transactional aggregate: mean
// rounded to one decimal, 0 when no reviews remain. Called with f.mu held.
func (f *fakeReviewsStore) refreshVenueRating(venueID int64) {
	sum, count := 0, 0
	for _, rv := range f.reviews {
		if rv.VenueID == venueID {
			sum += rv.Rating
			count++
		}
	}
	f.venues.mu.Lock()
	defer f.venues.mu.Unlock()
	v, ok := f.venues.venues[venueID]
	if !ok {
		return
	}
	if count == 0 {
		v.Rating = 0
	} else {
		v.Rating = math.Round(float64(sum)/float64(count)*10) / 10
	}
	v.ReviewCount = count
}

func (f *fakeReviewsStore) Create(ctx context.Context, review *store.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rv := range f.reviews {
		if rv.VenueID == review.VenueID && rv.CustomerID == review.CustomerID {
			return store.ErrAlreadyReviewed
		}
	}
	f.nextID++
	review.ID = f.nextID
	review.CreatedAt = time.Now()
	cp := *review
	f.reviews[review.ID] = &cp
	f.refreshVenueRating(review.VenueID)
	return nil
}

func (f *fakeReviewsStore) GetByID(ctx context.Context, reviewID int64) (*store.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[reviewID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeReviewsStore) GetByVenue(ctx context.Context, venueID int64) ([]store.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Review
	for _, rv := range f.reviews {
		if rv.VenueID == venueID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (f *fakeReviewsStore) Update(ctx context.Context, review *store.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[review.ID]
	if !ok {
		return store.ErrNotFound
	}
	*rv = *review
	f.refreshVenueRating(review.VenueID)
	return nil
}

func (f *fakeReviewsStore) Delete(ctx context.Context, reviewID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[reviewID]
	if !ok {
		return store.ErrNotFound
	}
	delete(f.reviews, reviewID)
	f.refreshVenueRating(rv.VenueID)
	return nil
}

type fakeInquiriesStore struct {
	mu        sync.Mutex
	inquiries map[int64]*store.Inquiry
}

func (f *fakeInquiriesStore) Create(ctx context.Context, inquiry *store.Inquiry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inquiry.ID = int64(len(f.inquiries) + 1)
	inquiry.Status = store.InquiryNew
	inquiry.CreatedAt = time.Now()
	cp := *inquiry
	f.inquiries[inquiry.ID] = &cp
	return nil
}

func (f *fakeInquiriesStore) GetByID(ctx context.Context, inquiryID int64) (*store.Inquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.inquiries[inquiryID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeInquiriesStore) GetByVenue(ctx context.Context, venueID int64) ([]store.Inquiry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Inquiry
	for _, i := range f.inquiries {
		if i.VenueID == venueID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeInquiriesStore) UpdateStatus(ctx context.Context, inquiryID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.inquiries[inquiryID]
	if !ok {
		return store.ErrNotFound
	}
	i.Status = status
	return nil
}

type fakeContactsStore struct {
	mu       sync.Mutex
	messages []store.ContactMessage
}

func (f *fakeContactsStore) Create(ctx context.Context, msg *store.ContactMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = int64(len(f.messages) + 1)
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeContactsStore) GetAll(ctx context.Context) ([]store.ContactMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.ContactMessage(nil), f.messages...), nil
}

type fakePushTokensStore struct {
	mu     sync.Mutex
	tokens map[int64][]string
}

func (f *fakePushTokensStore) AddOrUpdate(ctx context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[userID] = append(f.tokens[userID], token)
	return nil
}

func (f *fakePushTokensStore) Remove(ctx context.Context, userID int64, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tokens[userID][:0]
	for _, t := range f.tokens[userID] {
		if t != token {
			kept = append(kept, t)
		}
	}
	f.tokens[userID] = kept
	return nil
}

func (f *fakePushTokensStore) GetByUserIDs(ctx context.Context, userIDs []int64) (map[int64][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64][]string)
	for _, id := range userIDs {
		if ts, ok := f.tokens[id]; ok {
			out[id] = append([]string(nil), ts...)
		}
	}
	return out, nil
}

type fakeMailer struct{}

func (fakeMailer) Send(templateFile, username, email string, data any) (int, error) {
	return http.StatusOK, nil
}

type fakePushSender struct{}

func (fakePushSender) Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error) {
	return nil, nil
}

func newTestStorage() store.Storage {
	venues := &fakeVenuesStore{venues: map[int64]*store.Venue{}}
	return store.Storage{
		Users:      &fakeUsersStore{users: map[int64]*store.User{}},
		Venues:     venues,
		Bookings:   &fakeBookingsStore{bookings: map[int64]*store.Booking{}},
		Reviews:    &fakeReviewsStore{reviews: map[int64]*store.Review{}, venues: venues},
		Inquiries:  &fakeInquiriesStore{inquiries: map[int64]*store.Inquiry{}},
		Contacts:   &fakeContactsStore{},
		PushTokens: &fakePushTokensStore{tokens: map[int64][]string{}},
	}
}

func newTestApplication() *application {
	refs, _ := refcode.NewGenerator("test-salt")
	return &application{
		store:  newTestStorage(),
		logger: zap.NewNop().Sugar(),
		mailer: fakeMailer{},
		push:   fakePushSender{},
		refs:   refs,
	}
}

// asUser puts an authenticated user on the request the way
// AuthTokenMiddleware would.
func asUser(r *http.Request, user *store.User) *http.Request {
	ctx := context.WithValue(r.Context(), userCtx, user)
	return r.WithContext(ctx)
}

// withURLParam attaches a chi route parameter so handlers can be called
// without mounting the full router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func execute(handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler(rr, r)
	return rr
}
