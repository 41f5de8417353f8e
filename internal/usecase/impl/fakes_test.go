package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"daysoff/internal/domain/entity"
	"daysoff/internal/domain/repository"
	"daysoff/internal/domain/service"

	"github.com/google/uuid"
)

// --- In-memory repository fakes ---

// memStore backs all repository fakes for a single test.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*entity.User
	bookings      map[uuid.UUID]*entity.VacationBooking
	holidays      []*entity.Holiday
	calTokens     map[uuid.UUID]*entity.CalendarToken // keyed by user id
	refreshTokens map[string]*entity.RefreshToken     // keyed by hash

	// forced errors
	failUpsertUser error
	failCreateRT   error
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*entity.User),
		bookings:      make(map[uuid.UUID]*entity.VacationBooking),
		calTokens:     make(map[uuid.UUID]*entity.CalendarToken),
		refreshTokens: make(map[string]*entity.RefreshToken),
	}
}

// fakeTxManager satisfies repository.TransactionManager over the memStore.
// There is no real transactionality; each Execute sees the shared store.
type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&fakeFactory{store: m.store})
}

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) UserRepo() repository.UserRepository {
	return &fakeUserRepo{store: f.store}
}

func (f *fakeFactory) VacationRepo() repository.VacationRepository {
	return &fakeVacationRepo{store: f.store}
}

func (f *fakeFactory) HolidayRepo() repository.HolidayRepository {
	return &fakeHolidayRepo{store: f.store}
}

func (f *fakeFactory) CalendarTokenRepo() repository.CalendarTokenRepository {
	return &fakeCalendarTokenRepo{store: f.store}
}

func (f *fakeFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return &fakeRefreshTokenRepo{store: f.store}
}

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cloned := *user

	return &cloned, nil
}

func (r *fakeUserRepo) FindByProviderSubject(_ context.Context, subject string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.ProviderSubject == subject {
			cloned := *user

			return &cloned, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Upsert(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failUpsertUser != nil {
		return r.store.failUpsertUser
	}

	for _, existing := range r.store.users {
		if existing.ProviderSubject == user.ProviderSubject {
			existing.Email = user.Email
			existing.Name = user.Name
			existing.UpdatedAt = time.Now()
			*user = *existing

			return nil
		}
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cloned := *user
	r.store.users[user.ID] = &cloned

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cloned := *user
	r.store.users[user.ID] = &cloned

	return nil
}

type fakeVacationRepo struct {
	store *memStore
}

func (r *fakeVacationRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.VacationBooking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cloned := *booking

	return &cloned, nil
}

func (r *fakeVacationRepo) FindByUserID(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*entity.VacationBooking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.VacationBooking
	for _, b := range r.store.bookings {
		if b.UserID != userID {
			continue
		}
		if !from.IsZero() && b.EndDate.Before(from) {
			continue
		}
		if !to.IsZero() && b.StartDate.After(to) {
			continue
		}
		cloned := *b
		out = append(out, &cloned)
	}

	return out, nil
}

func (r *fakeVacationRepo) Create(_ context.Context, booking *entity.VacationBooking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	cloned := *booking
	r.store.bookings[booking.ID] = &cloned

	return nil
}

func (r *fakeVacationRepo) Update(_ context.Context, booking *entity.VacationBooking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.bookings[booking.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	cloned := *booking
	r.store.bookings[booking.ID] = &cloned

	return nil
}

func (r *fakeVacationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(r.store.bookings, id)

	return nil
}

type fakeHolidayRepo struct {
	store *memStore
}

func (r *fakeHolidayRepo) FindForYear(_ context.Context, year int, province string) ([]*entity.Holiday, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Holiday
	for _, h := range r.store.holidays {
		if h.Date.Year() != year {
			continue
		}
		if h.Scope == entity.HolidayScopeProvince && h.Province != province {
			continue
		}
		cloned := *h
		out = append(out, &cloned)
	}

	return out, nil
}

func (r *fakeHolidayRepo) Create(_ context.Context, holiday *entity.Holiday) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	holiday.ID = uuid.New()
	cloned := *holiday
	r.store.holidays = append(r.store.holidays, &cloned)

	return nil
}

type fakeCalendarTokenRepo struct {
	store *memStore
}

func (r *fakeCalendarTokenRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.CalendarToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.calTokens[userID]
	if !ok {
		return nil, repository.ErrCalendarTokenNotFound
	}
	cloned := *token

	return &cloned, nil
}

func (r *fakeCalendarTokenRepo) Upsert(_ context.Context, token *entity.CalendarToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.store.calTokens[token.UserID]; ok {
		token.ID = existing.ID
		token.CreatedAt = existing.CreatedAt
	} else {
		token.ID = uuid.New()
		token.CreatedAt = time.Now()
	}
	token.UpdatedAt = time.Now()
	cloned := *token
	r.store.calTokens[token.UserID] = &cloned

	return nil
}

func (r *fakeCalendarTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.calTokens[userID]; !ok {
		return repository.ErrCalendarTokenNotFound
	}
	delete(r.store.calTokens, userID)

	return nil
}

type fakeRefreshTokenRepo struct {
	store *memStore
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *entity.RefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.failCreateRT != nil {
		return r.store.failCreateRT
	}

	token.ID = uuid.New()
	token.CreatedAt = time.Now()
	cloned := *token
	r.store.refreshTokens[token.TokenHash] = &cloned

	return nil
}

func (r *fakeRefreshTokenRepo) FindByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.refreshTokens[tokenHash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if time.Now().After(token.ExpiresAt) {
		return nil, repository.ErrRefreshTokenExpired
	}
	cloned := *token

	return &cloned, nil
}

func (r *fakeRefreshTokenRepo) DeleteByHash(_ context.Context, tokenHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.refreshTokens[tokenHash]; !ok {
		return repository.ErrRefreshTokenNotFound
	}
	delete(r.store.refreshTokens, tokenHash)

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for hash, token := range r.store.refreshTokens {
		if token.UserID == userID {
			delete(r.store.refreshTokens, hash)
		}
	}

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for hash, token := range r.store.refreshTokens {
		if now.After(token.ExpiresAt) {
			delete(r.store.refreshTokens, hash)
		}
	}

	return nil
}

// --- Service fakes ---

type fakeOAuth struct {
	mu          sync.Mutex
	validStates map[string]bool
	identity    *service.OAuthIdentity
	exchangeErr error
}

func newFakeOAuth(identity *service.OAuthIdentity) *fakeOAuth {
	return &fakeOAuth{
		validStates: make(map[string]bool),
		identity:    identity,
	}
}

func (f *fakeOAuth) BuildAuthorizationURL(state string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validStates[state] = true

	return "https://provider.example.com/auth?state=" + state
}

func (f *fakeOAuth) ValidateState(state string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.validStates[state] {
		return false
	}
	delete(f.validStates, state)

	return true
}

func (f *fakeOAuth) ExchangeCode(_ context.Context, _ string) (*service.OAuthIdentity, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}

	return f.identity, nil
}

func (f *fakeOAuth) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// fakeTokenService issues predictable tokens of the form
// "access:<uuid>:<n>" / "refresh:<uuid>:<n>".
type fakeTokenService struct {
	mu      sync.Mutex
	counter int
	issued  map[string]uuid.UUID // token -> user
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{issued: make(map[string]uuid.UUID)}
}

func (f *fakeTokenService) GenerateTokens(userID uuid.UUID) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counter++
	access := fmt.Sprintf("access:%s:%d", userID, f.counter)
	refresh := fmt.Sprintf("refresh:%s:%d", userID, f.counter)
	f.issued[access] = userID
	f.issued[refresh] = userID

	return access, refresh, nil
}

func (f *fakeTokenService) validate(tokenString, kind string) (*service.SessionClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	userID, ok := f.issued[tokenString]
	if !ok || len(tokenString) < len(kind) || tokenString[:len(kind)] != kind {
		return nil, fmt.Errorf("invalid %s token", kind)
	}

	return &service.SessionClaims{UserID: userID, Type: kind, Expiry: time.Now().Add(time.Hour)}, nil
}

func (f *fakeTokenService) ValidateAccessToken(tokenString string) (*service.SessionClaims, error) {
	return f.validate(tokenString, "access")
}

func (f *fakeTokenService) ValidateRefreshToken(tokenString string) (*service.SessionClaims, error) {
	return f.validate(tokenString, "refresh")
}

func (f *fakeTokenService) AccessTokenDuration() time.Duration { return 15 * time.Minute }

func (f *fakeTokenService) RefreshTokenDuration() time.Duration { return 7 * 24 * time.Hour }

func (f *fakeTokenService) HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}

// fakeBus records published events.
type fakeBus struct {
	mu     sync.Mutex
	events []service.AuthEvent
	subs   []chan service.AuthEvent
}

func (f *fakeBus) Publish(event service.AuthEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)
	for _, ch := range f.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (f *fakeBus) Subscribe() (<-chan service.AuthEvent, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan service.AuthEvent, 16)
	f.subs = append(f.subs, ch)

	return ch, func() {}
}

func (f *fakeBus) published() []service.AuthEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]service.AuthEvent, len(f.events))
	copy(out, f.events)

	return out
}

// fakePublisher records booking events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*service.BookingEvent
	err    error
}

func (f *fakePublisher) PublishBookingEvent(_ context.Context, event *service.BookingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)

	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) published() []*service.BookingEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*service.BookingEvent, len(f.events))
	copy(out, f.events)

	return out
}

// fakeCalendarProvider simulates the external calendar.
type fakeCalendarProvider struct {
	mu          sync.Mutex
	exchangeErr error
	refreshErr  error
	insertErr   error
	tokenTTL    time.Duration
	exchanges   int
	refreshes   int
	inserted    []*service.CalendarEvent
	nextEventID string
}

func newFakeCalendarProvider() *fakeCalendarProvider {
	return &fakeCalendarProvider{tokenTTL: time.Hour, nextEventID: "evt-1"}
}

func (f *fakeCalendarProvider) BuildAuthorizationURL(state string) string {
	return "https://calendar.example.com/auth?state=" + state
}

func (f *fakeCalendarProvider) ExchangeCode(_ context.Context, code string) (*entity.CalendarToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	f.exchanges++

	return &entity.CalendarToken{
		Provider:     entity.ProviderTypeGoogle,
		AccessToken:  "cal-access-" + code,
		RefreshToken: "cal-refresh-" + code,
		ExpiresAt:    time.Now().Add(f.tokenTTL),
		Scope:        "calendar.events",
	}, nil
}

func (f *fakeCalendarProvider) Refresh(_ context.Context, token *entity.CalendarToken) (*entity.CalendarToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	f.refreshes++

	refreshed := *token
	refreshed.AccessToken = fmt.Sprintf("cal-access-refreshed-%d", f.refreshes)
	refreshed.ExpiresAt = time.Now().Add(f.tokenTTL)

	return &refreshed, nil
}

func (f *fakeCalendarProvider) InsertEvent(_ context.Context, _ *entity.CalendarToken, event *service.CalendarEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.inserted = append(f.inserted, event)

	return f.nextEventID, nil
}

func (f *fakeCalendarProvider) Provider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// fakeQR returns a fixed payload.
type fakeQR struct{}

func (fakeQR) GenerateURLQR(url string) ([]byte, error) {
	return []byte("qr:" + url), nil
}
