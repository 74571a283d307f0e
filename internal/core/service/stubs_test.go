package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

// In-memory implementations of the ports used across the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	copy.ID = primitive.NewObjectID().Hex()
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Public(), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	updated := cloneUser(user)
	if updated.PasswordHash == "" {
		updated.PasswordHash = stored.PasswordHash
	}
	r.users[user.ID] = updated
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// stored returns the raw record, hash included.
func (r *memUserRepo) stored(id string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}

type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: make(map[string]*domain.Room)}
}

func (r *memRoomRepo) Create(_ context.Context, room *domain.Room) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *room
	copy.ID = primitive.NewObjectID().Hex()
	r.rooms[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *memRoomRepo) FindByID(_ context.Context, id string) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !primitive.IsValidObjectID(id) {
		return nil, domain.ErrInvalidID
	}
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	out := *room
	return &out, nil
}

func (r *memRoomRepo) List(context.Context) ([]*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		copy := *room
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRoomRepo) Update(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; !ok {
		return domain.ErrRoomNotFound
	}
	copy := *room
	r.rooms[room.ID] = &copy
	return nil
}

func (r *memRoomRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(r.rooms, id)
	return nil
}

type memReservationRepo struct {
	mu    sync.Mutex
	items map[string]*domain.Reservation

	// listDelay, when set, returns how long the n-th ListByDate call stalls
	// after reading, widening the check-then-write window in race tests.
	listDelay func(n int) time.Duration
	lists     int
	// beforeUpdate, when set, runs before the n-th Update call writes.
	beforeUpdate func(n int)
	updates      int
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{items: make(map[string]*domain.Reservation)}
}

func (r *memReservationRepo) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *res
	copy.ID = primitive.NewObjectID().Hex()
	r.items[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (r *memReservationRepo) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	out := *res
	return &out, nil
}

func (r *memReservationRepo) List(_ context.Context, f ports.ListReservationsFilter) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Reservation
	for _, res := range r.items {
		if f.RoomID != "" && res.RoomID != f.RoomID {
			continue
		}
		if !f.Date.IsZero() && !res.Slot.Date.Equal(f.Date) {
			continue
		}
		copy := *res
		out = append(out, &copy)
	}
	return out, nil
}

func (r *memReservationRepo) ListByDate(ctx context.Context, d domain.Date, roomID string) ([]*domain.Reservation, error) {
	out, err := r.List(ctx, ports.ListReservationsFilter{RoomID: roomID, Date: d})

	r.mu.Lock()
	n := r.lists
	r.lists++
	r.mu.Unlock()
	if r.listDelay != nil {
		time.Sleep(r.listDelay(n))
	}
	return out, err
}

func (r *memReservationRepo) Update(ctx context.Context, res *domain.Reservation, patch domain.ReservationPatch) error {
	r.mu.Lock()
	n := r.updates
	r.updates++
	r.mu.Unlock()
	if r.beforeUpdate != nil {
		r.beforeUpdate(n)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[res.ID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if patch.EventName != nil {
		stored.EventName = res.EventName
	}
	if patch.Description != nil {
		stored.Description = res.Description
	}
	if patch.Subject != nil {
		stored.Subject = res.Subject
	}
	if patch.TouchesSchedule() {
		stored.RoomID = res.RoomID
		stored.Slot = res.Slot
	}
	stored.UpdatedAt = res.UpdatedAt
	return nil
}

func (r *memReservationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrReservationNotFound
	}
	delete(r.items, id)
	return nil
}

// onDay returns the stored reservations of one calendar day.
func (r *memReservationRepo) onDay(d domain.Date) []*domain.Reservation {
	out, _ := r.List(context.Background(), ports.ListReservationsFilter{Date: d})
	return out
}

func (r *memReservationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

type memEventRepo struct {
	mu     sync.Mutex
	events []*domain.ReservationEvent
}

func (r *memEventRepo) InsertEvent(_ context.Context, e *domain.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *e
	r.events = append(r.events, &copy)
	return nil
}

func (r *memEventRepo) ListEvents(_ context.Context, id string) ([]*domain.ReservationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ReservationEvent
	for _, e := range r.events {
		if e.ReservationID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// syncAudit writes events straight into the repo, standing in for the
// background dispatcher.
type syncAudit struct{ repo *memEventRepo }

func (a syncAudit) Record(e domain.ReservationEvent) {
	_ = a.repo.InsertEvent(context.Background(), &e)
}

// keyedLocker is an in-process SlotLocker.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	keys  []string
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *keyedLocker) Lock(ctx context.Context, key string) (context.Context, func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.keys = append(l.keys, key)
	l.mu.Unlock()

	m.Lock()
	lease, cancel := context.WithCancel(ctx)
	return lease, func() {
		cancel()
		m.Unlock()
	}, nil
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (context.Context, func(), error) {
	return nil, nil, domain.ErrSlotBusy
}

type memRevokedRepo struct {
	mu      sync.Mutex
	records map[string]domain.RevokedToken
	lookups int
}

func newMemRevokedRepo() *memRevokedRepo {
	return &memRevokedRepo{records: make(map[string]domain.RevokedToken)}
}

func (r *memRevokedRepo) Revoke(_ context.Context, t domain.RevokedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[t.Token]; !ok {
		r.records[t.Token] = t
	}
	return nil
}

func (r *memRevokedRepo) IsRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	_, ok := r.records[token]
	return ok, nil
}

func (r *memRevokedRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, rec := range r.records {
		if rec.ExpiresAt.Before(now) {
			delete(r.records, token)
			n++
		}
	}
	return n, nil
}

type memRevocationCache struct {
	mu      sync.Mutex
	entries map[string]time.Duration
	err     error
}

func newMemRevocationCache() *memRevocationCache {
	return &memRevocationCache{entries: make(map[string]time.Duration)}
}

func (c *memRevocationCache) IsRevoked(_ context.Context, token string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.entries[token]
	return ok, nil
}

func (c *memRevocationCache) MarkRevoked(_ context.Context, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[token] = ttl
	return nil
}
