package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
	redisdb "github.com/agendaav/room-booking/internal/infrastructure/db/redis"
)

type reservationFixture struct {
	svc    *ReservationService
	repo   *memReservationRepo
	rooms  *memRoomRepo
	events *memEventRepo
	locker *keyedLocker
	users  *memUserRepo
}

func newReservationFixture(scope domain.ScheduleScope) reservationFixture {
	f := reservationFixture{
		repo:   newMemReservationRepo(),
		rooms:  newMemRoomRepo(),
		events: &memEventRepo{},
		locker: newKeyedLocker(),
		users:  newMemUserRepo(),
	}
	f.svc = NewReservationService(f.repo, f.rooms, f.events, f.locker, syncAudit{repo: f.events}, scope, zerolog.Nop())
	return f
}

func (f reservationFixture) room(t *testing.T, available bool) string {
	t.Helper()
	room, err := f.rooms.Create(context.Background(), &domain.Room{
		Name:      gofakeit.LetterN(8),
		Location:  gofakeit.City(),
		Available: available,
	})
	require.NoError(t, err)
	return room.ID
}

func mustSlot(t *testing.T, date, start, end string) domain.Slot {
	t.Helper()
	d, err := domain.ParseDate(date)
	require.NoError(t, err)
	s, err := domain.ParseTimeOfDay(start)
	require.NoError(t, err)
	e, err := domain.ParseTimeOfDay(end)
	require.NoError(t, err)
	return domain.Slot{Date: d, Start: s, End: e}
}

func booking(roomID string, slot domain.Slot) ports.CreateReservationInput {
	return ports.CreateReservationInput{
		RoomID:    roomID,
		EventName: gofakeit.LetterN(10),
		Slot:      slot,
	}
}

func TestReservationService_CreateAndConflicts(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	user := seedUser(t, f.users, domain.RoleMember)
	roomID := f.room(t, true)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, user, booking(roomID, mustSlot(t, "2024-05-10", "10:00", "11:00")))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, user.ID, first.UserID)
	assert.Equal(t, user.Name, first.UserName)
	assert.False(t, first.CreatedAt.IsZero())

	tests := []struct {
		name    string
		slot    domain.Slot
		wantErr error
	}{
		{"adjacent after", mustSlot(t, "2024-05-10", "11:00", "12:00"), nil},
		{"adjacent before", mustSlot(t, "2024-05-10", "09:00", "10:00"), nil},
		{"same slot", mustSlot(t, "2024-05-10", "10:00", "11:00"), domain.ErrConflict},
		{"overlaps start", mustSlot(t, "2024-05-10", "09:30", "10:30"), domain.ErrConflict},
		{"contained", mustSlot(t, "2024-05-10", "10:15", "10:45"), domain.ErrConflict},
		{"next day", mustSlot(t, "2024-05-11", "10:00", "11:00"), nil},
		{"zero length", mustSlot(t, "2024-05-12", "10:00", "10:00"), domain.ErrInvalidRange},
		{"reversed", mustSlot(t, "2024-05-12", "11:00", "10:00"), domain.ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, user, booking(roomID, tt.slot))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, 4, f.repo.count())
}

func TestReservationService_RoomScopeIsolatesRooms(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	user := seedUser(t, f.users, domain.RoleMember)
	a, b := f.room(t, true), f.room(t, true)
	slot := mustSlot(t, "2024-05-10", "10:00", "11:00")

	_, err := f.svc.Create(context.Background(), user, booking(a, slot))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), user, booking(b, slot))
	assert.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"room:" + a + ":2024-05-10",
		"room:" + b + ":2024-05-10",
	}, f.locker.keys)
}

func TestReservationService_GlobalScopeSharesOneCalendar(t *testing.T) {
	f := newReservationFixture(domain.ScopeGlobal)
	user := seedUser(t, f.users, domain.RoleMember)
	a, b := f.room(t, true), f.room(t, true)
	slot := mustSlot(t, "2024-05-10", "10:00", "11:00")

	_, err := f.svc.Create(context.Background(), user, booking(a, slot))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), user, booking(b, slot))
	assert.ErrorIs(t, err, domain.ErrConflict)

	// A room is optional on a global calendar.
	_, err = f.svc.Create(context.Background(), user, booking("", mustSlot(t, "2024-05-10", "11:00", "12:00")))
	assert.NoError(t, err)
}

func TestReservationService_CreateChecksRoomAndInput(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	user := seedUser(t, f.users, domain.RoleMember)
	open, closed := f.room(t, true), f.room(t, false)
	slot := mustSlot(t, "2024-05-10", "10:00", "11:00")

	tests := []struct {
		name    string
		actor   *domain.User
		input   ports.CreateReservationInput
		wantErr error
	}{
		{"no actor", nil, booking(open, slot), domain.ErrUnauthorized},
		{"room required", user, booking("", slot), domain.ErrValidation},
		{"unknown room", user, booking(primitive.NewObjectID().Hex(), slot), domain.ErrRoomNotFound},
		{"malformed room id", user, booking("42", slot), domain.ErrInvalidID},
		{"room unavailable", user, booking(closed, slot), domain.ErrRoomUnavailable},
		{"missing event name", user, ports.CreateReservationInput{RoomID: open, Slot: slot}, domain.ErrValidation},
		{"missing date", user, booking(open, domain.Slot{Start: slot.Start, End: slot.End}), domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.actor, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, f.repo.count())
}

func TestReservationService_CreateWhenSlotLockBusy(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	f.svc.locker = busyLocker{}
	user := seedUser(t, f.users, domain.RoleMember)

	_, err := f.svc.Create(context.Background(), user, booking(f.room(t, true), mustSlot(t, "2024-05-10", "10:00", "11:00")))
	assert.ErrorIs(t, err, domain.ErrSlotBusy)
	assert.Zero(t, f.repo.count())
}

func TestReservationService_ConcurrentOverlappingCreates(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	f.repo.listDelay = func(int) time.Duration { return 5 * time.Millisecond }
	roomID := f.room(t, true)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		user := seedUser(t, f.users, domain.RoleMember)
		start := []string{"10:00", "10:30", "09:45", "10:59"}[i%4]
		slot := mustSlot(t, "2024-05-10", start, "11:30")

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), user, booking(roomID, slot))
			switch {
			case err == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, err, domain.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), conflicts.Load())
	assert.Equal(t, 1, f.repo.count())
}

func TestReservationService_ExpiredLeaseRejectsLateWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := newReservationFixture(domain.ScopeRoom)
	f.svc.locker = redisdb.NewSlotLock(client, 100*time.Millisecond)
	first := seedUser(t, f.users, domain.RoleMember)
	second := seedUser(t, f.users, domain.RoleMember)
	roomID := f.room(t, true)
	slot := mustSlot(t, "2024-05-01", "09:00", "10:00")

	stalled := make(chan struct{})
	f.repo.listDelay = func(n int) time.Duration {
		if n == 0 {
			close(stalled)
			return 300 * time.Millisecond
		}
		return 0
	}

	slow := make(chan error, 1)
	go func() {
		_, err := f.svc.Create(context.Background(), first, booking(roomID, slot))
		slow <- err
	}()

	// The first holder has read an empty calendar; its key now expires.
	<-stalled
	mr.FastForward(time.Second)

	_, err := f.svc.Create(context.Background(), second, booking(roomID, slot))
	require.NoError(t, err)

	assert.ErrorIs(t, <-slow, domain.ErrSlotBusy)
	day := f.repo.onDay(slot.Date)
	require.Len(t, day, 1)
	assert.Equal(t, second.ID, day[0].UserID)
}

func TestReservationService_RenameKeepsConcurrentMove(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	owner := seedUser(t, f.users, domain.RoleMember)
	other := seedUser(t, f.users, domain.RoleMember)
	roomID := f.room(t, true)
	ctx := context.Background()

	morning := mustSlot(t, "2024-05-01", "09:00", "10:00")
	afternoon := mustSlot(t, "2024-05-01", "14:00", "15:00")
	res, err := f.svc.Create(ctx, owner, booking(roomID, morning))
	require.NoError(t, err)

	paused := make(chan struct{})
	resume := make(chan struct{})
	f.repo.beforeUpdate = func(n int) {
		if n == 0 {
			close(paused)
			<-resume
		}
	}

	type result struct {
		res *domain.Reservation
		err error
	}
	renamed := make(chan result, 1)
	go func() {
		r, err := f.svc.Update(ctx, owner, res.ID, domain.ReservationPatch{EventName: strPtr("Renamed")})
		renamed <- result{r, err}
	}()
	<-paused

	_, err = f.svc.Update(ctx, owner, res.ID, domain.ReservationPatch{Start: &afternoon.Start, End: &afternoon.End})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, other, booking(roomID, morning))
	require.NoError(t, err)

	close(resume)
	got := <-renamed
	require.NoError(t, got.err)
	assert.Equal(t, afternoon, got.res.Slot)

	stored, err := f.svc.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.EventName)
	assert.Equal(t, afternoon, stored.Slot)

	day := f.repo.onDay(morning.Date)
	require.Len(t, day, 2)
	assert.False(t, day[0].Slot.Overlaps(day[1].Slot))
}

func TestReservationService_LimitsCountCharacters(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	user := seedUser(t, f.users, domain.RoleMember)
	roomID := f.room(t, true)

	in := booking(roomID, mustSlot(t, "2024-05-01", "09:00", "10:00"))
	in.EventName = strings.Repeat("ñ", maxEventName)
	_, err := f.svc.Create(context.Background(), user, in)
	require.NoError(t, err)

	in = booking(roomID, mustSlot(t, "2024-05-01", "10:00", "11:00"))
	in.EventName = strings.Repeat("ñ", maxEventName+1)
	_, err = f.svc.Create(context.Background(), user, in)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReservationService_Update(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	owner := seedUser(t, f.users, domain.RoleMember)
	other := seedUser(t, f.users, domain.RoleMember)
	admin := seedUser(t, f.users, domain.RoleAdmin)
	roomID := f.room(t, true)
	ctx := context.Background()

	mine, err := f.svc.Create(ctx, owner, booking(roomID, mustSlot(t, "2024-05-10", "10:00", "11:00")))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, other, booking(roomID, mustSlot(t, "2024-05-10", "12:00", "13:00")))
	require.NoError(t, err)

	t.Run("moving within its own slot is not a conflict", func(t *testing.T) {
		end, err := domain.ParseTimeOfDay("11:30")
		require.NoError(t, err)
		updated, err := f.svc.Update(ctx, owner, mine.ID, domain.ReservationPatch{End: &end})
		require.NoError(t, err)
		assert.Equal(t, "10:00-11:30", updated.Slot.Start.String()+"-"+updated.Slot.End.String())
	})

	t.Run("moving onto another reservation conflicts", func(t *testing.T) {
		start, err := domain.ParseTimeOfDay("12:30")
		require.NoError(t, err)
		end, err := domain.ParseTimeOfDay("13:30")
		require.NoError(t, err)
		_, err = f.svc.Update(ctx, owner, mine.ID, domain.ReservationPatch{Start: &start, End: &end})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("merged range is validated", func(t *testing.T) {
		start, err := domain.ParseTimeOfDay("15:00")
		require.NoError(t, err)
		_, err = f.svc.Update(ctx, owner, mine.ID, domain.ReservationPatch{Start: &start})
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})

	t.Run("text only", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, owner, mine.ID, domain.ReservationPatch{EventName: strPtr("Standup")})
		require.NoError(t, err)
		assert.Equal(t, "Standup", updated.EventName)
	})

	t.Run("only the owner", func(t *testing.T) {
		_, err := f.svc.Update(ctx, other, mine.ID, domain.ReservationPatch{EventName: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = f.svc.Update(ctx, admin, mine.ID, domain.ReservationPatch{EventName: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("empty patch", func(t *testing.T) {
		_, err := f.svc.Update(ctx, owner, mine.ID, domain.ReservationPatch{})
		assert.ErrorIs(t, err, domain.ErrNothingToUpdate)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		_, err := f.svc.Update(ctx, owner, primitive.NewObjectID().Hex(), domain.ReservationPatch{EventName: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	})

	stored, err := f.svc.Get(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", stored.EventName)
	assert.Equal(t, mustSlot(t, "2024-05-10", "10:00", "11:30"), stored.Slot)
}

func TestReservationService_Delete(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	owner := seedUser(t, f.users, domain.RoleMember)
	other := seedUser(t, f.users, domain.RoleMember)
	admin := seedUser(t, f.users, domain.RoleAdmin)
	roomID := f.room(t, true)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, owner, booking(roomID, mustSlot(t, "2024-05-10", "10:00", "11:00")))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, owner, booking(roomID, mustSlot(t, "2024-05-10", "11:00", "12:00")))
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, other, first.ID), domain.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, owner, first.ID))
	require.NoError(t, f.svc.Delete(ctx, admin, second.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, owner, first.ID), domain.ErrReservationNotFound)

	// The freed slot can be booked again.
	_, err = f.svc.Create(ctx, other, booking(roomID, mustSlot(t, "2024-05-10", "10:00", "11:00")))
	assert.NoError(t, err)
}

func TestReservationService_History(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	owner := seedUser(t, f.users, domain.RoleMember)
	roomID := f.room(t, true)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, owner, booking(roomID, mustSlot(t, "2024-05-10", "10:00", "11:00")))
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, owner, res.ID, domain.ReservationPatch{Subject: strPtr("Physics")})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, owner, res.ID))

	events, err := f.svc.History(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.ActionCreated, events[0].Action)
	assert.Equal(t, domain.ActionUpdated, events[1].Action)
	assert.Equal(t, domain.ActionDeleted, events[2].Action)
	for _, e := range events {
		assert.Equal(t, owner.ID, e.ActorID)
		assert.Equal(t, roomID, e.RoomID)
	}

	_, err = f.svc.History(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestReservationService_ListFilters(t *testing.T) {
	f := newReservationFixture(domain.ScopeRoom)
	user := seedUser(t, f.users, domain.RoleMember)
	a, b := f.room(t, true), f.room(t, true)
	ctx := context.Background()

	for _, in := range []ports.CreateReservationInput{
		booking(a, mustSlot(t, "2024-05-10", "10:00", "11:00")),
		booking(a, mustSlot(t, "2024-05-11", "10:00", "11:00")),
		booking(b, mustSlot(t, "2024-05-10", "10:00", "11:00")),
	} {
		_, err := f.svc.Create(ctx, user, in)
		require.NoError(t, err)
	}

	all, err := f.svc.List(ctx, ports.ListReservationsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inA, err := f.svc.List(ctx, ports.ListReservationsFilter{RoomID: a})
	require.NoError(t, err)
	assert.Len(t, inA, 2)

	day := mustSlot(t, "2024-05-10", "00:00", "00:01").Date
	onDay, err := f.svc.List(ctx, ports.ListReservationsFilter{RoomID: a, Date: day})
	require.NoError(t, err)
	assert.Len(t, onDay, 1)
}
