package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/agendaav/room-booking/internal/api/metrics"
	"github.com/agendaav/room-booking/internal/core/domain"
	"github.com/agendaav/room-booking/internal/core/ports"
)

const (
	maxEventName   = 100
	maxDescription = 300
	maxSubject     = 100

	// maxMoveAttempts bounds how often a move is retried when a concurrent
	// move changes the calendar it has to lock.
	maxMoveAttempts = 3
)

// errCalendarChanged is returned under a lock that no longer guards the
// reservation's destination calendar.
var errCalendarChanged = errors.New("reservation moved to another calendar")

// ReservationService is the scheduler. Every write that can change a
// calendar runs its overlap check and its store write under the slot lock of
// the destination calendar, bounded by the lock's lease, so two concurrent
// requests can never both pass the check for intersecting slots. Writes that
// leave the schedule alone touch only their own fields and need no lock.
type ReservationService struct {
	repo   ports.ReservationRepository
	rooms  ports.RoomRepository
	events ports.ReservationEventRepository
	locker ports.SlotLocker
	audit  ports.AuditRecorder
	scope  domain.ScheduleScope
	now    func() time.Time
	log    zerolog.Logger
}

func NewReservationService(
	repo ports.ReservationRepository,
	rooms ports.RoomRepository,
	events ports.ReservationEventRepository,
	locker ports.SlotLocker,
	audit ports.AuditRecorder,
	scope domain.ScheduleScope,
	log zerolog.Logger,
) *ReservationService {
	if !scope.Valid() {
		scope = domain.ScopeRoom
	}
	if audit == nil {
		audit = noopAudit{}
	}
	return &ReservationService{
		repo:   repo,
		rooms:  rooms,
		events: events,
		locker: locker,
		audit:  audit,
		scope:  scope,
		now:    time.Now,
		log:    log,
	}
}

// Create admits a reservation for actor if its slot is free on its calendar.
func (s *ReservationService) Create(ctx context.Context, actor *domain.User, input ports.CreateReservationInput) (res *domain.Reservation, err error) {
	defer observe("create", time.Now(), &err)

	if actor == nil || actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}

	candidate := &domain.Reservation{
		RoomID:      strings.TrimSpace(input.RoomID),
		UserID:      actor.ID,
		UserName:    actor.Name,
		EventName:   strings.TrimSpace(input.EventName),
		Description: strings.TrimSpace(input.Description),
		Subject:     strings.TrimSpace(input.Subject),
		Slot:        input.Slot,
	}
	if err := validateReservation(candidate); err != nil {
		return nil, err
	}
	if err := s.checkRoom(ctx, candidate.RoomID); err != nil {
		return nil, err
	}

	err = s.withCalendarLock(ctx, s.calendarKey(candidate), func(lease context.Context) error {
		if err := s.ensureFree(lease, candidate, "create"); err != nil {
			return err
		}
		if err := lease.Err(); err != nil {
			return err
		}
		now := s.now().UTC()
		candidate.CreatedAt = now
		candidate.UpdatedAt = now

		created, err := s.repo.Create(lease, candidate)
		if err != nil {
			return err
		}
		res = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationsCreatedTotal.WithLabelValues(string(s.scope)).Inc()
	s.record(domain.ActionCreated, actor.ID, res)
	s.log.Info().
		Str("reservation_id", res.ID).
		Str("room_id", res.RoomID).
		Str("user_id", actor.ID).
		Str("slot", res.Slot.String()).
		Msg("reservation created")
	return res, nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, filter ports.ListReservationsFilter) ([]*domain.Reservation, error) {
	return s.repo.List(ctx, filter)
}

// Update merges patch into the actor's reservation. A patch that moves the
// reservation is checked for overlaps again, excluding the reservation
// itself; one that does not only rewrites the fields it names.
func (s *ReservationService) Update(ctx context.Context, actor *domain.User, id string, patch domain.ReservationPatch) (res *domain.Reservation, err error) {
	defer observe("update", time.Now(), &err)

	if actor == nil || actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	existing, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, domain.ErrNothingToUpdate
	}
	patch = trimPatch(patch)

	if patch.TouchesSchedule() {
		res, err = s.move(ctx, actor, existing, patch)
	} else {
		res, err = s.updateDetails(ctx, existing, patch)
	}
	if err != nil {
		return nil, err
	}

	s.record(domain.ActionUpdated, actor.ID, res)
	s.log.Info().Str("reservation_id", id).Str("user_id", actor.ID).Msg("reservation updated")
	return res, nil
}

func (s *ReservationService) updateDetails(ctx context.Context, existing *domain.Reservation, patch domain.ReservationPatch) (*domain.Reservation, error) {
	merged := patch.Apply(*existing)
	merged.UpdatedAt = s.now().UTC()
	if err := validateReservation(&merged); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &merged, patch); err != nil {
		return nil, err
	}
	// Re-read so a slot moved concurrently is reported as stored.
	return s.repo.FindByID(ctx, existing.ID)
}

// move re-reads the reservation under the destination calendar's lock and
// merges patch into that fresh copy. When a concurrent move has changed the
// destination in the meantime it starts over with the new calendar.
func (s *ReservationService) move(ctx context.Context, actor *domain.User, existing *domain.Reservation, patch domain.ReservationPatch) (*domain.Reservation, error) {
	if patch.RoomID != nil {
		if err := s.checkRoom(ctx, *patch.RoomID); err != nil {
			return nil, err
		}
	}

	current := existing
	for attempt := 0; attempt < maxMoveAttempts; attempt++ {
		merged := patch.Apply(*current)
		if err := validateReservation(&merged); err != nil {
			return nil, err
		}
		key := s.calendarKey(&merged)

		var moved *domain.Reservation
		err := s.withCalendarLock(ctx, key, func(lease context.Context) error {
			fresh, err := s.loadOwned(lease, actor, current.ID)
			if err != nil {
				return err
			}
			next := patch.Apply(*fresh)
			if s.calendarKey(&next) != key {
				current = fresh
				return errCalendarChanged
			}
			if err := validateReservation(&next); err != nil {
				return err
			}
			if err := s.ensureFree(lease, &next, "update"); err != nil {
				return err
			}
			if err := lease.Err(); err != nil {
				return err
			}
			next.UpdatedAt = s.now().UTC()
			if err := s.repo.Update(lease, &next, patch); err != nil {
				return err
			}
			moved = &next
			return nil
		})
		if errors.Is(err, errCalendarChanged) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return moved, nil
	}
	return nil, domain.ErrSlotBusy
}

// Delete removes a reservation. Only its owner or an administrator may do so.
func (s *ReservationService) Delete(ctx context.Context, actor *domain.User, id string) (err error) {
	defer observe("delete", time.Now(), &err)

	if actor == nil || actor.ID == "" {
		return domain.ErrUnauthorized
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(existing.UserID) && !actor.IsAdmin() {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(domain.ActionDeleted, actor.ID, existing)
	s.log.Info().Str("reservation_id", id).Str("user_id", actor.ID).Msg("reservation deleted")
	return nil
}

// History lists the audit trail of a reservation, which outlives the
// reservation itself.
func (s *ReservationService) History(ctx context.Context, id string) ([]*domain.ReservationEvent, error) {
	events, err := s.events.ListEvents(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// loadOwned fetches a reservation and checks the actor owns it.
func (s *ReservationService) loadOwned(ctx context.Context, actor *domain.User, id string) (*domain.Reservation, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(r.UserID) {
		return nil, domain.ErrForbidden
	}
	return r, nil
}

// ensureFree loads the candidate's calendar for its day and fails with
// ErrConflict when any other reservation overlaps it.
func (s *ReservationService) ensureFree(ctx context.Context, candidate *domain.Reservation, operation string) error {
	roomFilter := ""
	if s.scope == domain.ScopeRoom {
		roomFilter = candidate.RoomID
	}

	sameDay, err := s.repo.ListByDate(ctx, candidate.Slot.Date, roomFilter)
	if err != nil {
		return fmt.Errorf("load calendar: %w", err)
	}

	if clash := domain.FindConflict(s.scope, sameDay, candidate); clash != nil {
		metrics.ReservationConflictsTotal.WithLabelValues(operation).Inc()
		s.log.Debug().
			Str("conflicts_with", clash.ID).
			Str("slot", candidate.Slot.String()).
			Msg("slot conflict")
		return domain.ErrConflict
	}
	return nil
}

func (s *ReservationService) calendarKey(r *domain.Reservation) string {
	return s.scope.CalendarKey(r.RoomID, r.Slot.Date)
}

// withCalendarLock runs fn under the lock of one calendar. fn must do all its
// store work with the lease context it is handed.
func (s *ReservationService) withCalendarLock(ctx context.Context, key string, fn func(lease context.Context) error) error {
	lease, release, err := s.locker.Lock(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSlotBusy) {
			metrics.SlotLockWaitsTotal.WithLabelValues("busy").Inc()
		}
		return err
	}
	metrics.SlotLockWaitsTotal.WithLabelValues("acquired").Inc()
	defer release()

	err = fn(lease)
	if err != nil && lease.Err() != nil && ctx.Err() == nil && !errors.Is(err, domain.ErrConflict) {
		metrics.SlotLockWaitsTotal.WithLabelValues("expired").Inc()
		s.log.Warn().Err(err).Str("calendar", key).Msg("slot lease ran out before the write")
		return domain.ErrSlotBusy
	}
	return err
}

// checkRoom resolves roomID against the registry. In room scope a room is
// mandatory; in global scope it is optional.
func (s *ReservationService) checkRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		if s.scope == domain.ScopeRoom {
			return fmt.Errorf("%w: room_id is required", domain.ErrValidation)
		}
		return nil
	}
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.Available {
		return domain.ErrRoomUnavailable
	}
	return nil
}

func (s *ReservationService) record(action domain.ReservationAction, actorID string, r *domain.Reservation) {
	s.audit.Record(domain.ReservationEvent{
		ReservationID: r.ID,
		Action:        action,
		ActorID:       actorID,
		RoomID:        r.RoomID,
		Slot:          r.Slot,
		OccurredAt:    s.now().UTC(),
	})
}

func validateReservation(r *domain.Reservation) error {
	switch {
	case r.EventName == "":
		return fmt.Errorf("%w: event_name is required", domain.ErrValidation)
	case utf8.RuneCountInString(r.EventName) > maxEventName:
		return fmt.Errorf("%w: event_name must be at most %d characters", domain.ErrValidation, maxEventName)
	case utf8.RuneCountInString(r.Description) > maxDescription:
		return fmt.Errorf("%w: description must be at most %d characters", domain.ErrValidation, maxDescription)
	case utf8.RuneCountInString(r.Subject) > maxSubject:
		return fmt.Errorf("%w: subject must be at most %d characters", domain.ErrValidation, maxSubject)
	}
	return r.Slot.Validate()
}

func trimPatch(p domain.ReservationPatch) domain.ReservationPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	p.RoomID = trim(p.RoomID)
	p.EventName = trim(p.EventName)
	p.Description = trim(p.Description)
	p.Subject = trim(p.Subject)
	return p
}

func observe(operation string, start time.Time, err *error) {
	outcome := "ok"
	if *err != nil {
		outcome = "error"
	}
	metrics.ReservationOperationDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

type noopAudit struct{}

func (noopAudit) Record(domain.ReservationEvent) {}
