package domain

import (
	"fmt"
	"time"
)

// ScheduleScope decides which reservations share a calendar.
type ScheduleScope string

const (
	// ScopeRoom gives every room its own calendar.
	ScopeRoom ScheduleScope = "room"
	// ScopeGlobal treats all reservations as bookings of one shared resource.
	ScopeGlobal ScheduleScope = "global"
)

func (s ScheduleScope) Valid() bool {
	return s == ScopeRoom || s == ScopeGlobal
}

// CalendarKey names the calendar a reservation on day d belongs to.
func (s ScheduleScope) CalendarKey(roomID string, d Date) string {
	if s == ScopeGlobal {
		return fmt.Sprintf("global:%s", d)
	}
	return fmt.Sprintf("room:%s:%s", roomID, d)
}

// SameCalendar reports whether a and b compete for the same time slots.
func (s ScheduleScope) SameCalendar(a, b *Reservation) bool {
	if s == ScopeGlobal {
		return true
	}
	return a.RoomID == b.RoomID
}

// Reservation is a time-bounded booking owned by a user.
type Reservation struct {
	ID          string
	RoomID      string
	UserID      string
	UserName    string
	EventName   string
	Description string
	Subject     string
	Slot        Slot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReservationPatch carries a partial update; nil fields keep their value.
type ReservationPatch struct {
	RoomID      *string
	EventName   *string
	Description *string
	Subject     *string
	Date        *Date
	Start       *TimeOfDay
	End         *TimeOfDay
}

func (p ReservationPatch) Empty() bool {
	return p.RoomID == nil && p.EventName == nil && p.Description == nil &&
		p.Subject == nil && p.Date == nil && p.Start == nil && p.End == nil
}

// TouchesSchedule reports whether applying p can move the reservation.
func (p ReservationPatch) TouchesSchedule() bool {
	return p.RoomID != nil || p.Date != nil || p.Start != nil || p.End != nil
}

// Apply returns a copy of r with the present fields of p merged in.
func (p ReservationPatch) Apply(r Reservation) Reservation {
	if p.RoomID != nil {
		r.RoomID = *p.RoomID
	}
	if p.EventName != nil {
		r.EventName = *p.EventName
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Subject != nil {
		r.Subject = *p.Subject
	}
	if p.Date != nil {
		r.Slot.Date = *p.Date
	}
	if p.Start != nil {
		r.Slot.Start = *p.Start
	}
	if p.End != nil {
		r.Slot.End = *p.End
	}
	return r
}

// FindConflict returns the first reservation in existing that shares a
// calendar with candidate and overlaps its slot. Entries with the
// candidate's own ID are skipped so updates do not collide with themselves.
func FindConflict(scope ScheduleScope, existing []*Reservation, candidate *Reservation) *Reservation {
	for _, r := range existing {
		if r == nil || (candidate.ID != "" && r.ID == candidate.ID) {
			continue
		}
		if !scope.SameCalendar(r, candidate) {
			continue
		}
		if r.Slot.Overlaps(candidate.Slot) {
			return r
		}
	}
	return nil
}
