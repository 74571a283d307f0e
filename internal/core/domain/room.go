package domain

import "time"

// Room is a bookable shared resource. Rooms have no owner.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  *int
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomPatch carries a partial room update; nil fields are left untouched.
type RoomPatch struct {
	Name      *string
	Location  *string
	Capacity  *int
	Available *bool
}

// Empty reports whether the patch changes nothing.
func (p RoomPatch) Empty() bool {
	return p.Name == nil && p.Location == nil && p.Capacity == nil && p.Available == nil
}

// Apply merges the present fields of p into r.
func (p RoomPatch) Apply(r *Room) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Location != nil {
		r.Location = *p.Location
	}
	if p.Capacity != nil {
		c := *p.Capacity
		r.Capacity = &c
	}
	if p.Available != nil {
		r.Available = *p.Available
	}
}
