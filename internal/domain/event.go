package domain

import "time"

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusClosed    EventStatus = "closed"
)

// Event is a capacity-limited activity students can register for.
// Occupancy is maintained transactionally alongside registrations and
// never exceeds Capacity.
type Event struct {
	ID                string
	Title             string
	Description       string
	OrganizerID       string
	Location          string
	StartsAt          time.Time
	EndsAt            time.Time
	RegistrationOpens time.Time
	RegistrationEnds  time.Time
	Capacity          int
	Occupancy         int
	Status            EventStatus
	CreatedAt         time.Time
}

// Remaining is the number of seats still available from the durable
// record's point of view.
func (e Event) Remaining() int {
	return e.Capacity - e.Occupancy
}
