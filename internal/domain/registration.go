package domain

import "time"

type RegistrationStatus string

const (
	RegistrationStatusConfirmed RegistrationStatus = "confirmed"
)

// Registration records one user's seat at one event. At most one
// registration per (event, user) pair exists at any time.
type Registration struct {
	ID           string
	EventID      string
	UserID       string
	Status       RegistrationStatus
	RegisteredAt time.Time
}

// UserRegistration is the list-view projection joining a registration
// with the event it belongs to.
type UserRegistration struct {
	Registration
	EventTitle    string
	EventStartsAt time.Time
	EventLocation string
}
