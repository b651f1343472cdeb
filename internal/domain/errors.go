package domain

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrCapacityBounds       = errors.New("occupancy outside capacity bounds")
	ErrStudentIDTaken       = errors.New("student id already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTitleRequired        = errors.New("title required")
	ErrInvalidCapacity      = errors.New("invalid capacity")
	ErrInvalidSchedule      = errors.New("invalid schedule")
	ErrInvalidID            = errors.New("invalid id")
)
