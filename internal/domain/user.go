package domain

import "time"

// User is a registered student account.
type User struct {
	ID           string
	StudentID    string
	Username     string
	PasswordHash string
	CollegeID    int
	Email        string
	Phone        string
	CreatedAt    time.Time
}

// Session is the cached login projection of a user.
type Session struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	CollegeID int    `json:"college_id"`
}
