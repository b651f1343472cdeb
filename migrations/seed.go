package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDemo inserts a handful of demo users and events for local
// development. It is a no-op when any event already exists.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if count > 0 {
		return nil
	}

	// Password for every demo account is "123456" (unsalted SHA-256,
	// matching the account format).
	const demoHash = "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92"
	users := []struct {
		studentID, username, email string
		collegeID                  int
	}{
		{"2021001", "san zhang", "zhangsan@edu.example", 1},
		{"2021002", "si li", "lisi@edu.example", 2},
		{"2021003", "wu wang", "wangwu@edu.example", 1},
	}
	for _, u := range users {
		if _, err := pool.Exec(ctx, `
INSERT INTO users (student_id, username, password_hash, college_id, email)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id) DO NOTHING`,
			u.studentID, u.username, demoHash, u.collegeID, u.email,
		); err != nil {
			return fmt.Errorf("seed user %s: %w", u.studentID, err)
		}
	}

	now := time.Now().UTC()
	events := []struct {
		title, description, location string
		startsIn                     time.Duration
		capacity                     int
	}{
		{"Campus Singer Contest", "Show your voice on the big stage.", "Student Activity Center", 7 * 24 * time.Hour, 100},
		{"Intro to Go Workshop", "Hands-on session for beginners, laptops provided.", "CS Building Lab 301", 3 * 24 * time.Hour, 50},
		{"Autumn Campus 5K", "Finisher medals for everyone who crosses the line.", "Main Track", 14 * 24 * time.Hour, 500},
		{"Career Planning Talk", "Resume clinics and Q&A with recruiters.", "Career Center Hall", 5 * 24 * time.Hour, 120},
	}
	for _, e := range events {
		starts := now.Add(e.startsIn)
		if _, err := pool.Exec(ctx, `
INSERT INTO events (title, description, location,
                    starts_at, ends_at, registration_opens_at, registration_ends_at,
                    capacity, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'published')`,
			e.title, e.description, e.location,
			starts, starts.Add(3*time.Hour), now, starts.Add(-24*time.Hour),
			e.capacity,
		); err != nil {
			return fmt.Errorf("seed event %s: %w", e.title, err)
		}
	}
	return nil
}
