package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lls2023049/campus-events/internal/domain"
)

type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RegistrationRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	const query = `
SELECT id, title, capacity, occupancy, status
FROM events
WHERE id = $1`

	var e domain.Event
	var status string
	err := r.queryRow(ctx, query, eventID).
		Scan(&e.ID, &e.Title, &e.Capacity, &e.Occupancy, &status)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	e.Status = domain.EventStatus(status)
	return e, nil
}

func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg domain.Registration) error {
	const stmt = `
INSERT INTO registrations (id, event_id, user_id, status, registered_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt, reg.ID, reg.EventID, reg.UserID, reg.Status, reg.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// AdjustOccupancy moves the event's occupancy by delta. The table's
// CHECK constraint rejects a move outside [0, capacity].
func (r *RegistrationRepository) AdjustOccupancy(ctx context.Context, eventID string, delta int) error {
	const stmt = `UPDATE events SET occupancy = occupancy + $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, eventID, delta)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrCapacityBounds
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("adjust occupancy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *RegistrationRepository) DeleteRegistration(ctx context.Context, eventID, userID string) (bool, error) {
	const stmt = `DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`

	tag, err := r.exec(ctx, stmt, eventID, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("delete registration: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]domain.UserRegistration, error) {
	const query = `
SELECT r.id, r.event_id, r.user_id, r.status, r.registered_at,
       e.title, e.starts_at, e.location
FROM registrations r
JOIN events e ON e.id = r.event_id
WHERE r.user_id = $1
ORDER BY r.registered_at DESC`

	rows, err := r.query(ctx, query, userID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []domain.UserRegistration
	for rows.Next() {
		var ur domain.UserRegistration
		var status string
		if err := rows.Scan(
			&ur.ID, &ur.EventID, &ur.UserID, &status, &ur.RegisteredAt,
			&ur.EventTitle, &ur.EventStartsAt, &ur.EventLocation,
		); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		ur.Status = domain.RegistrationStatus(status)
		out = append(out, ur)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return out, nil
}

func (r *RegistrationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RegistrationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *RegistrationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
