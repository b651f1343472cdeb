package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lls2023049/campus-events/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `
INSERT INTO users (id, student_id, username, password_hash, college_id, email, phone, created_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)`

	_, err := r.pool.Exec(ctx, stmt,
		user.ID,
		user.StudentID,
		user.Username,
		user.PasswordHash,
		user.CollegeID,
		user.Email,
		user.Phone,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrStudentIDTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByCredentials(ctx context.Context, studentID, passwordHash string) (domain.User, error) {
	const query = `
SELECT id, student_id, username, college_id, COALESCE(email, ''), COALESCE(phone, ''), created_at
FROM users
WHERE student_id = $1 AND password_hash = $2`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, studentID, passwordHash).
		Scan(&u.ID, &u.StudentID, &u.Username, &u.CollegeID, &u.Email, &u.Phone, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("get user by credentials: %w", err)
	}
	u.PasswordHash = passwordHash
	return u, nil
}
