package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/lls2023049/campus-events/internal/cache"
	"github.com/lls2023049/campus-events/internal/clock"
	"github.com/lls2023049/campus-events/internal/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetByCredentials(ctx context.Context, studentID, passwordHash string) (domain.User, error)
}

const defaultSessionTTL = 30 * time.Minute

var (
	errStudentIDRequired = errors.New("student id required")
	errUsernameRequired  = errors.New("username required")
	errPasswordRequired  = errors.New("password required")
)

// IsUserValidationError reports whether err is a sign-up field
// validation failure rather than a storage error.
func IsUserValidationError(err error) bool {
	return errors.Is(err, errStudentIDRequired) ||
		errors.Is(err, errUsernameRequired) ||
		errors.Is(err, errPasswordRequired)
}

// UserService handles sign-up, login, and session lookup. Sessions are
// cache entries, not durable records; they vanish on restart or after
// the TTL.
type UserService struct {
	repo       UserRepository
	cache      cache.Store
	clock      clock.Clock
	sessionTTL time.Duration
}

func NewUserService(repo UserRepository, store cache.Store, clk clock.Clock) *UserService {
	return &UserService{
		repo:       repo,
		cache:      store,
		clock:      clk,
		sessionTTL: defaultSessionTTL,
	}
}

type RegisterUserInput struct {
	StudentID string
	Username  string
	Password  string
	CollegeID int
	Email     string
	Phone     string
}

func (s *UserService) Register(ctx context.Context, in RegisterUserInput) (domain.User, error) {
	if in.StudentID == "" {
		return domain.User{}, errStudentIDRequired
	}
	if in.Username == "" {
		return domain.User{}, errUsernameRequired
	}
	if in.Password == "" {
		return domain.User{}, errPasswordRequired
	}

	user := domain.User{
		ID:           newUUID(),
		StudentID:    in.StudentID,
		Username:     in.Username,
		PasswordHash: hashPassword(in.Password),
		CollegeID:    in.CollegeID,
		Email:        in.Email,
		Phone:        in.Phone,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login authenticates a student and issues a cached session.
func (s *UserService) Login(ctx context.Context, studentID, password string) (string, domain.Session, error) {
	user, err := s.repo.GetByCredentials(ctx, studentID, hashPassword(password))
	if err != nil {
		return "", domain.Session{}, err
	}

	session := domain.Session{
		UserID:    user.ID,
		Username:  user.Username,
		CollegeID: user.CollegeID,
	}
	sessionID := NewSessionID()

	raw, err := json.Marshal(session)
	if err != nil {
		return "", domain.Session{}, err
	}
	if err := s.cache.Set(ctx, cache.SessionKey(sessionID), raw, s.sessionTTL); err != nil {
		return "", domain.Session{}, err
	}
	return sessionID, session, nil
}

// CurrentUser resolves a session ID, reporting false when the session
// is absent or expired.
func (s *UserService) CurrentUser(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	raw, ok, err := s.cache.Get(ctx, cache.SessionKey(sessionID))
	if err != nil || !ok {
		return domain.Session{}, false, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, false, err
	}
	return session, true, nil
}

// hashPassword matches the legacy account format: unsalted SHA-256 in
// hex. Credential strength is out of scope here.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
