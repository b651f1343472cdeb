package app

import (
	"context"
	"testing"
	"time"

	"github.com/lls2023049/campus-events/internal/cache"
	"github.com/lls2023049/campus-events/internal/clock"
	"github.com/lls2023049/campus-events/internal/domain"
)

func TestUserService_Register(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	store := cache.NewMemory(clock.NewFixed(now))
	svc := NewUserService(repo, store, clock.NewFixed(now))

	user, err := svc.Register(ctx, RegisterUserInput{
		StudentID: "2021001",
		Username:  "san zhang",
		Password:  "123456",
		CollegeID: 1,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected user ID to be set")
	}
	if user.PasswordHash == "123456" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed")
	}

	if _, err := svc.Register(ctx, RegisterUserInput{
		StudentID: "2021001",
		Username:  "someone else",
		Password:  "abcdef",
	}); err != domain.ErrStudentIDTaken {
		t.Fatalf("expected ErrStudentIDTaken, got %v", err)
	}

	if _, err := svc.Register(ctx, RegisterUserInput{Username: "x", Password: "y"}); err != errStudentIDRequired {
		t.Fatalf("expected errStudentIDRequired, got %v", err)
	}
}

func TestUserService_LoginAndSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewManual(now)
	repo := newFakeUserRepo()
	store := cache.NewMemory(clk)
	svc := NewUserService(repo, store, clk)

	if _, err := svc.Register(ctx, RegisterUserInput{
		StudentID: "2021002",
		Username:  "si li",
		Password:  "hunter2",
		CollegeID: 2,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := svc.Login(ctx, "2021002", "wrong"); err != domain.ErrInvalidCredentials {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	sessionID, session, err := svc.Login(ctx, "2021002", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sessionID == "" {
		t.Fatalf("expected session id")
	}
	if session.Username != "si li" || session.CollegeID != 2 {
		t.Fatalf("unexpected session %+v", session)
	}

	got, ok, err := svc.CurrentUser(ctx, sessionID)
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}
	if got.UserID != session.UserID {
		t.Fatalf("expected session for %s, got %s", session.UserID, got.UserID)
	}

	t.Run("session expires", func(t *testing.T) {
		clk.Advance(31 * time.Minute)
		if _, ok, _ := svc.CurrentUser(ctx, sessionID); ok {
			t.Fatalf("expected session to expire after its TTL")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, ok, _ := svc.CurrentUser(ctx, "bogus"); ok {
			t.Fatalf("expected unknown session to be absent")
		}
	})
}

type fakeUserRepo struct {
	byStudentID map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byStudentID: make(map[string]domain.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user domain.User) error {
	if _, exists := f.byStudentID[user.StudentID]; exists {
		return domain.ErrStudentIDTaken
	}
	f.byStudentID[user.StudentID] = user
	return nil
}

func (f *fakeUserRepo) GetByCredentials(_ context.Context, studentID, passwordHash string) (domain.User, error) {
	user, ok := f.byStudentID[studentID]
	if !ok || user.PasswordHash != passwordHash {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}
