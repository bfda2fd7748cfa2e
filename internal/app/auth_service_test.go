package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealtrack/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.User, error)
	createFn     func(ctx context.Context, email, name, passwordHash string) (*domain.User, error)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, email, name, passwordHash)
	}
	return &domain.User{ID: "u1", Email: email, Name: name, PasswordHash: passwordHash}, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, userID, token, userAgent string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID, token, userAgent string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

type stubProfiles struct {
	getFn    func(ctx context.Context, userID string) (*domain.UserProfile, error)
	createFn func(ctx context.Context, p *domain.UserProfile) error
}

func (s *stubProfiles) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if s.getFn != nil {
		return s.getFn(ctx, userID)
	}
	return nil, domain.ErrProfileNotFound
}

func (s *stubProfiles) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	if s.createFn != nil {
		return s.createFn(ctx, p)
	}
	return nil
}

func (s *stubProfiles) UpdateStats(ctx context.Context, userID string, stats domain.Stats) error {
	return nil
}

func (s *stubProfiles) UpdateGoals(ctx context.Context, userID string, goals domain.Goals) error {
	return nil
}

func TestAuthService_Signup_CreatesProfileWithDefaults(t *testing.T) {
	ctx := context.Background()

	var created *domain.UserProfile
	profiles := &stubProfiles{
		createFn: func(ctx context.Context, p *domain.UserProfile) error {
			created = p
			return nil
		},
	}
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{}, profiles)

	token, user, err := svc.Signup(ctx, "a@example.com", "Ada", "secretpass", "test-agent")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
	if user == nil || user.Email != "a@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if created == nil {
		t.Fatal("expected a profile to be created")
	}
	if created.Goals != domain.DefaultGoals() {
		t.Errorf("goals = %+v; want defaults", created.Goals)
	}
	if created.Stats.TotalMeals != 0 || len(created.Stats.Badges) != 0 {
		t.Errorf("stats = %+v; want zeroed", created.Stats)
	}
}

func TestAuthService_Signup_EmailTaken(t *testing.T) {
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{}, &stubProfiles{})

	_, _, err := svc.Signup(context.Background(), "a@example.com", "Ada", "secretpass", "")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: "a@example.com", PasswordHash: string(hash)}, nil
		},
	}
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID, token, userAgent string, expiresAt time.Time) error {
			if userID != "u1" {
				t.Errorf("expected userID u1, got %s", userID)
			}
			if token == "" {
				t.Error("token should not be empty")
			}
			return nil
		},
	}
	profiles := &stubProfiles{
		getFn: func(ctx context.Context, userID string) (*domain.UserProfile, error) {
			return &domain.UserProfile{UserID: userID}, nil
		},
	}
	svc := NewAuthService(users, sessions, profiles)

	token, _, err := svc.Login(ctx, "a@example.com", password, "test-agent")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", PasswordHash: string(hash)}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{}, &stubProfiles{})

	_, _, err := svc.Login(context.Background(), "a@example.com", "wrongpass", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{}, &stubProfiles{})

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "pass", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginWithUser_ProvisionsOnFirstSSO(t *testing.T) {
	ctx := context.Background()

	var createdUser bool
	users := &mockUserRepo{
		createFn: func(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
			createdUser = true
			if passwordHash != "" {
				t.Error("SSO users should not carry a password hash")
			}
			return &domain.User{ID: "u9", Email: email, Name: name}, nil
		},
	}
	var createdProfile bool
	profiles := &stubProfiles{
		createFn: func(ctx context.Context, p *domain.UserProfile) error {
			createdProfile = true
			return nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{}, profiles)

	token, user, err := svc.LoginWithUser(ctx, "sso@example.com", "Sso User", "agent")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" || user == nil || user.ID != "u9" {
		t.Fatalf("token=%q user=%+v", token, user)
	}
	if !createdUser || !createdProfile {
		t.Errorf("createdUser=%v createdProfile=%v; want both", createdUser, createdProfile)
	}
}

func TestAuthService_ValidateSession(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: "u1", Email: "a@example.com"}

	tests := []struct {
		name    string
		session *domain.Session
		wantErr error
	}{
		{
			"valid session",
			&domain.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
			nil,
		},
		{
			"expired session",
			&domain.Session{Token: "tok", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)},
			ErrSessionExpired,
		},
		{
			"missing session",
			nil,
			ErrSessionNotFound,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &mockSessionRepo{
				getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
					if tc.session == nil {
						return nil, errors.New("not found")
					}
					return tc.session, nil
				},
			}
			users := &mockUserRepo{
				getByIDFn: func(ctx context.Context, id string) (*domain.User, error) { return user, nil },
			}
			svc := NewAuthService(users, sessions, &stubProfiles{})

			got, err := svc.ValidateSession(ctx, "tok")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got == nil || got.ID != "u1" {
				t.Fatalf("unexpected user: %+v", got)
			}
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	var deleted string
	sessions := &mockSessionRepo{
		deleteFn: func(ctx context.Context, token string) error {
			deleted = token
			return nil
		},
	}
	svc := NewAuthService(&mockUserRepo{}, sessions, &stubProfiles{})

	if err := svc.Logout(context.Background(), "tok"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleted != "tok" {
		t.Errorf("deleted token = %q; want tok", deleted)
	}
}
