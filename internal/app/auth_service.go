package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"mealtrack/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates that an account already exists for the email.
	ErrEmailTaken = errors.New("email already in use")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotAuthenticated indicates an operation that requires a remote
	// identity was invoked without one.
	ErrNotAuthenticated = errors.New("not authenticated")
)

const sessionTTL = 24 * time.Hour

// AuthService handles authentication and session management, and bootstraps
// a profile with default goals on first authentication.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	profiles domain.ProfileRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, profiles domain.ProfileRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions, profiles: profiles}
}

// Signup registers a new user, creates their profile with default goals,
// and opens a session.
func (s *AuthService) Signup(ctx context.Context, email, name, password, userAgent string) (string, *domain.User, error) {
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return "", nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.Create(ctx, email, name, string(hash))
	if err != nil {
		return "", nil, err
	}
	if err := s.ensureProfile(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.openSession(ctx, user.ID, userAgent)
	return token, user, err
}

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := s.ensureProfile(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.openSession(ctx, user.ID, userAgent)
	return token, user, err
}

// LoginWithUser creates a session for an already authenticated identity
// (e.g. via SSO), provisioning the user and profile if missing.
func (s *AuthService) LoginWithUser(ctx context.Context, email, name, userAgent string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		user, err = s.users.Create(ctx, email, name, "")
		if err != nil {
			// Creation may have raced another login; try once more.
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil || user == nil {
				return "", nil, err
			}
		}
	}
	if err := s.ensureProfile(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.openSession(ctx, user.ID, userAgent)
	return token, user, err
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks a session token and returns its user.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

func (s *AuthService) ensureProfile(ctx context.Context, user *domain.User) error {
	_, err := s.profiles.GetProfile(ctx, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return err
	}
	return s.profiles.CreateProfile(ctx, domain.NewUserProfile(user.ID, user.Email, user.Name))
}

func (s *AuthService) openSession(ctx context.Context, userID, userAgent string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, userID, token, userAgent, time.Now().Add(sessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
