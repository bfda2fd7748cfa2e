// Package memory implements in-memory repositories. It backs the guest
// local cache in every deployment and the full repository surface in
// development and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"mealtrack/internal/domain"

	"github.com/rs/xid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	meals    []domain.MealRecord
	users    []*domain.User
	profiles map[string]*domain.UserProfile
	sessions map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		profiles: make(map[string]*domain.UserProfile),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.MealRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- MealRepository ---

// Save stores a meal record, assigning its id and creation time.
func (db *DB) Save(ctx context.Context, m *domain.MealRecord) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	m.ID = xid.New().String()
	m.CreatedAt = time.Now().UTC()
	db.meals = append(db.meals, *m)
	return m.ID, nil
}

// QueryByOwner returns the owner's records newest-first by timestamp.
func (db *DB) QueryByOwner(ctx context.Context, ownerID string, q domain.MealQuery) ([]domain.MealRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.MealRecord
	for _, m := range db.meals {
		if m.OwnerID != ownerID {
			continue
		}
		if !q.Since.IsZero() && m.Timestamp.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && !m.Timestamp.Before(q.Until) {
			continue
		}
		result = append(result, m)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// Delete removes a record by id, scoped to the owner.
func (db *DB) Delete(ctx context.Context, ownerID, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, m := range db.meals {
		if m.ID == id && m.OwnerID == ownerID {
			db.meals = append(db.meals[:i], db.meals[i+1:]...)
			return nil
		}
	}
	return domain.ErrRecordNotFound
}

// DistinctTimestamps returns the set of stored meal instants for the owner.
func (db *DB) DistinctTimestamps(ctx context.Context, ownerID string) (map[string]struct{}, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make(map[string]struct{})
	for _, m := range db.meals {
		if m.OwnerID == ownerID {
			out[domain.TimestampKey(m.Timestamp)] = struct{}{}
		}
	}
	return out, nil
}

// Clear removes every record owned by ownerID.
func (db *DB) Clear(ctx context.Context, ownerID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	kept := db.meals[:0]
	for _, m := range db.meals {
		if m.OwnerID != ownerID {
			kept = append(kept, m)
		}
	}
	db.meals = kept
	return nil
}

// --- UserRepository ---

// GetByEmail retrieves a user by email. Returns nil if not found.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID. Returns nil if not found.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, email, name, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, errors.New("user already exists")
		}
	}

	u := &domain.User{
		ID:           xid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// --- ProfileRepository ---

// GetProfile retrieves a profile by user ID.
func (db *DB) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	// Copy so callers cannot mutate stored state.
	cp := *p
	cp.Stats.Badges = append([]string(nil), p.Stats.Badges...)
	return &cp, nil
}

// CreateProfile stores a new profile.
func (db *DB) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.profiles[p.UserID]; exists {
		return errors.New("profile already exists")
	}
	cp := *p
	db.profiles[p.UserID] = &cp
	return nil
}

// UpdateStats replaces the stats document of a profile.
func (db *DB) UpdateStats(ctx context.Context, userID string, stats domain.Stats) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Stats = stats
	p.Stats.Badges = append([]string(nil), stats.Badges...)
	return nil
}

// UpdateGoals replaces the goals of a profile.
func (db *DB) UpdateGoals(ctx context.Context, userID string, goals domain.Goals) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Goals = goals
	return nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID, token, userAgent string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
