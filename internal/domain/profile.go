package domain

import (
	"context"
	"errors"
	"time"
)

// ErrProfileNotFound indicates that no profile exists for a user.
var ErrProfileNotFound = errors.New("profile not found")

// Goals are a user's daily macro targets in whole units.
type Goals struct {
	Calories int `json:"calorieGoal"`
	Protein  int `json:"proteinGoal"`
	Carbs    int `json:"carbsGoal"`
	Fats     int `json:"fatsGoal"`
}

// DefaultGoals are applied when a profile is created on first authentication.
func DefaultGoals() Goals {
	return Goals{Calories: 2000, Protein: 150, Carbs: 250, Fats: 65}
}

// Stats is the derived statistics document kept on a profile.
type Stats struct {
	TotalMeals    int      `json:"totalMeals"`
	CurrentStreak int      `json:"currentStreak"`
	LongestStreak int      `json:"longestStreak"`
	Badges        []string `json:"badges"`
}

// HasBadge reports whether the badge id has already been earned.
func (s *Stats) HasBadge(id string) bool {
	for _, b := range s.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// AddBadges appends ids not already present, keeping Badges a set.
func (s *Stats) AddBadges(ids []string) {
	for _, id := range ids {
		if !s.HasBadge(id) {
			s.Badges = append(s.Badges, id)
		}
	}
}

// UserProfile holds a user's goals and derived stats. Created with defaults
// on first authentication; never deleted by this core.
type UserProfile struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Goals     Goals     `json:"goals"`
	Stats     Stats     `json:"stats"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserProfile creates a profile with default goals and zeroed stats.
func NewUserProfile(userID, email, name string) *UserProfile {
	return &UserProfile{
		UserID:    userID,
		Email:     email,
		Name:      name,
		Goals:     DefaultGoals(),
		CreatedAt: time.Now().UTC(),
	}
}

// ProfileRepository is the port for profile persistence.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	CreateProfile(ctx context.Context, p *UserProfile) error
	UpdateStats(ctx context.Context, userID string, stats Stats) error
	UpdateGoals(ctx context.Context, userID string, goals Goals) error
}
