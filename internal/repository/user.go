package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/pkg/supabase"
)

// userRow is the users table; password_hash is not part of models.User's JSON
type userRow struct {
	ID             string             `json:"id"`
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	Name           string             `json:"name"`
	ProfilePicture string             `json:"profile_picture"`
	PasswordHash   string             `json:"password_hash"`
	Preferences    models.Preferences `json:"preferences"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email,
		Name:           r.Name,
		ProfilePicture: r.ProfilePicture,
		PasswordHash:   r.PasswordHash,
		Preferences:    r.Preferences,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type userRepository struct {
	client *supabase.Client
}

// NewUserRepository creates a new user repository
func NewUserRepository(client *supabase.Client) UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	data := map[string]interface{}{
		"username":        user.Username,
		"email":           user.Email,
		"name":            user.Name,
		"profile_picture": user.ProfilePicture,
		"password_hash":   user.PasswordHash,
		"preferences":     user.Preferences,
	}

	body, err := r.client.Insert(ctx, "users", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapClientError(err))
	}

	row, err := firstRow[userRow](body)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return row.toModel(), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, url.Values{"id": {supabase.Eq(id)}})
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, url.Values{"username": {supabase.Eq(username)}})
}

func (r *userRepository) getOne(ctx context.Context, query url.Values) (*models.User, error) {
	body, err := r.client.Select(ctx, "users", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	row, err := firstRow[userRow](body)
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

type preferencesRepository struct {
	client *supabase.Client
}

// NewPreferencesRepository creates a repository over the preferences column of users
func NewPreferencesRepository(client *supabase.Client) PreferencesRepository {
	return &preferencesRepository{client: client}
}

type preferencesRow struct {
	Preferences models.Preferences `json:"preferences"`
}

func (r *preferencesRepository) Get(ctx context.Context, userID string) (*models.Preferences, error) {
	query := url.Values{
		"id":     {supabase.Eq(userID)},
		"select": {"preferences"},
	}

	body, err := r.client.Select(ctx, "users", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	row, err := firstRow[preferencesRow](body)
	if err != nil {
		return nil, err
	}
	return &row.Preferences, nil
}

func (r *preferencesRepository) Update(ctx context.Context, userID string, prefs *models.Preferences) (*models.Preferences, error) {
	query := url.Values{
		"id":     {supabase.Eq(userID)},
		"select": {"preferences"},
	}
	data := map[string]interface{}{
		"preferences": prefs,
		"updated_at":  time.Now().UTC(),
	}

	body, err := r.client.Update(ctx, "users", query, data)
	if err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}

	row, err := firstRow[preferencesRow](body)
	if err != nil {
		return nil, err
	}
	return &row.Preferences, nil
}
