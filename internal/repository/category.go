package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/pkg/supabase"
)

type categoryRepository struct {
	client *supabase.Client
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(client *supabase.Client) CategoryRepository {
	return &categoryRepository{client: client}
}

func (r *categoryRepository) FindByUser(ctx context.Context, userID string) ([]models.Category, error) {
	query := url.Values{
		"user_id": {supabase.Eq(userID)},
		"order":   {"created_at.asc"},
	}

	body, err := r.client.Select(ctx, "categories", query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return decodeRows[models.Category](body)
}

func (r *categoryRepository) GetByID(ctx context.Context, userID, id string) (*models.Category, error) {
	body, err := r.client.Select(ctx, "categories", owned(userID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return firstRow[models.Category](body)
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	data := map[string]interface{}{
		"user_id": category.UserID,
		"name":    category.Name,
		"color":   category.Color,
	}

	body, err := r.client.Insert(ctx, "categories", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", mapClientError(err))
	}
	return firstRow[models.Category](body)
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) (*models.Category, error) {
	data := map[string]interface{}{
		"name":       category.Name,
		"color":      category.Color,
		"updated_at": time.Now().UTC(),
	}

	body, err := r.client.Update(ctx, "categories", owned(category.UserID, category.ID), data)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return firstRow[models.Category](body)
}

func (r *categoryRepository) Delete(ctx context.Context, userID, id string) error {
	body, err := r.client.Delete(ctx, "categories", owned(userID, id))
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	_, err = firstRow[models.Category](body)
	return err
}
