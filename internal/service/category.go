package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

// DefaultCategoryColor is used when a category is created without a color
const DefaultCategoryColor = "#6B7280"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	categories, err := s.categoryRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, userID string, req *models.CreateCategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidField("name", CodeRequired, "name is required")
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = DefaultCategoryColor
	} else if !hexColor.MatchString(color) {
		return nil, invalidField("color", CodeInvalid, "color must be a hex code such as #1E90FF")
	}

	created, err := s.categoryRepo.Create(ctx, &models.Category{
		UserID: userID,
		Name:   name,
		Color:  color,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return created, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, userID, id string, req *models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, lookupError(err, "category", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidField("name", CodeRequired, "name must not be empty")
		}
		category.Name = name
	}
	if req.Color != nil {
		color := strings.TrimSpace(*req.Color)
		if !hexColor.MatchString(color) {
			return nil, invalidField("color", CodeInvalid, "color must be a hex code such as #1E90FF")
		}
		category.Color = color
	}

	updated, err := s.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, lookupError(err, "category", id)
	}
	return updated, nil
}

// DeleteCategory removes a category. Tasks keep their reference and report
// under the uncategorized bucket from then on.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := s.categoryRepo.Delete(ctx, userID, id); err != nil {
		return lookupError(err, "category", id)
	}
	return nil
}
