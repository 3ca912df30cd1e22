package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"nestegg/internal/cache"
	apperrors "nestegg/internal/errors"
	"nestegg/internal/models"
)

// categoryListTTL bounds how stale a cached category list may be.
// Categories change rarely, so list reads tolerate a short lag.
const categoryListTTL = 30 * time.Second

// categoryService handles category-related business logic. Per-user list
// reads are served from a short-lived cache that every write invalidates.
type categoryService struct {
	db        *gorm.DB
	listCache *cache.TTL[[]models.Category]
}

// NewCategoryService creates a new CategoryServicer. The list cache is swept
// in the background for the life of the process.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	listCache := cache.New[[]models.Category](categoryListTTL)
	listCache.StartSweeper(10 * categoryListTTL)
	return &categoryService{
		db:        db,
		listCache: listCache,
	}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(userID, name string, categoryType models.CategoryType, icon, color string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   categoryType,
		Icon:   icon,
		Color:  color,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.listCache.Delete(userID)
	return category, nil
}

// GetUserCategories returns all categories for a user, possibly a few
// seconds stale.
func (s *categoryService) GetUserCategories(userID string) ([]models.Category, error) {
	if cached, ok := s.listCache.Get(userID); ok {
		return cached, nil
	}

	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.listCache.Set(userID, categories)
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category's attributes.
func (s *categoryService) UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if icon != "" {
		updates["icon"] = icon
	}
	if color != "" {
		updates["color"] = color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.listCache.Delete(userID)
	}

	return category, nil
}

// DeleteCategory removes a category unless transactions still reference it.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", categoryID).Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.listCache.Delete(userID)
	return nil
}
