package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/inkwell/internal/model"
	"github.com/d60-Lab/inkwell/internal/repository"
)

type CategoryInput struct {
	Name        string
	Description string
}

// CategoryService 分类无属主，任何登录用户可建、改、删
type CategoryService interface {
	Create(ctx context.Context, in CategoryInput) (*model.Category, error)
	Update(ctx context.Context, id string, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.Category, error)
}

type categoryService struct {
	db   *gorm.DB
	cats repository.CategoryRepository
}

func NewCategoryService(db *gorm.DB, cats repository.CategoryRepository) CategoryService {
	return &categoryService{db: db, cats: cats}
}

func (s *categoryService) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	cat := &model.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        Slugify(name),
		Description: optional(in.Description),
	}
	if err := s.cats.Create(ctx, cat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("name", "category already exists")
		}
		return nil, err
	}
	return cat, nil
}

// Update 重命名时同步重推 slug
func (s *categoryService) Update(ctx context.Context, id string, in CategoryInput) (*model.Category, error) {
	cat, err := s.cats.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	fields := map[string]interface{}{
		"name":        name,
		"slug":        Slugify(name),
		"description": optional(in.Description),
	}
	if err := s.cats.UpdateFields(ctx, cat.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalid("name", "category already exists")
		}
		return nil, err
	}
	cat.Name = name
	cat.Slug = Slugify(name)
	cat.Description = optional(in.Description)
	return cat, nil
}

// Delete 删除分类并清掉它的全部关联行；文章本身不动
func (s *categoryService) Delete(ctx context.Context, id string) error {
	cat, err := s.cats.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", cat.ID).Delete(&model.PostCategory{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", cat.ID).Delete(&model.Category{}).Error
	})
}

func (s *categoryService) List(ctx context.Context) ([]*model.Category, error) {
	return s.cats.List(ctx)
}
