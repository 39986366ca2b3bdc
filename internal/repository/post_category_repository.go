package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/inkwell/internal/model"
)

// PostCategoryRepository 关联表只读访问；整组替换在发布流程的事务内完成
type PostCategoryRepository interface {
	ListCategoryIDs(ctx context.Context, postID string) ([]string, error)
	ListByPostIDs(ctx context.Context, postIDs []string) ([]*model.PostCategory, error)
	ListPostIDs(ctx context.Context, categoryID string) ([]string, error)
}

type postCategoryRepository struct {
	db *gorm.DB
}

func NewPostCategoryRepository(db *gorm.DB) PostCategoryRepository {
	return &postCategoryRepository{db: db}
}

func (r *postCategoryRepository) ListCategoryIDs(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.PostCategory{}).
		Where("post_id = ?", postID).
		Pluck("category_id", &ids).Error
	return ids, err
}

func (r *postCategoryRepository) ListByPostIDs(ctx context.Context, postIDs []string) ([]*model.PostCategory, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var res []*model.PostCategory
	err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&res).Error
	return res, err
}

func (r *postCategoryRepository) ListPostIDs(ctx context.Context, categoryID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.PostCategory{}).
		Where("category_id = ?", categoryID).
		Pluck("post_id", &ids).Error
	return ids, err
}
