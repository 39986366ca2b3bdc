package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/inkwell/internal/model"
	"github.com/d60-Lab/inkwell/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.Category{},
		&model.PostCategory{},
		&model.Comment{},
	))
	return db
}

func newPostService(t *testing.T, db *gorm.DB) PostService {
	t.Helper()
	return NewPostService(
		db,
		repository.NewPostRepository(db),
		repository.NewPostCategoryRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewUserRepository(db),
		nil, // cache 未启用
		nil, // 搜索未启用
	)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		ID:       uuid.New().String(),
		Email:    username + "@example.com",
		Username: username,
		Password: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *model.Category {
	t.Helper()
	c := &model.Category{
		ID:   uuid.New().String(),
		Name: name,
		Slug: Slugify(name),
	}
	require.NoError(t, db.Create(c).Error)
	return c
}
