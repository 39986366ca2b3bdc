package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/inkwell/internal/cache"
	"github.com/d60-Lab/inkwell/internal/repository"
)

func TestGetBySlugUsesCacheAndInvalidatesOnUpdate(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	postCache := cache.NewPostCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 5*time.Minute)
	svc := NewPostService(
		db,
		repository.NewPostRepository(db),
		repository.NewPostCategoryRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewUserRepository(db),
		postCache,
		nil,
	)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	post, err := svc.Create(ctx, author.ID, PostInput{
		Title: "cached post", Content: "v1", Published: true, IsPublic: true,
	})
	require.NoError(t, err)

	// 首次读取回填缓存
	got, err := svc.GetBySlug(ctx, post.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Content)
	assert.True(t, mr.Exists("post:slug:"+post.Slug))

	// 命中缓存也必须拿到同样内容
	got, err = svc.GetBySlug(ctx, post.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Content)

	// 更新后缓存失效，读到新内容
	require.NoError(t, svc.Update(ctx, post.ID, author.ID, PostInput{
		Title: "cached post", Content: "v2", Published: true, IsPublic: true,
	}))
	assert.False(t, mr.Exists("post:slug:"+post.Slug))
	got, err = svc.GetBySlug(ctx, post.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
}

func TestPrivatePostIsNeverCached(t *testing.T) {
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	postCache := cache.NewPostCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 5*time.Minute)
	svc := NewPostService(
		db,
		repository.NewPostRepository(db),
		repository.NewPostCategoryRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewUserRepository(db),
		postCache,
		nil,
	)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	private, err := svc.Create(ctx, author.ID, PostInput{
		Title: "private post", Content: "c", Published: true, IsPublic: false,
	})
	require.NoError(t, err)

	// 登录用户读私有文章不会把它放进缓存，否则匿名请求会命中
	_, err = svc.GetBySlug(ctx, private.Slug, author.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists("post:slug:"+private.Slug))

	_, err = svc.GetBySlug(ctx, private.Slug, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
