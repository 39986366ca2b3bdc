package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/inkwell/internal/model"
	"github.com/d60-Lab/inkwell/internal/repository"
)

func TestCreatePostWithCategories(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	catA := seedCategory(t, db, "Go")
	catB := seedCategory(t, db, "Databases")

	post, err := svc.Create(ctx, author.ID, PostInput{
		Title:       "Hello, World!  Foo",
		Content:     "<p>body</p>",
		Published:   true,
		IsPublic:    true,
		CategoryIDs: []string{catA.ID, catB.ID},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^hello-world-foo-\d{6}$`, post.Slug)
	assert.Equal(t, author.ID, post.AuthorID)

	// 关联集合与提交集合完全一致
	ids, err := repository.NewPostCategoryRepository(db).ListCategoryIDs(ctx, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{catA.ID, catB.ID}, ids)
}

func TestCreatePostValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	author := seedUser(t, db, "alice")

	_, err := svc.Create(context.Background(), author.ID, PostInput{Title: "   ", Content: "x"})
	assert.True(t, IsValidation(err))

	_, err = svc.Create(context.Background(), author.ID, PostInput{Title: "x", Content: " \n "})
	assert.True(t, IsValidation(err))

	// 校验失败不落库
	var cnt int64
	db.Model(&model.Post{}).Count(&cnt)
	assert.Zero(t, cnt)
}

func TestUpdateReplacesCategorySet(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	catA := seedCategory(t, db, "A")
	catB := seedCategory(t, db, "B")
	catC := seedCategory(t, db, "C")

	post, err := svc.Create(ctx, author.ID, PostInput{
		Title: "t", Content: "c", CategoryIDs: []string{catA.ID, catB.ID},
	})
	require.NoError(t, err)

	pcRepo := repository.NewPostCategoryRepository(db)

	// 同一集合重复提交：成员不变（幂等）
	require.NoError(t, svc.Update(ctx, post.ID, author.ID, PostInput{
		Title: "t", Content: "c", CategoryIDs: []string{catB.ID, catA.ID},
	}))
	ids, err := pcRepo.ListCategoryIDs(ctx, post.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{catA.ID, catB.ID}, ids)

	// 换一个集合：整组替换
	require.NoError(t, svc.Update(ctx, post.ID, author.ID, PostInput{
		Title: "t", Content: "c", CategoryIDs: []string{catC.ID},
	}))
	ids, err = pcRepo.ListCategoryIDs(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{catC.ID}, ids)

	// 空集合合法：归零
	require.NoError(t, svc.Update(ctx, post.ID, author.ID, PostInput{Title: "t", Content: "c"}))
	ids, err = pcRepo.ListCategoryIDs(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateKeepsSlugAndAuthor(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	post, err := svc.Create(ctx, author.ID, PostInput{Title: "original title", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, post.ID, author.ID, PostInput{Title: "brand new title", Content: "c2"}))

	var got model.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.Equal(t, post.Slug, got.Slug)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.Equal(t, "brand new title", got.Title)
}

func TestUpdateByNonAuthorRejectedBeforeMutation(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	mallory := seedUser(t, db, "mallory")

	post, err := svc.Create(ctx, alice.ID, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	err = svc.Update(ctx, post.ID, mallory.ID, PostInput{Title: "hacked", Content: "c"})
	assert.ErrorIs(t, err, ErrForbidden)

	var got model.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.Equal(t, "t", got.Title)
}

func TestTogglePublishedTwiceRestores(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	post, err := svc.Create(ctx, author.ID, PostInput{Title: "t", Content: "c", Published: false})
	require.NoError(t, err)

	v1, err := svc.TogglePublished(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, v1)
	v2, err := svc.TogglePublished(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, v2)

	var got model.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.False(t, got.Published)
	// published 之外的字段不动
	assert.Equal(t, "t", got.Title)
}

func TestToggleVisibilityOnlyFlipsIsPublic(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	post, err := svc.Create(ctx, author.ID, PostInput{Title: "t", Content: "c", Published: true})
	require.NoError(t, err)

	v, err := svc.ToggleVisibility(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, v)

	var got model.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.True(t, got.IsPublic)
	assert.True(t, got.Published)
}

func TestDeleteByNonAuthorRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	mallory := seedUser(t, db, "mallory")

	post, err := svc.Create(ctx, alice.ID, PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, post.ID, mallory.ID), ErrForbidden)

	var cnt int64
	db.Model(&model.Post{}).Where("id = ?", post.ID).Count(&cnt)
	assert.EqualValues(t, 1, cnt)
}

func TestDeleteCascadesAssociationsAndComments(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	cat := seedCategory(t, db, "Go")

	post, err := svc.Create(ctx, author.ID, PostInput{
		Title: "t", Content: "c", Published: true, IsPublic: true, CategoryIDs: []string{cat.ID},
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Comment{ID: "c1", PostID: post.ID, UserID: author.ID, Content: "hi"}).Error)

	require.NoError(t, svc.Delete(ctx, post.ID, author.ID))

	var n int64
	db.Model(&model.Post{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&model.PostCategory{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&model.Comment{}).Count(&n)
	assert.Zero(t, n)
	// 分类本身还在
	db.Model(&model.Category{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestGetBySlugVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	reader := seedUser(t, db, "bob")

	draft, err := svc.Create(ctx, author.ID, PostInput{Title: "draft", Content: "c", Published: false, IsPublic: true})
	require.NoError(t, err)
	private, err := svc.Create(ctx, author.ID, PostInput{Title: "private", Content: "c", Published: true, IsPublic: false})
	require.NoError(t, err)
	public, err := svc.Create(ctx, author.ID, PostInput{Title: "public", Content: "c", Published: true, IsPublic: true})
	require.NoError(t, err)

	// 草稿经 slug 路由对任何人不可见，作者也一样
	_, err = svc.GetBySlug(ctx, draft.Slug, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetBySlug(ctx, draft.Slug, author.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// 私有文章：匿名 not-found，任意登录用户可读
	_, err = svc.GetBySlug(ctx, private.Slug, "")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := svc.GetBySlug(ctx, private.Slug, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)

	// 公开文章人人可读，作者信息已合并
	got, err = svc.GetBySlug(ctx, public.Slug, "")
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)

	// 不存在与不可见不可区分
	_, err = svc.GetBySlug(ctx, "no-such-slug-000000", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPublicExcludesDraftsAndPrivate(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	_, err := svc.Create(ctx, author.ID, PostInput{Title: "draft", Content: "c", Published: false, IsPublic: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author.ID, PostInput{Title: "private", Content: "c", Published: true, IsPublic: false})
	require.NoError(t, err)
	pub, err := svc.Create(ctx, author.ID, PostInput{Title: "visible", Content: "c", Published: true, IsPublic: true})
	require.NoError(t, err)

	list, total, err := svc.ListPublic(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, pub.ID, list[0].ID)
}

func TestListByCategoryAppliesPublicPredicate(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")
	cat := seedCategory(t, db, "Go")

	_, err := svc.Create(ctx, author.ID, PostInput{
		Title: "draft", Content: "c", Published: false, IsPublic: true, CategoryIDs: []string{cat.ID},
	})
	require.NoError(t, err)
	pub, err := svc.Create(ctx, author.ID, PostInput{
		Title: "pub", Content: "c", Published: true, IsPublic: true, CategoryIDs: []string{cat.ID},
	})
	require.NoError(t, err)

	gotCat, posts, err := svc.ListByCategory(ctx, cat.Slug)
	require.NoError(t, err)
	assert.Equal(t, cat.ID, gotCat.ID)
	require.Len(t, posts, 1)
	assert.Equal(t, pub.ID, posts[0].ID)

	_, _, err = svc.ListByCategory(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByAuthorBypassesVisibility(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	_, err := svc.Create(ctx, author.ID, PostInput{Title: "draft", Content: "c"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author.ID, PostInput{Title: "private", Content: "c", Published: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, author.ID, PostInput{Title: "pub", Content: "c", Published: true, IsPublic: true})
	require.NoError(t, err)

	list, total, err := svc.ListByAuthor(ctx, author.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 3)
}

func TestGetForEditOwnershipAndNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newPostService(t, db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	post, err := svc.Create(ctx, alice.ID, PostInput{Title: "draft", Content: "c"})
	require.NoError(t, err)

	got, err := svc.GetForEdit(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	_, err = svc.GetForEdit(ctx, post.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetForEdit(ctx, "missing", alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
