package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/inkwell/internal/cache"
	"github.com/d60-Lab/inkwell/internal/model"
	"github.com/d60-Lab/inkwell/internal/repository"
	"github.com/d60-Lab/inkwell/internal/search"
)

// slug 唯一索引冲突时的重试次数（换一个时间后缀再试）
const slugRetries = 3

type PostInput struct {
	Title       string
	Content     string
	Excerpt     string
	Published   bool
	IsPublic    bool
	CategoryIDs []string
}

// PostDetail 文章与其作者、分类在应用层合并后的视图
type PostDetail struct {
	model.Post
	Author     *model.User      `json:"author,omitempty"`
	Categories []model.Category `json:"categories"`
}

type PostService interface {
	Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error)
	Update(ctx context.Context, postID, actorID string, in PostInput) error
	TogglePublished(ctx context.Context, postID, actorID string) (bool, error)
	ToggleVisibility(ctx context.Context, postID, actorID string) (bool, error)
	Delete(ctx context.Context, postID, actorID string) error
	GetBySlug(ctx context.Context, slug, viewerID string) (*PostDetail, error)
	GetForEdit(ctx context.Context, postID, actorID string) (*PostDetail, error)
	ListPublic(ctx context.Context, page, pageSize int) ([]*PostDetail, int64, error)
	ListByCategory(ctx context.Context, categorySlug string) (*model.Category, []*PostDetail, error)
	ListByAuthor(ctx context.Context, authorID string, page, pageSize int) ([]*PostDetail, int64, error)
}

type postService struct {
	db       *gorm.DB
	posts    repository.PostRepository
	postCats repository.PostCategoryRepository
	cats     repository.CategoryRepository
	users    repository.UserRepository
	cache    *cache.PostCache
	indexer  *SearchIndexer
}

func NewPostService(
	db *gorm.DB,
	posts repository.PostRepository,
	postCats repository.PostCategoryRepository,
	cats repository.CategoryRepository,
	users repository.UserRepository,
	postCache *cache.PostCache,
	indexer *SearchIndexer,
) PostService {
	return &postService{
		db:       db,
		posts:    posts,
		postCats: postCats,
		cats:     cats,
		users:    users,
		cache:    postCache,
		indexer:  indexer,
	}
}

// Create 新建文章并在同一事务内建立分类关联，
// 保证分类集合要么完整落地要么完全不落地
func (s *postService) Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, invalid("content", "content is required")
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   in.Content,
		Excerpt:   optional(in.Excerpt),
		AuthorID:  authorID,
		Published: in.Published,
		IsPublic:  in.IsPublic,
	}

	var err error
	for attempt := 0; attempt < slugRetries; attempt++ {
		post.Slug = PostSlug(title, time.Now())
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(post).Error; err != nil {
				return err
			}
			return replaceAssociations(tx, post.ID, in.CategoryIDs)
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		// 同一毫秒窗口的后缀冲突，等下一毫秒再试
		time.Sleep(time.Millisecond)
	}
	if err != nil {
		return nil, err
	}

	s.syncIndex(post)
	return post, nil
}

// Update 更新可变字段并整组替换分类关联。slug 与作者不可变。
func (s *postService) Update(ctx context.Context, postID, actorID string, in PostInput) error {
	post, err := s.getOwned(ctx, postID, actorID)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return invalid("title", "title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return invalid("content", "content is required")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"title":     title,
			"content":   in.Content,
			"excerpt":   optional(in.Excerpt),
			"published": in.Published,
			"is_public": in.IsPublic,
		}
		if err := tx.Model(&model.Post{}).Where("id = ?", post.ID).Updates(fields).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.PostCategory{}).Error; err != nil {
			return err
		}
		return replaceAssociations(tx, post.ID, in.CategoryIDs)
	})
	if err != nil {
		return err
	}

	post.Title = title
	post.Content = in.Content
	post.Excerpt = optional(in.Excerpt)
	post.Published = in.Published
	post.IsPublic = in.IsPublic
	s.cache.Del(ctx, post.Slug)
	s.syncIndex(post)
	return nil
}

// TogglePublished 只翻转 published，其余字段不动
func (s *postService) TogglePublished(ctx context.Context, postID, actorID string) (bool, error) {
	post, err := s.getOwned(ctx, postID, actorID)
	if err != nil {
		return false, err
	}
	next := !post.Published
	if err := s.posts.UpdateFields(ctx, post.ID, map[string]interface{}{"published": next}); err != nil {
		return false, err
	}
	post.Published = next
	s.cache.Del(ctx, post.Slug)
	s.syncIndex(post)
	return next, nil
}

// ToggleVisibility 只翻转 is_public
func (s *postService) ToggleVisibility(ctx context.Context, postID, actorID string) (bool, error) {
	post, err := s.getOwned(ctx, postID, actorID)
	if err != nil {
		return false, err
	}
	next := !post.IsPublic
	if err := s.posts.UpdateFields(ctx, post.ID, map[string]interface{}{"is_public": next}); err != nil {
		return false, err
	}
	post.IsPublic = next
	s.cache.Del(ctx, post.Slug)
	s.syncIndex(post)
	return next, nil
}

// Delete 删除文章并级联清理关联行与评论（见 DESIGN.md 的级联决策）
func (s *postService) Delete(ctx context.Context, postID, actorID string) error {
	post, err := s.getOwned(ctx, postID, actorID)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.PostCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", post.ID).Delete(&model.Post{}).Error
	})
	if err != nil {
		return err
	}
	s.cache.Del(ctx, post.Slug)
	if s.indexer != nil {
		s.indexer.EnqueueDelete(post.ID)
	}
	return nil
}

// GetBySlug 公开读路径。不可见与不存在返回同一个 ErrNotFound。
func (s *postService) GetBySlug(ctx context.Context, slug, viewerID string) (*PostDetail, error) {
	// 缓存里只会有 published+is_public 的文章，对任何访问者都可直接返回
	if b, ok := s.cache.Get(ctx, slug); ok {
		var d PostDetail
		if err := json.Unmarshal(b, &d); err == nil {
			return &d, nil
		}
	}

	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !CanView(post, viewerID) {
		return nil, ErrNotFound
	}
	details, err := s.hydrate(ctx, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	d := details[0]
	if Listable(post) {
		if b, err := json.Marshal(d); err == nil {
			s.cache.Set(ctx, slug, b)
		}
	}
	return d, nil
}

// GetForEdit 编辑页按内部 id 取草稿，仅限作者
func (s *postService) GetForEdit(ctx context.Context, postID, actorID string) (*PostDetail, error) {
	post, err := s.getOwned(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}
	details, err := s.hydrate(ctx, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (s *postService) ListPublic(ctx context.Context, page, pageSize int) ([]*PostDetail, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	total, err := s.posts.CountPublic(ctx)
	if err != nil {
		return nil, 0, err
	}
	posts, err := s.posts.ListPublic(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	details, err := s.hydrate(ctx, posts)
	return details, total, err
}

// ListByCategory 分类页：经关联表取文章 id，再按公开谓词取文章。
// 分类下文章基数小，不分页。
func (s *postService) ListByCategory(ctx context.Context, categorySlug string) (*model.Category, []*PostDetail, error) {
	cat, err := s.cats.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	ids, err := s.postCats.ListPostIDs(ctx, cat.ID)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.posts.ListPublicByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	details, err := s.hydrate(ctx, posts)
	return cat, details, err
}

// ListByAuthor 作者仪表盘，绕过全部可见性谓词
func (s *postService) ListByAuthor(ctx context.Context, authorID string, page, pageSize int) ([]*PostDetail, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	total, err := s.posts.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, 0, err
	}
	posts, err := s.posts.ListByAuthor(ctx, authorID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	details, err := s.hydrate(ctx, posts)
	return details, total, err
}

// getOwned 取文章并做属主校验；任何变更前先拒绝非作者
func (s *postService) getOwned(ctx context.Context, postID, actorID string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, ErrForbidden
	}
	return post, nil
}

// hydrate 应用层 join：先拿文章，再按 id 批量取作者与分类后合并
func (s *postService) hydrate(ctx context.Context, posts []*model.Post) ([]*PostDetail, error) {
	authorIDs := make([]string, 0, len(posts))
	postIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool)
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	users, err := s.users.ListByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	userByID := make(map[string]*model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	links, err := s.postCats.ListByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	catIDSet := make(map[string]bool)
	catIDs := make([]string, 0)
	for _, l := range links {
		if !catIDSet[l.CategoryID] {
			catIDSet[l.CategoryID] = true
			catIDs = append(catIDs, l.CategoryID)
		}
	}
	cats, err := s.cats.ListByIDs(ctx, catIDs)
	if err != nil {
		return nil, err
	}
	catByID := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		catByID[c.ID] = *c
	}

	details := make([]*PostDetail, len(posts))
	for i, p := range posts {
		d := &PostDetail{Post: *p, Author: userByID[p.AuthorID], Categories: []model.Category{}}
		for _, l := range links {
			if l.PostID != p.ID {
				continue
			}
			if c, ok := catByID[l.CategoryID]; ok {
				d.Categories = append(d.Categories, c)
			}
		}
		details[i] = d
	}
	return details, nil
}

// syncIndex 按当前状态决定进索引还是出索引
func (s *postService) syncIndex(post *model.Post) {
	if s.indexer == nil {
		return
	}
	if Listable(post) {
		excerpt := ""
		if post.Excerpt != nil {
			excerpt = *post.Excerpt
		}
		s.indexer.EnqueueIndex(search.PostDoc{
			ID:      post.ID,
			Title:   post.Title,
			Slug:    post.Slug,
			Content: post.Content,
			Excerpt: excerpt,
		})
	} else {
		s.indexer.EnqueueDelete(post.ID)
	}
}

// replaceAssociations 在事务内插入提交的分类集合，空集合为合法输入
func replaceAssociations(tx *gorm.DB, postID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]model.PostCategory, 0, len(categoryIDs))
	seen := make(map[string]bool, len(categoryIDs))
	for _, cid := range categoryIDs {
		if cid == "" || seen[cid] {
			continue
		}
		seen[cid] = true
		rows = append(rows, model.PostCategory{PostID: postID, CategoryID: cid})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
