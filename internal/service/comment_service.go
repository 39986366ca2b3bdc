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

// CommentDetail 评论与作者资料合并后的视图
type CommentDetail struct {
	model.Comment
	User *model.User `json:"user,omitempty"`
}

// CommentService 评论只增不改；读写都过单篇可见性闸门
type CommentService interface {
	Create(ctx context.Context, postID, userID, content string) (*CommentDetail, error)
	ListByPost(ctx context.Context, postID, viewerID string) ([]*CommentDetail, error)
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
) CommentService {
	return &commentService{comments: comments, posts: posts, users: users}
}

func (s *commentService) Create(ctx context.Context, postID, userID, content string) (*CommentDetail, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content", "content is required")
	}
	post, err := s.visiblePost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	c := &model.Comment{
		ID:      uuid.New().String(),
		PostID:  post.ID,
		UserID:  userID,
		Content: content,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CommentDetail{Comment: *c, User: user}, nil
}

func (s *commentService) ListByPost(ctx context.Context, postID, viewerID string) ([]*CommentDetail, error) {
	if _, err := s.visiblePost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	// 应用层 join 评论作者
	ids := make([]string, 0, len(comments))
	seen := make(map[string]bool)
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	userByID := make(map[string]*model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	details := make([]*CommentDetail, len(comments))
	for i, c := range comments {
		details[i] = &CommentDetail{Comment: *c, User: userByID[c.UserID]}
	}
	return details, nil
}

// visiblePost 评论路径沿用单篇可见性判定，不可见与不存在同样以 ErrNotFound 掩盖
func (s *commentService) visiblePost(ctx context.Context, postID, viewerID string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !CanView(post, viewerID) {
		return nil, ErrNotFound
	}
	return post, nil
}
