package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/inkwell/internal/search"
	"github.com/d60-Lab/inkwell/internal/service"
	"github.com/d60-Lab/inkwell/pkg/response"
)

type Handler struct {
	authService     service.AuthService
	postService     service.PostService
	categoryService service.CategoryService
	commentService  service.CommentService
	searchIndex     *search.Index // 可为 nil（搜索未启用）
}

func New(
	authService service.AuthService,
	postService service.PostService,
	categoryService service.CategoryService,
	commentService service.CommentService,
	searchIndex *search.Index,
) *Handler {
	return &Handler{
		authService:     authService,
		postService:     postService,
		categoryService: categoryService,
		commentService:  commentService,
		searchIndex:     searchIndex,
	}
}

// fail 把服务层错误映射到统一返回体
func fail(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c)
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// bindError 绑定失败时给出字段级提示
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		response.BadRequest(c, strings.ToLower(fe.Field())+": failed on '"+fe.Tag()+"'")
		return
	}
	response.BadRequest(c, err.Error())
}
