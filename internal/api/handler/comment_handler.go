package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/inkwell/internal/middleware"
	"github.com/d60-Lab/inkwell/pkg/response"
)

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListComments 文章评论
// @Summary 文章评论列表（沿用单篇可见性判定）
// @Tags 评论
// @Produce json
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	list, err := h.commentService.ListByPost(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// CreateComment 发表评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "文章ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, comment)
}
