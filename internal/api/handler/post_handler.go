package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/inkwell/internal/middleware"
	"github.com/d60-Lab/inkwell/internal/service"
	"github.com/d60-Lab/inkwell/pkg/response"
)

type postRequest struct {
	Title       string   `json:"title" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Excerpt     string   `json:"excerpt"`
	Published   bool     `json:"published"`
	IsPublic    bool     `json:"is_public"`
	CategoryIDs []string `json:"category_ids"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		Title:       r.Title,
		Content:     r.Content,
		Excerpt:     r.Excerpt,
		Published:   r.Published,
		IsPublic:    r.IsPublic,
		CategoryIDs: r.CategoryIDs,
	}
}

// CreatePost 新建文章
// @Summary 新建文章（含分类关联）
// @Tags 文章
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "文章内容"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	post, err := h.postService.Create(c.Request.Context(), middleware.CurrentUserID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, post)
}

// UpdatePost 更新文章
// @Summary 更新文章并整组替换分类
// @Tags 文章
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "文章ID"
// @Param request body postRequest true "文章内容"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	err := h.postService.Update(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// TogglePublished 翻转发布状态
// @Summary 草稿/发布切换
// @Tags 文章
// @Produce json
// @Security BearerAuth
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/publish [patch]
func (h *Handler) TogglePublished(c *gin.Context) {
	val, err := h.postService.TogglePublished(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"published": val})
}

// ToggleVisibility 翻转公开状态
// @Summary 私有/公开切换
// @Tags 文章
// @Produce json
// @Security BearerAuth
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id}/visibility [patch]
func (h *Handler) ToggleVisibility(c *gin.Context) {
	val, err := h.postService.ToggleVisibility(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"is_public": val})
}

// DeletePost 删除文章
// @Summary 删除文章（级联清理关联与评论）
// @Tags 文章
// @Produce json
// @Security BearerAuth
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// GetPostBySlug 单篇读取
// @Summary 按 slug 读文章（过可见性闸门）
// @Tags 文章
// @Produce json
// @Param slug path string true "slug"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/blog/{slug} [get]
func (h *Handler) GetPostBySlug(c *gin.Context) {
	detail, err := h.postService.GetBySlug(c.Request.Context(), c.Param("slug"), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, detail)
}

// GetPostForEdit 编辑页数据
// @Summary 按内部 id 取文章供编辑，仅限作者
// @Tags 文章
// @Produce json
// @Security BearerAuth
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPostForEdit(c *gin.Context) {
	detail, err := h.postService.GetForEdit(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, detail)
}

// ListPosts 首页列表
// @Summary 公开文章列表（published 且 is_public）
// @Tags 文章
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, total, err := h.postService.ListPublic(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "total": total, "list": list})
}

// ListMyPosts 仪表盘列表
// @Summary 当前用户全部文章（不过可见性谓词）
// @Tags 文章
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response
// @Router /api/v1/dashboard/posts [get]
func (h *Handler) ListMyPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, total, err := h.postService.ListByAuthor(c.Request.Context(), middleware.CurrentUserID(c), page, pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "total": total, "list": list})
}

// SearchPosts 全文搜索
// @Summary 搜索公开文章（需启用 elasticsearch）
// @Tags 文章
// @Produce json
// @Param q query string true "关键词"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/search [get]
func (h *Handler) SearchPosts(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.BadRequest(c, "q is required")
		return
	}
	if h.searchIndex == nil {
		response.BadRequest(c, "search is not enabled")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	docs, err := h.searchIndex.Search(c.Request.Context(), q, size)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"list": docs})
}
