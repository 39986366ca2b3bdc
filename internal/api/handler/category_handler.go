package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/inkwell/internal/service"
	"github.com/d60-Lab/inkwell/pkg/response"
)

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ListCategories 全部分类
// @Summary 分类列表（按名称排序）
// @Tags 分类
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// GetCategory 分类页
// @Summary 分类及其公开文章
// @Tags 分类
// @Produce json
// @Param slug path string true "分类 slug"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/categories/{slug} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	cat, posts, err := h.postService.ListByCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"category": cat, "posts": posts})
}

// CreateCategory 新建分类
// @Summary 新建分类
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body categoryRequest true "分类信息"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cat, err := h.categoryService.Create(c.Request.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, cat)
}

// UpdateCategory 更新分类
// @Summary 重命名/改描述
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Param request body categoryRequest true "分类信息"
// @Success 200 {object} response.Response
// @Router /api/v1/categories/{id} [put]
func (h *Handler) UpdateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cat, err := h.categoryService.Update(c.Request.Context(), c.Param("id"), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, cat)
}

// DeleteCategory 删除分类
// @Summary 删除分类并清理其关联（文章不动）
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Success 200 {object} response.Response
// @Router /api/v1/categories/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
