package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/domain/category"
	"github.com/xiebiao/libadmin/internal/interface/http/dto"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// CategoryHandler 分类HTTP处理器
type CategoryHandler struct {
	base
}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler(spaces *workspace.Manager, sessions *middleware.SessionMiddleware) *CategoryHandler {
	return &CategoryHandler{base{spaces: spaces, sessions: sessions}}
}

// Create 新增分类
// @Summary      新增分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        request body category.Input true "分类信息"
// @Success      200 {object} response.Response{data=category.Category}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      409 {object} response.Response "分类已存在"
// @Router       /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	// 1. 参数绑定与验证
	var in category.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的分类列表页
	s, err := h.spaces.Categories(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	created, err := s.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, created)
}

// Rename 重命名分类
// @Summary      重命名分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id      path int            true "分类ID"
// @Param        request body category.Input true "分类信息"
// @Success      200 {object} response.Response{data=category.Category}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "分类不存在"
// @Failure      409 {object} response.Response "分类已存在"
// @Router       /api/v1/categories/{id} [put]
func (h *CategoryHandler) Rename(c *gin.Context) {
	// 1. 参数绑定与验证
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in category.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的分类列表页
	s, err := h.spaces.Categories(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	renamed, err := s.Rename(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, renamed)
}

// Delete 删除分类
// @Summary      删除分类
// @Tags         分类
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response{data=dto.DeletedResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Categories(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := s.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, dto.DeletedResponse{IDs: []int64{id}})
}

// Books 分类下的图书
// @Summary      分类下的图书
// @Tags         分类
// @Produce      json
// @Security     SessionCookie
// @Param        id          path  int  true  "分类ID"
// @Param        withAuthors query bool false "同时返回每本书的作者"
// @Success      200 {object} response.Response{data=[]book.Book}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/categories/{id}/books [get]
func (h *CategoryHandler) Books(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Categories(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	books, err := s.BooksOf(c.Request.Context(), id, c.Query("withAuthors") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, books)
}
