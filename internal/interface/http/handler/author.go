package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/interface/http/dto"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// AuthorHandler 作者HTTP处理器
type AuthorHandler struct {
	base
}

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(spaces *workspace.Manager, sessions *middleware.SessionMiddleware) *AuthorHandler {
	return &AuthorHandler{base{spaces: spaces, sessions: sessions}}
}

// Create 新增作者
// @Summary      新增作者
// @Description  bookId 不为空时, 保存后把作者挂到该图书下
// @Tags         作者
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        request body author.Input true "作者信息"
// @Success      200 {object} response.Response{data=author.Author}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      409 {object} response.Response "作者已存在"
// @Router       /api/v1/authors [post]
func (h *AuthorHandler) Create(c *gin.Context) {
	// 1. 参数绑定与验证
	var in author.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的作者列表页
	s, err := h.spaces.Authors(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	saved, err := s.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, saved)
}

// Update 修改作者
// @Summary      修改作者
// @Tags         作者
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id      path int          true "作者ID"
// @Param        request body author.Input true "作者信息"
// @Success      200 {object} response.Response{data=author.Author}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "作者不存在"
// @Failure      409 {object} response.Response "作者已存在"
// @Router       /api/v1/authors/{id} [put]
func (h *AuthorHandler) Update(c *gin.Context) {
	// 1. 参数绑定与验证
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in author.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的作者列表页
	s, err := h.spaces.Authors(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	saved, err := s.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, saved)
}

// Delete 删除作者
// @Summary      删除作者
// @Tags         作者
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response{data=dto.DeletedResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{id} [delete]
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Authors(h.session(c))
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
