package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/interface/http/dto"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// BookCategoryHandler 图书分类批量管理处理器
type BookCategoryHandler struct {
	base
}

// NewBookCategoryHandler 创建图书分类批量管理处理器
func NewBookCategoryHandler(spaces *workspace.Manager, sessions *middleware.SessionMiddleware) *BookCategoryHandler {
	return &BookCategoryHandler{base{spaces: spaces, sessions: sessions}}
}

// Available 图书尚未归入的分类
// @Summary      图书尚未归入的分类
// @Tags         图书分类
// @Produce      json
// @Security     SessionCookie
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=[]category.Category}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/bookcategories/{bookId}/available [get]
func (h *BookCategoryHandler) Available(c *gin.Context) {
	bookID, err := idParam(c, "bookId")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.BookCategories(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	available, err := s.Available(c.Request.Context(), bookID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, available)
}

// Reconcile 一次完成分类的增删
// @Summary      一次完成分类的增删
// @Description  删除失败时撤回本次新增的关联
// @Tags         图书分类
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        bookId  path int                  true "图书ID"
// @Param        request body dto.ReconcileRequest true "要新增的分类ID和要删除的关联ID"
// @Success      200 {object} response.Response{data=bookcategory.Group}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/bookcategories/{bookId} [post]
func (h *BookCategoryHandler) Reconcile(c *gin.Context) {
	// 1. 参数绑定与验证
	bookID, err := idParam(c, "bookId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReconcileRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的图书分类列表页
	s, err := h.spaces.BookCategories(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	group, err := s.Reconcile(c.Request.Context(), bookID, req.Add, req.Remove)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, group)
}
