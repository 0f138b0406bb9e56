package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/interface/http/dto"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	base
}

// NewBookHandler 创建图书处理器
func NewBookHandler(spaces *workspace.Manager, sessions *middleware.SessionMiddleware) *BookHandler {
	return &BookHandler{base{spaces: spaces, sessions: sessions}}
}

// Create 新增图书
// @Summary      新增图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        request body book.Input true "图书信息"
// @Success      200 {object} response.Response{data=book.Book}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	// 1. 参数绑定与验证
	var in book.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的图书列表页
	s, err := h.spaces.Books(h.session(c))
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

// Update 修改图书
// @Summary      修改图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id      path int        true "图书ID"
// @Param        request body book.Input true "图书信息"
// @Success      200 {object} response.Response{data=book.Book}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	// 1. 参数绑定与验证
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in book.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的图书列表页
	s, err := h.spaces.Books(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	updated, err := s.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, updated)
}

// Delete 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.DeletedResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Books(h.session(c))
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

// DeleteBulk 批量删除图书
// @Summary      批量删除图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        request body dto.IDsRequest true "图书ID列表"
// @Success      200 {object} response.Response{data=dto.DeletedResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/books/delete/bulk [post]
func (h *BookHandler) DeleteBulk(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.IDsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的图书列表页
	s, err := h.spaces.Books(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	if err := s.DeleteMany(c.Request.Context(), req.IDs); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, dto.DeletedResponse{IDs: req.IDs})
}

// Authors 图书的作者关联
// @Summary      图书的作者关联
// @Tags         图书
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=[]book.AuthorLink}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/authors [get]
func (h *BookHandler) Authors(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Books(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	links, err := s.Authors(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, links)
}

// AddAuthors 为图书添加作者
// @Summary      为图书添加作者
// @Description  已关联的作者跳过并在结果中列出
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id      path int             true "图书ID"
// @Param        request body dto.LinkRequest true "作者ID列表"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/authors [post]
func (h *BookHandler) AddAuthors(c *gin.Context) {
	// 1. 参数绑定与验证
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.LinkRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的图书列表页
	s, err := h.spaces.Books(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	res, err := s.AddAuthors(c.Request.Context(), id, req.IDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, res)
}

// RemoveAuthor 解除作者关联
// @Summary      解除作者关联
// @Description  只删除关联, 图书和作者保留
// @Tags         图书
// @Produce      json
// @Security     SessionCookie
// @Param        linkId path  int true  "图书作者关联ID"
// @Param        bookId query int false "需要刷新行的图书ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "关联不存在"
// @Router       /api/v1/books/authors/{linkId} [delete]
func (h *BookHandler) RemoveAuthor(c *gin.Context) {
	linkID, err := idParam(c, "linkId")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Books(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := s.RemoveAuthor(c.Request.Context(), idQuery(c, "bookId"), linkID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, dto.DeletedResponse{IDs: []int64{linkID}})
}

// Categories 图书的分类关联
// @Summary      图书的分类关联
// @Tags         图书
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=[]book.CategoryLink}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/categories [get]
func (h *BookHandler) Categories(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Books(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	links, err := s.Categories(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, links)
}

// AddCategories 为图书添加分类
// @Summary      为图书添加分类
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id      path int             true "图书ID"
// @Param        request body dto.LinkRequest true "分类ID列表"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/categories [post]
func (h *BookHandler) AddCategories(c *gin.Context) {
	// 1. 参数绑定与验证
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.LinkRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的图书列表页
	s, err := h.spaces.Books(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. 调用应用层用例
	res, err := s.AddCategories(c.Request.Context(), id, req.IDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, res)
}

// RemoveCategory 解除分类关联
// @Summary      解除分类关联
// @Tags         图书
// @Produce      json
// @Security     SessionCookie
// @Param        linkId path  int true  "图书分类关联ID"
// @Param        bookId query int false "需要刷新行的图书ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "关联不存在"
// @Router       /api/v1/books/categories/{linkId} [delete]
func (h *BookHandler) RemoveCategory(c *gin.Context) {
	linkID, err := idParam(c, "linkId")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Books(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := s.RemoveCategory(c.Request.Context(), idQuery(c, "bookId"), linkID); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, dto.DeletedResponse{IDs: []int64{linkID}})
}
