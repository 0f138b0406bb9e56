package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// LookupHandler 选择项处理器, 供表单的作者和分类下拉使用
type LookupHandler struct {
	base
}

// NewLookupHandler 创建选择项处理器
func NewLookupHandler(spaces *workspace.Manager, sessions *middleware.SessionMiddleware) *LookupHandler {
	return &LookupHandler{base{spaces: spaces, sessions: sessions}}
}

// Authors 全部作者
// @Summary      全部作者
// @Tags         选择项
// @Produce      json
// @Security     SessionCookie
// @Success      200 {object} response.Response{data=[]author.Author}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/authors [get]
func (h *LookupHandler) Authors(c *gin.Context) {
	authors, err := h.spaces.Lookups(h.session(c)).Authors(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, authors)
}

// Categories 全部分类
// @Summary      全部分类
// @Tags         选择项
// @Produce      json
// @Security     SessionCookie
// @Success      200 {object} response.Response{data=[]category.Category}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/categories/all [get]
func (h *LookupHandler) Categories(c *gin.Context) {
	categories, err := h.spaces.Lookups(h.session(c)).Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, categories)
}

// All 作者和分类选择项
// @Summary      作者和分类选择项
// @Tags         选择项
// @Produce      json
// @Security     SessionCookie
// @Success      200 {object} response.Response{data=lookup.Lookups}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/lookups [get]
func (h *LookupHandler) All(c *gin.Context) {
	all, err := h.spaces.Lookups(h.session(c)).Load(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, all)
}
