package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	"github.com/xiebiao/libadmin/internal/interface/http/dto"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// LoanHandler 借阅HTTP处理器
type LoanHandler struct {
	base
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(spaces *workspace.Manager, sessions *middleware.SessionMiddleware) *LoanHandler {
	return &LoanHandler{base{spaces: spaces, sessions: sessions}}
}

// Get 查询借阅
// @Summary      查询借阅
// @Tags         借阅
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=loan.Loan}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "借阅不存在"
// @Router       /api/v1/loans/{id} [get]
func (h *LoanHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Loans(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	l, err := s.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, l)
}

// Create 借出图书
// @Summary      借出图书
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        request body loan.Input true "借阅信息"
// @Success      200 {object} response.Response{data=loan.Loan}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      409 {object} response.Response "会员已借阅该图书且未归还"
// @Router       /api/v1/loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	// 1. 参数绑定与验证
	var in loan.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的借阅列表页
	s, err := h.spaces.Loans(h.session(c))
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

// Update 修改借阅
// @Summary      修改借阅
// @Description  保存后重新拉取当前页
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id      path int        true "借阅ID"
// @Param        request body loan.Input true "借阅信息"
// @Success      200 {object} response.Response{data=loan.Loan}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "借阅不存在"
// @Router       /api/v1/loans/{id} [put]
func (h *LoanHandler) Update(c *gin.Context) {
	// 1. 参数绑定与验证
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in loan.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的借阅列表页
	s, err := h.spaces.Loans(h.session(c))
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

// Delete 删除借阅
// @Summary      删除借阅
// @Tags         借阅
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=dto.DeletedResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "借阅不存在"
// @Router       /api/v1/loans/{id} [delete]
func (h *LoanHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Loans(h.session(c))
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

// Return 归还图书
// @Summary      归还图书
// @Description  归还日期记为今天
// @Tags         借阅
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=loan.Loan}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "借阅不存在"
// @Failure      409 {object} response.Response "已归还"
// @Router       /api/v1/loans/{id}/return [post]
func (h *LoanHandler) Return(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Loans(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	returned, err := s.Return(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, returned)
}
