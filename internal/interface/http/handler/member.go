package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/domain/member"
	"github.com/xiebiao/libadmin/internal/interface/http/dto"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// MemberHandler 会员HTTP处理器
type MemberHandler struct {
	base
}

// NewMemberHandler 创建会员处理器
func NewMemberHandler(spaces *workspace.Manager, sessions *middleware.SessionMiddleware) *MemberHandler {
	return &MemberHandler{base{spaces: spaces, sessions: sessions}}
}

// Create 登记会员
// @Summary      登记会员
// @Tags         会员
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        request body member.Input true "会员信息"
// @Success      200 {object} response.Response{data=member.Member}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	// 1. 参数绑定与验证
	var in member.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的会员列表页
	s, err := h.spaces.Members(h.session(c))
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

// Update 修改会员
// @Summary      修改会员
// @Tags         会员
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id      path int          true "会员ID"
// @Param        request body member.Input true "会员信息"
// @Success      200 {object} response.Response{data=member.Member}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "会员不存在"
// @Router       /api/v1/members/{id} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	// 1. 参数绑定与验证
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in member.Input
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 取当前会话的会员列表页
	s, err := h.spaces.Members(h.session(c))
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

// Delete 删除会员
// @Summary      删除会员
// @Tags         会员
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "会员ID"
// @Success      200 {object} response.Response{data=dto.DeletedResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "会员不存在"
// @Router       /api/v1/members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Members(h.session(c))
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

// Loans 会员借阅记录
// @Summary      会员借阅记录
// @Description  每条借阅带状态: Returned, Overdue 或 Active
// @Tags         会员
// @Produce      json
// @Security     SessionCookie
// @Param        id path int true "会员ID"
// @Success      200 {object} response.Response{data=[]member.LoanRow}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "会员不存在"
// @Router       /api/v1/members/{id}/loans [get]
func (h *MemberHandler) Loans(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	s, err := h.spaces.Members(h.session(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	loans, err := s.Loans(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, loans)
}
