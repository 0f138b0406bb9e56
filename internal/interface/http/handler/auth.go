package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/auth"
	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/domain/session"
	"github.com/xiebiao/libadmin/internal/interface/http/dto"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/response"
)

// AuthHandler 登录注册处理器
type AuthHandler struct {
	login    *auth.LoginUseCase
	register *auth.RegisterUseCase
	logout   *auth.LogoutUseCase
	spaces   *workspace.Manager
	sessions *middleware.SessionMiddleware
}

// NewAuthHandler 创建登录注册处理器
func NewAuthHandler(
	login *auth.LoginUseCase,
	register *auth.RegisterUseCase,
	logout *auth.LogoutUseCase,
	spaces *workspace.Manager,
	sessions *middleware.SessionMiddleware,
) *AuthHandler {
	return &AuthHandler{login: login, register: register, logout: logout, spaces: spaces, sessions: sessions}
}

// Login 登录
// @Summary      登录
// @Description  用账号密码换取控制台会话Cookie
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.SessionResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "账号或密码错误"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 调用应用层用例
	resp, err := h.login.Execute(c.Request.Context(), session.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 写入会话Cookie并返回
	h.opened(c, resp)
}

// Register 注册
// @Summary      注册
// @Description  在图书馆API创建账号并直接登录
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=dto.SessionResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱已注册"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	// 2. 调用应用层用例
	resp, err := h.register.Execute(c.Request.Context(), session.Registration{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 写入会话Cookie并返回
	h.opened(c, resp)
}

func (h *AuthHandler) opened(c *gin.Context, resp *auth.LoginResponse) {
	h.sessions.SetCookie(c, resp.Session.ID, resp.Session.TTL(time.Now()))
	response.Success(c, dto.SessionResponse{Email: resp.Session.Email, ExpiresAt: resp.Session.ExpiresAt})
}

// Logout 退出登录
// @Summary      退出登录
// @Description  结束会话, 关闭其列表页并吊销Token
// @Tags         认证
// @Produce      json
// @Success      200 {object} response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	id, _ := c.Cookie(h.sessions.CookieName())
	if id != "" {
		h.spaces.Drop(id)
		if err := h.logout.Execute(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
	}
	h.sessions.ClearCookie(c)
	response.Success(c, nil)
}

// LoginPage 登录提示
// @Summary      登录提示
// @Tags         认证
// @Produce      json
// @Success      200 {object} response.Response{data=dto.LoginHint}
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	hint := dto.LoginHint{LoginURL: "/auth/login"}
	if c.Query(middleware.ParamExpired) != "" {
		hint.Message = apperrors.ErrTokenExpired.Message
	}
	response.Success(c, hint)
}
