package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/libadmin/internal/application/listview"
	"github.com/xiebiao/libadmin/internal/application/workspace"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// keepAlive is how often an idle event stream sends a comment line.
const keepAlive = 25 * time.Second

// ScreenHandler 列表页处理器: 打开, 查询, 重置, 刷新和快照推送
type ScreenHandler struct {
	base
}

// NewScreenHandler 创建列表页处理器
func NewScreenHandler(spaces *workspace.Manager, sessions *middleware.SessionMiddleware) *ScreenHandler {
	return &ScreenHandler{base{spaces: spaces, sessions: sessions}}
}

func (h *ScreenHandler) screen(c *gin.Context, values map[string][]string) (listview.Screen, bool) {
	s, err := h.spaces.Open(h.session(c), c.Param("screen"), values)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

// settled waits for in-flight fetches and renders the snapshot. A fetch
// the API refused with 401 ends the session.
func (h *ScreenHandler) settled(c *gin.Context, s listview.Screen) {
	s.Wait()
	if !h.spaces.Has(h.session(c).ID) {
		h.sessions.End(c)
		return
	}
	response.Success(c, s.View())
}

// Open 打开列表页
// @Summary      打开列表页
// @Description  打开列表页, 或按查询串重新加载, 返回快照
// @Tags         列表页
// @Produce      json
// @Security     SessionCookie
// @Param        screen   path  string true  "books | authors | categories | categorybooks | members | loans | bookcategories"
// @Param        search   query string false "搜索词"
// @Param        sortBy   query string false "排序字段"
// @Param        desc     query bool   false "是否倒序"
// @Param        page     query int    false "页码"
// @Param        pageSize query int    false "每页条数"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "列表页不存在"
// @Router       /api/v1/screens/{screen} [get]
func (h *ScreenHandler) Open(c *gin.Context) {
	s, ok := h.screen(c, c.Request.URL.Query())
	if !ok {
		return
	}
	h.settled(c, s)
}

// Query 修改列表查询
// @Summary      修改列表查询
// @Description  应用一次用户操作的改动. 新的搜索词在防抖窗口结束后才发出请求
// @Tags         列表页
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        screen  path string           true "列表页"
// @Param        request body listview.Change  true "改动的字段"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/screens/{screen}/query [post]
func (h *ScreenHandler) Query(c *gin.Context) {
	var ch listview.Change
	if err := bindJSON(c, &ch); err != nil {
		response.Error(c, err)
		return
	}
	s, ok := h.screen(c, nil)
	if !ok {
		return
	}
	s.Apply(ch)
	h.settled(c, s)
}

// Reset 重置列表页
// @Summary      重置列表页
// @Description  恢复默认的搜索, 排序和分页
// @Tags         列表页
// @Produce      json
// @Security     SessionCookie
// @Param        screen path string true "列表页"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/screens/{screen}/reset [post]
func (h *ScreenHandler) Reset(c *gin.Context) {
	s, ok := h.screen(c, nil)
	if !ok {
		return
	}
	s.Reset()
	h.settled(c, s)
}

// Reload 刷新列表页
// @Summary      刷新列表页
// @Tags         列表页
// @Produce      json
// @Security     SessionCookie
// @Param        screen path string true "列表页"
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/screens/{screen}/reload [post]
func (h *ScreenHandler) Reload(c *gin.Context) {
	s, ok := h.screen(c, nil)
	if !ok {
		return
	}
	s.Reload()
	h.settled(c, s)
}

// Events 订阅列表快照
// @Summary      订阅列表快照
// @Description  SSE: 先推送一次 snapshot, 之后每次变化再推送
// @Tags         列表页
// @Produce      text/event-stream
// @Security     SessionCookie
// @Param        screen path string true "列表页"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/screens/{screen}/events [get]
func (h *ScreenHandler) Events(c *gin.Context) {
	s, ok := h.screen(c, nil)
	if !ok {
		return
	}
	changes, unsubscribe := s.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", s.View())
	c.Writer.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case _, open := <-changes:
			if !open {
				c.SSEvent("closed", nil)
				return false
			}
			c.SSEvent("snapshot", s.View())
			return true
		case <-ticker.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		}
	})
}
