package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/api/middleware"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/service"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/jwt"
)

const (
	defaultNext      = "/dashboard/"
	msgBadLogin      = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgInactiveLogin = "This account is inactive."
	msgNoAccess      = "Your account doesn't have access to this page. To proceed, please login with an account that has access."
)

// AuthHandler 登录 / 注销
type AuthHandler struct {
	cookie  config.CookieConfig
	authSvc service.AuthService
	logger  *zap.Logger
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(cfg *config.Config, authSvc service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		cookie:  cfg.Auth.Cookie,
		authSvc: authSvc,
		logger:  logger,
	}
}

// LoginForm 登录页
// 已登录用户同样渲染表单：权限不足时由 RequirePermission 跳转至此，自动回跳会形成循环
// GET /accounts/login/
func (h *AuthHandler) LoginForm(c *gin.Context) {
	page := newPage(c)
	next := c.Query("next")
	if page.Identity != nil && next != "" {
		page.Add(LevelError, msgNoAccess)
	}
	h.renderLoginPage(c, http.StatusOK, page, next, "", "")
}

// Login 校验账号密码，写入登录 Cookie 后跳转 next
// POST /accounts/login/
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderLogin(c, http.StatusOK, c.PostForm("next"), c.PostForm("username"), msgBadLogin)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleLoginError(c, &req, err)
		return
	}

	h.setTokenCookie(c, result.AccessToken, result.ExpiresAt)
	c.Redirect(http.StatusFound, safeNext(req.Next))
}

func (h *AuthHandler) handleLoginError(c *gin.Context, req *dto.LoginRequest, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		h.renderLogin(c, http.StatusOK, req.Next, req.Username, msgBadLogin)
	case errors.Is(err, service.ErrUserInactive):
		h.renderLogin(c, http.StatusOK, req.Next, req.Username, msgInactiveLogin)
	default:
		h.logger.Error("登录失败", zap.Error(err))
		renderInternalError(c)
	}
}

// Logout 拉黑当前 Token 并清除 Cookie
// POST /accounts/logout/
func (h *AuthHandler) Logout(c *gin.Context) {
	if v, ok := c.Get(middleware.ClaimsKey); ok {
		if claims, ok := v.(*jwt.Claims); ok && claims.ExpiresAt != nil {
			if err := h.authSvc.Logout(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				// 拉黑失败不影响清除 Cookie
				h.logger.Warn("注销时拉黑 Token 失败", zap.Error(err))
			}
		}
	}

	h.clearTokenCookie(c)
	redirectWith(c, "/", LevelInfo, "You have been logged out.")
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, next, username, errMsg string) {
	h.renderLoginPage(c, status, newPage(c), next, username, errMsg)
}

func (h *AuthHandler) renderLoginPage(c *gin.Context, status int, page *Page, next, username, errMsg string) {
	render(c, status, "login.html", page, gin.H{
		"Title":    "Log in",
		"Next":     next,
		"Username": username,
		"Error":    errMsg,
	})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie(h.cookie.Name, token, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// safeNext 仅允许站内相对路径，防止开放重定向
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return defaultNext
	}
	return next
}
