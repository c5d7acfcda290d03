package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/internal/authz"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/jwt"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/redis"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/response"
)

// ClaimsKey gin.Context 中存放 *jwt.Claims 的键（注销时使用）
const ClaimsKey = "token_claims"

// LoginPath 登录页路径
const LoginPath = "/accounts/login/"

// IdentityResolver 按用户 ID 加载登录身份
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uint) (*authz.Identity, error)
}

// Authenticate 软认证中间件
// 依次从 Authorization: Bearer <token> 与登录 Cookie 中读取 Token；
// 解析成功且未被拉黑时注入身份，任何失败都按匿名继续，不中断请求。
// rdb 为 nil 时跳过黑名单检查
func Authenticate(jwtMgr *jwt.Manager, cookieName string, rdb *redis.Client, resolver IdentityResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			c.Next()
			return
		}

		if rdb != nil {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				// Redis 出错时降级放行
				logger.Warn("检查 Token 黑名单失败", zap.Error(err))
			} else if revoked {
				c.Next()
				return
			}
		}

		userID, err := claims.UserID()
		if err != nil {
			c.Next()
			return
		}
		identity, err := resolver.ResolveIdentity(c.Request.Context(), userID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(authz.ContextKey, identity)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireLogin 未登录时跳转登录页
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authz.FromContext(c) == nil {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RequirePermission 页面权限中间件
// 匿名或缺少任一权限时跳转登录页，并带上原始路径
func RequirePermission(perms ...authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authz.FromContext(c).Has(perms...) {
			redirectToLogin(c)
			return
		}
		c.Next()
	}
}

// RequireAPIPermission JSON 接口权限中间件：匿名 401，缺少权限 403
func RequireAPIPermission(perms ...authz.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := authz.FromContext(c)
		if identity == nil {
			response.Unauthorized(c)
			c.Abort()
			return
		}
		if !identity.Has(perms...) {
			response.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginURL 登录页地址，next 中的 / 保持原样
func LoginURL(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

func redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
	c.Abort()
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
