package router

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/api/handler"
	"github.com/maximanoob01/hostel-gate-checkk/internal/api/middleware"
	"github.com/maximanoob01/hostel-gate-checkk/internal/authz"
	"github.com/maximanoob01/hostel-gate-checkk/internal/web"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/jwt"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/redis"
)

const sessionName = "gate_session"

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单与限流均降级放行
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	resolver middleware.IdentityResolver,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(web.Templates(cfg.Gate.Location())))

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Auth.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.Authenticate(jwtMgr, cfg.Auth.Cookie.Name, rdb, resolver, logger))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── 公开页面 ──
	r.GET("/", h.Page.Home)
	r.GET("/check/", h.Page.Check)
	r.POST("/check/", h.Page.Search)
	r.GET("/dashboard/", middleware.RequireLogin(), h.Page.Dashboard)

	// ── 门岗操作 ──
	r.POST("/toggle/", middleware.RequirePermission(authz.PermToggleStatus), h.Page.Toggle)
	r.GET("/inside/", middleware.RequirePermission(authz.PermViewStudent), h.Page.Inside)
	r.GET("/outside/", middleware.RequirePermission(authz.PermViewStudent), h.Page.Outside)

	logs := r.Group("/logs", middleware.RequirePermission(authz.PermViewMovementLog))
	{
		logs.GET("/", h.Page.Logs)
		logs.GET("/export/", h.Page.ExportLogs)
	}

	// ── 学生资料 ──
	students := r.Group("/students")
	{
		add := middleware.RequirePermission(authz.PermAddStudent)
		students.GET("/add/", add, h.Student.AddForm)
		students.POST("/add/", add, h.Student.Add)

		change := middleware.RequirePermission(authz.PermChangeStudent)
		students.GET("/:id/edit/", change, h.Student.EditForm)
		students.POST("/:id/edit/", change, h.Student.Edit)

		bulk := middleware.RequirePermission(authz.PermAddStudent, authz.PermChangeStudent)
		students.GET("/import/", bulk, h.Student.ImportForm)
		students.POST("/import/", bulk, h.Student.Import)
	}

	// ── 登录 / 注销 ──
	accounts := r.Group("/accounts")
	{
		accounts.GET("/login/", h.Auth.LoginForm)
		accounts.POST("/login/",
			middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow),
			h.Auth.Login,
		)
		accounts.POST("/logout/", h.Auth.Logout)
	}

	// ── JSON 接口 ──
	api := r.Group("/api")
	api.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	api.Use(middleware.RateLimit(rdb, cfg.Gate.APIRateLimit, time.Minute))
	{
		api.GET("/search", h.API.Search)
		api.POST("/check", h.API.Check)
		api.POST("/toggle", middleware.RequireAPIPermission(authz.PermToggleStatus), h.API.Toggle)
	}

	return r
}
