package handler

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/maximanoob01/hostel-gate-checkk/internal/authz"
)

// 提示级别
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// Notice 页面提示
type Notice struct {
	Level string
	Text  string
}

func init() {
	// Cookie Session 以 gob 编码闪存内容
	gob.Register(Notice{})
}

// Page 单次请求的页面上下文：当前身份与待展示提示
type Page struct {
	Identity *authz.Identity
	Notices  []Notice
}

// Can 模板内判断权限
func (p *Page) Can(code string) bool {
	return p.Identity.Has(authz.Permission(code))
}

// Add 追加本次渲染的提示
func (p *Page) Add(level, text string) {
	p.Notices = append(p.Notices, Notice{Level: level, Text: text})
}

// newPage 构建页面上下文，并取出上一请求留下的闪存提示
func newPage(c *gin.Context) *Page {
	page := &Page{Identity: authz.FromContext(c)}

	session := sessions.Default(c)
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return page
	}
	for _, f := range flashes {
		if n, ok := f.(Notice); ok {
			page.Notices = append(page.Notices, n)
		}
	}
	_ = session.Save()
	return page
}

// flash 写入跨重定向的提示
func flash(c *gin.Context, level, text string) {
	session := sessions.Default(c)
	session.AddFlash(Notice{Level: level, Text: text})
	_ = session.Save()
}

// redirectWith 写入提示后 302 跳转
func redirectWith(c *gin.Context, location, level, text string) {
	flash(c, level, text)
	c.Redirect(http.StatusFound, location)
}

// render 渲染页面模板，data 中注入 Page
func render(c *gin.Context, status int, name string, page *Page, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Page"] = page
	c.HTML(status, name, data)
}

// renderError 渲染错误页
func renderError(c *gin.Context, status int, title, message string) {
	render(c, status, "error.html", newPage(c), gin.H{
		"Title":   title,
		"Message": message,
	})
}

func renderInternalError(c *gin.Context) {
	renderError(c, http.StatusInternalServerError, "Server error", "Something went wrong. Please try again.")
}
