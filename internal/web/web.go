// Package web 内嵌 HTML 页面模板。
package web

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates 解析全部页面模板，时间按 loc 展示
func Templates(loc *time.Location) (*template.Template, error) {
	funcs := template.FuncMap{
		"localtime": func(t time.Time) string {
			return t.In(loc).Format("02 Jan 2006, 03:04 PM")
		},
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
