package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Failure JSON 接口统一错误体：{"ok": false, "error": "<code>"}
type Failure struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// 错误代码
const (
	CodeMissingEnrollment = "missing_enrollment_number"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeAuthRequired      = "authentication_required"
	CodePermissionDenied  = "permission_denied"
	CodeRateLimited       = "rate_limited"
	CodeBodyTooLarge      = "request_too_large"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal_error"
)

// OK 200 成功响应（业务体由调用方决定）
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code string) {
	c.JSON(httpStatus, Failure{OK: false, Error: code})
}

// ErrorWithDetail 带详情的错误响应
func ErrorWithDetail(c *gin.Context, httpStatus int, code, detail string) {
	c.JSON(httpStatus, Failure{OK: false, Error: code, Detail: detail})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code string) {
	Error(c, http.StatusBadRequest, code)
}

// Unauthorized 401
func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, CodeAuthRequired)
}

// Forbidden 403
func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, CodePermissionDenied)
}

// NotFound 404
func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, CodeNotFound)
}

// Conflict 409
func Conflict(c *gin.Context) {
	Error(c, http.StatusConflict, CodeConflict)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal)
}
