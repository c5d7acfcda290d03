package service

import (
	"errors"

	"gorm.io/gorm"
)

// ── 门岗业务错误 ──

var (
	ErrStudentNotFound   = errors.New("student not found")
	ErrEmptyQuery        = errors.New("empty search query")
	ErrMissingEnrollment = errors.New("missing enrollment number")
	ErrToggleConflict    = errors.New("student status changed concurrently")
	ErrEnrollmentExists  = errors.New("enrollment number already exists")
	ErrInvalidCSV        = errors.New("invalid CSV file")
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserInactive       = errors.New("用户已停用")
	ErrUsernameExists     = errors.New("用户名已存在")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
