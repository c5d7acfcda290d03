package dto

import "time"

// ── 认证模块 DTO ──

// LoginRequest 登录表单
type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required,max=150"`
	Password string `form:"password" json:"password" validate:"required"`
	Next     string `form:"next"     json:"next"`
}

// TokenResponse 登录成功后的 Token 信息
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserResponse 用户信息（脱敏）
type UserResponse struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	FullName    string   `json:"full_name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// CreateUserRequest 新建门岗人员（cmd/adduser 使用）
type CreateUserRequest struct {
	Username    string   `validate:"required,max=150"`
	FullName    string   `validate:"max=120"`
	Password    string   `validate:"required,min=8"`
	Role        string   `validate:"required,oneof=staff guard warden admin"`
	Permissions []string `validate:"dive,oneof=can_toggle_status view_student add_student change_student view_movementlog"`
}
