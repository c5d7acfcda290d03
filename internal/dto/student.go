package dto

import (
	"sort"
	"strings"
	"time"
)

// ── 学生模块 DTO ──

// StudentForm 新增 / 编辑学生表单
type StudentForm struct {
	EnrollmentNumber string `form:"enrollment_number" validate:"required,max=32"`
	FullName         string `form:"full_name"         validate:"required,max=120"`
	RoomNumber       string `form:"room_number"       validate:"max=20"`
	Phone            string `form:"phone"             validate:"max=20"`
	IsInside         bool   `form:"-"` // 复选框由 handler 解析
}

// Normalize 去除首尾空白
func (f *StudentForm) Normalize() {
	f.EnrollmentNumber = strings.TrimSpace(f.EnrollmentNumber)
	f.FullName = strings.TrimSpace(f.FullName)
	f.RoomNumber = strings.TrimSpace(f.RoomNumber)
	f.Phone = strings.TrimSpace(f.Phone)
}

// FieldErrors 表单字段级错误：字段名 → 提示
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

// Counts 在校 / 离校人数
type Counts struct {
	Inside  int64
	Outside int64
}

// ImportResult CSV 导入统计
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// ── 门岗接口 DTO ──

// ToggleRequest 切换在校状态（表单与 JSON 共用）
type ToggleRequest struct {
	EnrollmentNumber string `form:"enrollment_number" json:"enrollment_number"`
	Note             string `form:"note"              json:"note"`
}

// CheckRequest 精确查询
type CheckRequest struct {
	EnrollmentNumber string `form:"enrollment_number" json:"enrollment_number"`
}

// SearchItem /api/search 单条结果
type SearchItem struct {
	Enrollment string `json:"enrollment"`
	Name       string `json:"name"`
	Room       string `json:"room"`
	Phone      string `json:"phone"`
	IsInside   bool   `json:"is_inside"`
}

// SearchResponse /api/search 响应
type SearchResponse struct {
	Results []SearchItem `json:"results"`
}

// CheckResponse /api/check 响应；未找到时仅含 found=false
type CheckResponse struct {
	Found      bool   `json:"found"`
	Enrollment string `json:"enrollment,omitempty"`
	Name       string `json:"name,omitempty"`
	IsInside   *bool  `json:"is_inside,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ToggleResponse /api/toggle 成功响应
type ToggleResponse struct {
	OK         bool      `json:"ok"`
	Enrollment string    `json:"enrollment"`
	Name       string    `json:"name"`
	IsInside   bool      `json:"is_inside"`
	Direction  string    `json:"direction"`
	Timestamp  time.Time `json:"timestamp"`
}
