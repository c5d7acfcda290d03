// Package authz 描述门岗系统的权限模型：角色 → 权限集合，外加单用户授权。
package authz

import "sort"

// Permission 权限代码
type Permission string

const (
	PermToggleStatus    Permission = "can_toggle_status"
	PermViewStudent     Permission = "view_student"
	PermAddStudent      Permission = "add_student"
	PermChangeStudent   Permission = "change_student"
	PermViewMovementLog Permission = "view_movementlog"
)

// 角色；staff 仅可登录，权限全部来自单用户授权
const (
	RoleStaff  = "staff"
	RoleGuard  = "guard"
	RoleWarden = "warden"
	RoleAdmin  = "admin"
)

// ContextKey gin.Context 中存放 *Identity 的键
const ContextKey = "identity"

var allPermissions = []Permission{
	PermToggleStatus,
	PermViewStudent,
	PermAddStudent,
	PermChangeStudent,
	PermViewMovementLog,
}

var rolePermissions = map[string][]Permission{
	RoleStaff:  {},
	RoleGuard:  {PermToggleStatus, PermViewMovementLog},
	RoleWarden: {PermToggleStatus, PermViewMovementLog, PermViewStudent, PermAddStudent, PermChangeStudent},
	RoleAdmin:  allPermissions,
}

// ValidRole 角色是否存在
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}

// ValidPermission 权限代码是否存在
func ValidPermission(code string) bool {
	for _, p := range allPermissions {
		if string(p) == code {
			return true
		}
	}
	return false
}

// Identity 当前请求的登录身份
type Identity struct {
	UserID      uint
	Username    string
	FullName    string
	Role        string
	Permissions map[Permission]bool
}

// NewIdentity 合并角色权限与单用户授权
func NewIdentity(userID uint, username, fullName, role string, grants []string) *Identity {
	perms := make(map[Permission]bool)
	for _, p := range rolePermissions[role] {
		perms[p] = true
	}
	for _, g := range grants {
		if ValidPermission(g) {
			perms[Permission(g)] = true
		}
	}
	return &Identity{
		UserID:      userID,
		Username:    username,
		FullName:    fullName,
		Role:        role,
		Permissions: perms,
	}
}

// Has 同时具备全部指定权限时返回 true；nil 身份（匿名）恒为 false
func (i *Identity) Has(perms ...Permission) bool {
	if i == nil {
		return false
	}
	for _, p := range perms {
		if !i.Permissions[p] {
			return false
		}
	}
	return true
}

// List 返回排序后的权限列表
func (i *Identity) List() []string {
	if i == nil {
		return nil
	}
	out := make([]string, 0, len(i.Permissions))
	for p := range i.Permissions {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

// DisplayName 优先展示姓名
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.FullName != "" {
		return i.FullName
	}
	return i.Username
}

// Getter 按键读取请求上下文（*gin.Context 满足）
type Getter interface {
	Get(key string) (value any, exists bool)
}

// FromContext 取出当前身份；匿名时返回 nil
func FromContext(c Getter) *Identity {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*Identity)
	return identity
}
