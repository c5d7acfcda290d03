package model

// User 门岗工作人员表，对应 users
type User struct {
	ID           uint   `gorm:"primaryKey"                                json:"id"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"    json:"username"`
	FullName     string `gorm:"type:varchar(120);not null;default:''"     json:"full_name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                json:"-"`
	Role         string `gorm:"type:varchar(20);not null"                 json:"role"` // staff | guard | warden | admin
	IsActive     bool   `gorm:"not null"                                  json:"is_active"`
	BaseModel

	// 关联
	Permissions []UserPermission `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DisplayName 优先展示姓名
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// UserPermission 单用户额外授权，对应 user_permissions
type UserPermission struct {
	ID       uint   `gorm:"primaryKey"                                          json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_user_permissions_user_code" json:"user_id"`
	Codename string `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_permissions_user_code" json:"codename"`
}

// TableName 指定表名
func (UserPermission) TableName() string { return "user_permissions" }

// All 返回需要建表的全部模型（sqlite AutoMigrate 使用）
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserPermission{},
		&Student{},
		&MovementLog{},
	}
}
