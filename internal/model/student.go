package model

import "fmt"

// Student 学生表，对应 students
//
// enrollment_number 在存储层区分大小写唯一，但所有查询按不区分大小写匹配。
// IsInside 不设 gorm default 标签：否则显式写入 false 会被默认值覆盖。
type Student struct {
	ID               uint   `gorm:"primaryKey"                                 json:"id"`
	EnrollmentNumber string `gorm:"type:varchar(32);not null;uniqueIndex"      json:"enrollment_number"`
	FullName         string `gorm:"type:varchar(120);not null"                 json:"full_name"`
	RoomNumber       string `gorm:"type:varchar(20);not null;default:''"       json:"room_number"`
	Phone            string `gorm:"type:varchar(20);not null;default:''"       json:"phone"`
	IsInside         bool   `gorm:"not null"                                   json:"is_inside"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

func (s Student) String() string {
	return fmt.Sprintf("%s - %s", s.EnrollmentNumber, s.FullName)
}

// Presence 返回当前状态对应的方向
func (s Student) Presence() Direction {
	if s.IsInside {
		return DirectionIn
	}
	return DirectionOut
}
