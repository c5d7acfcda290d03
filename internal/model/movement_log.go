package model

import (
	"fmt"
	"time"
)

// Direction 出入方向
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Valid 是否为合法方向
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// MovementLog 出入记录表，对应 movement_logs（仅追加，不修改不删除）
type MovementLog struct {
	ID           uint      `gorm:"primaryKey"                          json:"id"`
	StudentID    uint      `gorm:"not null;index"                      json:"student_id"`
	Direction    Direction `gorm:"type:varchar(3);not null"            json:"direction"`
	Timestamp    time.Time `gorm:"not null;autoCreateTime;index"       json:"timestamp"`
	RecordedByID *uint     `gorm:"index"                               json:"recorded_by_id,omitempty"`
	Note         string    `gorm:"type:text;not null;default:''"       json:"note"`
	Photo        string    `gorm:"type:varchar(255);not null;default:''" json:"photo,omitempty"` // 不透明引用，流程中不写入

	// 关联
	Student    *Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"     json:"student,omitempty"`
	RecordedBy *User    `gorm:"foreignKey:RecordedByID;constraint:OnDelete:SET NULL" json:"recorded_by,omitempty"`
}

// TableName 指定表名
func (MovementLog) TableName() string { return "movement_logs" }

func (m MovementLog) String() string {
	enr := fmt.Sprintf("#%d", m.StudentID)
	if m.Student != nil {
		enr = m.Student.EnrollmentNumber
	}
	return fmt.Sprintf("%s %s at %s", enr, m.Direction, m.Timestamp.Format("2006-01-02 15:04"))
}
