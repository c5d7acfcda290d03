package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
)

// MovementLogRepository 出入记录数据访问接口（仅追加，写入由 StudentRepository.TogglePresence 完成）
type MovementLogRepository interface {
	ListRecent(ctx context.Context, limit int) ([]model.MovementLog, error)
	ListByStudent(ctx context.Context, studentID uint, limit int) ([]model.MovementLog, error)
	Latest(ctx context.Context, studentID uint) (*model.MovementLog, error)
}

type movementLogRepo struct {
	db *gorm.DB
}

// NewMovementLogRepo 创建 MovementLogRepository 实例
func NewMovementLogRepo(db *gorm.DB) MovementLogRepository {
	return &movementLogRepo{db: db}
}

// ListRecent 最新在前，附带学生与记录人
func (r *movementLogRepo) ListRecent(ctx context.Context, limit int) ([]model.MovementLog, error) {
	var logs []model.MovementLog
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("RecordedBy").
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *movementLogRepo) ListByStudent(ctx context.Context, studentID uint, limit int) ([]model.MovementLog, error) {
	var logs []model.MovementLog
	err := r.db.WithContext(ctx).
		Preload("RecordedBy").
		Where("student_id = ?", studentID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *movementLogRepo) Latest(ctx context.Context, studentID uint) (*model.MovementLog, error) {
	var entry model.MovementLog
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("timestamp DESC").
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
