package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	pkgerrors "github.com/maximanoob01/hostel-gate-checkk/pkg/errors"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id uint) (*model.Student, error)
	GetByEnrollment(ctx context.Context, enr string) (*model.Student, error)
	Find(ctx context.Context, filter StudentFilter, limit int) ([]model.Student, error)
	Count(ctx context.Context, filter StudentFilter) (int64, error)
	Update(ctx context.Context, student *model.Student) error
	TogglePresence(ctx context.Context, student *model.Student, recordedBy *uint, note string) (*model.MovementLog, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// GetByEnrollment 不区分大小写精确匹配；仅大小写不同的多条记录取 id 最小者
func (r *studentRepo) GetByEnrollment(ctx context.Context, enr string) (*model.Student, error) {
	var student model.Student
	err := EnrollmentEquals(enr).apply(r.db.WithContext(ctx)).
		Order("id ASC").
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// Find 按学号升序返回；limit <= 0 表示不限
func (r *studentRepo) Find(ctx context.Context, filter StudentFilter, limit int) ([]model.Student, error) {
	var students []model.Student
	db := filter.apply(r.db.WithContext(ctx)).Order("enrollment_number ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) Count(ctx context.Context, filter StudentFilter) (int64, error) {
	var total int64
	err := filter.apply(r.db.WithContext(ctx).Model(&model.Student{})).
		Count(&total).Error
	return total, err
}

// Update 只写资料字段与在校状态，不触碰 created_at
func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).
		Model(student).
		Select("enrollment_number", "full_name", "room_number", "phone", "is_inside", "updated_at").
		Updates(student).Error
}

// TogglePresence 翻转在校状态并追加一条出入记录，二者同一事务提交
//
// 以读取时的 is_inside 作为比较条件；若期间已被其他请求翻转，
// 受影响行数为 0，返回 ErrOptimisticLock 并回滚。
func (r *studentRepo) TogglePresence(ctx context.Context, student *model.Student, recordedBy *uint, note string) (*model.MovementLog, error) {
	wasInside := student.IsInside
	var entry *model.MovementLog

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Student{}).
			Where("id = ? AND is_inside = ?", student.ID, wasInside).
			Update("is_inside", !wasInside)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		direction := model.DirectionOut
		if !wasInside {
			direction = model.DirectionIn
		}
		entry = &model.MovementLog{
			StudentID:    student.ID,
			Direction:    direction,
			RecordedByID: recordedBy,
			Note:         note,
		}
		return tx.Omit("Student", "RecordedBy").Create(entry).Error
	})
	if err != nil {
		return nil, err
	}

	student.IsInside = !wasInside
	return entry, nil
}
