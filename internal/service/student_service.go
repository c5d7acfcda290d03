package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	"github.com/maximanoob01/hostel-gate-checkk/internal/repository"
)

// StudentService 学生查询与资料维护接口
type StudentService interface {
	Lookup(ctx context.Context, enr string) (*model.Student, error)
	Search(ctx context.Context, query string) (*SearchResult, error)
	Suggest(ctx context.Context, query string) ([]model.Student, error)
	Counts(ctx context.Context) (*dto.Counts, error)
	ListByPresence(ctx context.Context, inside bool) ([]model.Student, error)
	GetByID(ctx context.Context, id uint) (*model.Student, error)
	Create(ctx context.Context, form *dto.StudentForm) (*model.Student, error)
	Update(ctx context.Context, id uint, form *dto.StudentForm) (*model.Student, error)
}

// SearchResult 检索结果：精确命中时 Student 非空，否则为部分匹配列表
type SearchResult struct {
	Query   string
	Student *model.Student
	Results []model.Student
}

// Empty 无任何匹配
func (r *SearchResult) Empty() bool {
	return r.Student == nil && len(r.Results) == 0
}

type studentService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{cfg: cfg, repo: repo, logger: logger}
}

// Lookup 按学号精确查找（不区分大小写）
func (s *studentService) Lookup(ctx context.Context, enr string) (*model.Student, error) {
	enr = strings.TrimSpace(enr)
	if enr == "" {
		return nil, ErrMissingEnrollment
	}
	student, err := s.repo.Student.GetByEnrollment(ctx, enr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("enrollment", enr), zap.Error(err))
		return nil, err
	}
	return student, nil
}

// Search 先精确匹配学号，再按学号或姓名做部分匹配
func (s *studentService) Search(ctx context.Context, query string) (*SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	result := &SearchResult{Query: q}

	// 仅唯一精确命中时展示单卡；大小写变体并存时走列表
	exact, err := s.repo.Student.Find(ctx, repository.EnrollmentEquals(q), 2)
	if err != nil {
		s.logger.Error("精确匹配学生失败", zap.String("query", q), zap.Error(err))
		return nil, err
	}
	if len(exact) == 1 {
		result.Student = &exact[0]
		return result, nil
	}

	matches, err := s.Suggest(ctx, q)
	if err != nil {
		return nil, err
	}
	result.Results = matches
	return result, nil
}

// Suggest 学号或姓名部分匹配，按学号升序，数量受 gate.search_limit 限制
func (s *studentService) Suggest(ctx context.Context, query string) ([]model.Student, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []model.Student{}, nil
	}
	filter := repository.AnyOf(repository.EnrollmentContains(q), repository.NameContains(q))
	students, err := s.repo.Student.Find(ctx, filter, s.cfg.Gate.SearchLimit)
	if err != nil {
		s.logger.Error("检索学生失败", zap.String("query", q), zap.Error(err))
		return nil, err
	}
	return students, nil
}

func (s *studentService) Counts(ctx context.Context) (*dto.Counts, error) {
	inside, err := s.repo.Student.Count(ctx, repository.PresenceIs(true))
	if err != nil {
		return nil, err
	}
	outside, err := s.repo.Student.Count(ctx, repository.PresenceIs(false))
	if err != nil {
		return nil, err
	}
	return &dto.Counts{Inside: inside, Outside: outside}, nil
}

func (s *studentService) ListByPresence(ctx context.Context, inside bool) ([]model.Student, error) {
	return s.repo.Student.Find(ctx, repository.PresenceIs(inside), 0)
}

func (s *studentService) GetByID(ctx context.Context, id uint) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// ────────────────────── Create / Update ──────────────────────

func (s *studentService) Create(ctx context.Context, form *dto.StudentForm) (*model.Student, error) {
	form.Normalize()
	if err := validateStruct(form); err != nil {
		return nil, err
	}
	if err := s.ensureEnrollmentFree(ctx, form.EnrollmentNumber, 0); err != nil {
		return nil, err
	}

	student := &model.Student{
		EnrollmentNumber: form.EnrollmentNumber,
		FullName:         form.FullName,
		RoomNumber:       form.RoomNumber,
		Phone:            form.Phone,
		IsInside:         form.IsInside,
	}
	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.String("enrollment", form.EnrollmentNumber), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生已创建", zap.Uint("id", student.ID), zap.String("enrollment", student.EnrollmentNumber))
	return student, nil
}

func (s *studentService) Update(ctx context.Context, id uint, form *dto.StudentForm) (*model.Student, error) {
	student, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	form.Normalize()
	if err := validateStruct(form); err != nil {
		return nil, err
	}
	if err := s.ensureEnrollmentFree(ctx, form.EnrollmentNumber, student.ID); err != nil {
		return nil, err
	}

	student.EnrollmentNumber = form.EnrollmentNumber
	student.FullName = form.FullName
	student.RoomNumber = form.RoomNumber
	student.Phone = form.Phone
	student.IsInside = form.IsInside
	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

// ensureEnrollmentFree 学号（不区分大小写）不得被其他学生占用
func (s *studentService) ensureEnrollmentFree(ctx context.Context, enr string, selfID uint) error {
	taken, err := s.repo.Student.Find(ctx, repository.EnrollmentEquals(enr), 0)
	if err != nil {
		return err
	}
	for _, other := range taken {
		if other.ID != selfID {
			return ErrEnrollmentExists
		}
	}
	return nil
}
