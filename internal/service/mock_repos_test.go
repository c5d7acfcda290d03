package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	"github.com/maximanoob01/hostel-gate-checkk/internal/repository"
	pkgerrors "github.com/maximanoob01/hostel-gate-checkk/pkg/errors"
)

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students []*model.Student
	logs     *mockMovementLogRepo
	nextID   uint
	queries  int // Find / GetByEnrollment / Count 调用次数

	// 可选故障注入
	createErr error
	toggleErr error
}

func newMockStudentRepo(logs *mockMovementLogRepo) *mockStudentRepo {
	return &mockStudentRepo{logs: logs, nextID: 1}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, s := range m.students {
		if s.EnrollmentNumber == student.EnrollmentNumber {
			return errors.New("UNIQUE constraint failed: students.enrollment_number")
		}
	}
	student.ID = m.nextID
	m.nextID++
	cp := *student
	m.students = append(m.students, &cp)
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id uint) (*model.Student, error) {
	for _, s := range m.students {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByEnrollment(ctx context.Context, enr string) (*model.Student, error) {
	found, _ := m.Find(ctx, repository.EnrollmentEquals(enr), 0)
	if len(found) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return &found[0], nil
}

func (m *mockStudentRepo) Find(_ context.Context, filter repository.StudentFilter, limit int) ([]model.Student, error) {
	m.queries++
	var result []model.Student
	for _, s := range m.students {
		if filter.Matches(s) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EnrollmentNumber < result[j].EnrollmentNumber })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockStudentRepo) Count(ctx context.Context, filter repository.StudentFilter) (int64, error) {
	found, _ := m.Find(ctx, filter, 0)
	return int64(len(found)), nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	for i, s := range m.students {
		if s.ID == student.ID {
			cp := *student
			m.students[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) TogglePresence(_ context.Context, student *model.Student, recordedBy *uint, note string) (*model.MovementLog, error) {
	if m.toggleErr != nil {
		return nil, m.toggleErr
	}
	for _, s := range m.students {
		if s.ID != student.ID {
			continue
		}
		if s.IsInside != student.IsInside {
			return nil, pkgerrors.ErrOptimisticLock
		}
		s.IsInside = !s.IsInside
		student.IsInside = s.IsInside

		entry := &model.MovementLog{
			StudentID:    s.ID,
			Direction:    s.Presence(),
			Timestamp:    time.Now(),
			RecordedByID: recordedBy,
			Note:         note,
		}
		m.logs.record(entry, s)
		return entry, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) add(students ...model.Student) {
	for i := range students {
		_ = m.Create(context.Background(), &students[i])
	}
}

// ── Mock MovementLogRepository ──

type mockMovementLogRepo struct {
	entries []model.MovementLog
}

func newMockMovementLogRepo() *mockMovementLogRepo {
	return &mockMovementLogRepo{}
}

func (m *mockMovementLogRepo) record(entry *model.MovementLog, student *model.Student) {
	entry.ID = uint(len(m.entries) + 1)
	cp := *entry
	st := *student
	cp.Student = &st
	m.entries = append(m.entries, cp)
}

func (m *mockMovementLogRepo) ListRecent(_ context.Context, limit int) ([]model.MovementLog, error) {
	var result []model.MovementLog
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.entries[i])
	}
	return result, nil
}

func (m *mockMovementLogRepo) ListByStudent(_ context.Context, studentID uint, limit int) ([]model.MovementLog, error) {
	var result []model.MovementLog
	for i := len(m.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if m.entries[i].StudentID == studentID {
			result = append(result, m.entries[i])
		}
	}
	return result, nil
}

func (m *mockMovementLogRepo) Latest(_ context.Context, studentID uint) (*model.MovementLog, error) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].StudentID == studentID {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*model.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GrantPermissions(_ context.Context, userID uint, codes []string) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, code := range codes {
		u.Permissions = append(u.Permissions, model.UserPermission{UserID: userID, Codename: code})
	}
	return nil
}

// ── 测试辅助 ──

type mockRepos struct {
	students *mockStudentRepo
	logs     *mockMovementLogRepo
	users    *mockUserRepo
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL: 15 * time.Minute,
		},
		Gate: config.GateConfig{
			SearchLimit:  50,
			LogLimit:     500,
			HistoryLimit: 10,
			Timezone:     "UTC",
		},
	}
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	logs := newMockMovementLogRepo()
	m := &mockRepos{
		students: newMockStudentRepo(logs),
		logs:     logs,
		users:    newMockUserRepo(),
	}
	return &repository.Repository{
		Student:     m.students,
		MovementLog: m.logs,
		User:        m.users,
	}, m
}
