package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/authz"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	"github.com/maximanoob01/hostel-gate-checkk/internal/repository"
	pkgerrors "github.com/maximanoob01/hostel-gate-checkk/pkg/errors"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/metrics"
)

// ToggleResult 一次状态切换的结果
type ToggleResult struct {
	Student   model.Student
	Direction model.Direction
	Timestamp time.Time
	Message   string
}

// GateService 门岗出入切换接口
type GateService interface {
	Toggle(ctx context.Context, req *dto.ToggleRequest, actor *authz.Identity) (*ToggleResult, error)
}

type gateService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGateService 创建 GateService 实例
func NewGateService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) GateService {
	return &gateService{cfg: cfg, repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Toggle 翻转在校状态并记录出入
// ═══════════════════════════════════════════════════════════
//
// 学号不存在时不做任何写入。状态翻转与日志追加同一事务提交；
// 读取之后被其他请求抢先翻转时返回 ErrToggleConflict，两项写入都不生效。

func (s *gateService) Toggle(ctx context.Context, req *dto.ToggleRequest, actor *authz.Identity) (*ToggleResult, error) {
	enr := strings.TrimSpace(req.EnrollmentNumber)
	note := strings.TrimSpace(req.Note)
	if enr == "" {
		return nil, ErrMissingEnrollment
	}

	student, err := s.repo.Student.GetByEnrollment(ctx, enr)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("enrollment", enr), zap.Error(err))
		return nil, err
	}

	var recordedBy *uint
	if actor != nil {
		id := actor.UserID
		recordedBy = &id
	}

	entry, err := s.repo.Student.TogglePresence(ctx, student, recordedBy, note)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			metrics.ToggleConflicts.Inc()
			s.logger.Warn("出入状态并发冲突", zap.String("enrollment", student.EnrollmentNumber))
			return nil, ErrToggleConflict
		}
		s.logger.Error("切换出入状态失败", zap.String("enrollment", student.EnrollmentNumber), zap.Error(err))
		return nil, err
	}

	metrics.Toggles.WithLabelValues(string(entry.Direction)).Inc()
	s.logger.Info("出入状态已切换",
		zap.String("enrollment", student.EnrollmentNumber),
		zap.String("direction", string(entry.Direction)),
		zap.Uintp("recorded_by", recordedBy),
	)

	return &ToggleResult{
		Student:   *student,
		Direction: entry.Direction,
		Timestamp: entry.Timestamp,
		Message:   s.toggleMessage(student, entry),
	}, nil
}

// toggleMessage 形如 "John Doe marked OUT at 05 Mar 2024, 06:30 PM."
func (s *gateService) toggleMessage(student *model.Student, entry *model.MovementLog) string {
	at := entry.Timestamp.In(s.cfg.Gate.Location())
	return fmt.Sprintf("%s marked %s at %s.", student.FullName, entry.Direction, at.Format("02 Jan 2006, 03:04 PM"))
}
