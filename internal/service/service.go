package service

import (
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/repository"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	Student  StudentService
	Gate     GateService
	Movement MovementService
	Import   ImportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:     NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Student:  NewStudentService(cfg, repo, logger),
		Gate:     NewGateService(cfg, repo, logger),
		Movement: NewMovementService(cfg, repo, logger),
		Import:   NewImportService(repo, logger),
	}
}
