package handler

import (
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Page    *PageHandler
	Student *StudentHandler
	API     *APIHandler
	Auth    *AuthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Page:    NewPageHandler(svc.Student, svc.Gate, svc.Movement, logger),
		Student: NewStudentHandler(cfg, svc.Student, svc.Import, logger),
		API:     NewAPIHandler(svc.Student, svc.Gate, logger),
		Auth:    NewAuthHandler(cfg, svc.Auth, logger),
	}
}
