package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/internal/authz"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/service"
)

// PageHandler 门岗页面处理器：首页、查询、出入切换、名单与记录
type PageHandler struct {
	studentSvc  service.StudentService
	gateSvc     service.GateService
	movementSvc service.MovementService
	logger      *zap.Logger
}

// NewPageHandler 创建 PageHandler
func NewPageHandler(
	studentSvc service.StudentService,
	gateSvc service.GateService,
	movementSvc service.MovementService,
	logger *zap.Logger,
) *PageHandler {
	return &PageHandler{
		studentSvc:  studentSvc,
		gateSvc:     gateSvc,
		movementSvc: movementSvc,
		logger:      logger,
	}
}

// Home 首页在校 / 离校人数
// GET /
func (h *PageHandler) Home(c *gin.Context) {
	h.renderCounts(c, "home.html", "")
}

// Dashboard 登录后的工作台
// GET /dashboard/
func (h *PageHandler) Dashboard(c *gin.Context) {
	h.renderCounts(c, "dashboard.html", "Dashboard")
}

func (h *PageHandler) renderCounts(c *gin.Context, name, title string) {
	counts, err := h.studentSvc.Counts(c.Request.Context())
	if err != nil {
		h.logger.Error("统计人数失败", zap.Error(err))
		renderInternalError(c)
		return
	}
	render(c, http.StatusOK, name, newPage(c), gin.H{
		"Title":  title,
		"Counts": counts,
	})
}

// Check 查询页；?enr= 深链直接展示学生卡片
// GET /check/
func (h *PageHandler) Check(c *gin.Context) {
	page := newPage(c)
	enr := strings.TrimSpace(c.Query("enr"))
	data := gin.H{"Title": "Check", "Query": enr}
	if enr == "" {
		render(c, http.StatusOK, "check.html", page, data)
		return
	}

	student, err := h.studentSvc.Lookup(c.Request.Context(), enr)
	if err != nil {
		if !errors.Is(err, service.ErrStudentNotFound) {
			renderInternalError(c)
			return
		}
		page.Add(LevelError, fmt.Sprintf("No student found for enrollment %s.", enr))
		render(c, http.StatusOK, "check.html", page, data)
		return
	}

	data["Student"] = student
	data["History"] = h.history(c, student.ID)
	render(c, http.StatusOK, "check.html", page, data)
}

// Search 按学号精确匹配，否则学号或姓名部分匹配
// POST /check/
func (h *PageHandler) Search(c *gin.Context) {
	page := newPage(c)
	query := c.PostForm("enrollment_number")
	data := gin.H{"Title": "Check", "Query": strings.TrimSpace(query)}

	result, err := h.studentSvc.Search(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			page.Add(LevelError, "Please enter an enrollment number or name.")
			render(c, http.StatusOK, "check.html", page, data)
			return
		}
		renderInternalError(c)
		return
	}

	switch {
	case result.Student != nil:
		data["Student"] = result.Student
		data["History"] = h.history(c, result.Student.ID)
	case result.Empty():
		page.Add(LevelInfo, fmt.Sprintf("No matches found for “%s”.", result.Query))
	default:
		data["Results"] = result.Results
	}
	render(c, http.StatusOK, "check.html", page, data)
}

// history 学生卡片下方的最近出入记录；失败时仅记录日志
func (h *PageHandler) history(c *gin.Context, studentID uint) interface{} {
	logs, err := h.movementSvc.StudentHistory(c.Request.Context(), studentID)
	if err != nil {
		h.logger.Warn("查询学生出入记录失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil
	}
	return logs
}

// Toggle 切换在校状态并写入出入记录，完成后回到查询页
// POST /toggle/
func (h *PageHandler) Toggle(c *gin.Context) {
	req := dto.ToggleRequest{
		EnrollmentNumber: c.PostForm("enrollment_number"),
		Note:             c.PostForm("note"),
	}

	result, err := h.gateSvc.Toggle(c.Request.Context(), &req, authz.FromContext(c))
	if err != nil {
		h.handleToggleError(c, err)
		return
	}
	redirectWith(c, "/check/", LevelSuccess, result.Message)
}

func (h *PageHandler) handleToggleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound), errors.Is(err, service.ErrMissingEnrollment):
		redirectWith(c, "/check/", LevelError, "Student not found.")
	case errors.Is(err, service.ErrToggleConflict):
		redirectWith(c, "/check/", LevelError, "Status was changed by someone else. Please check again.")
	default:
		renderInternalError(c)
	}
}

// Inside 当前在校名单
// GET /inside/
func (h *PageHandler) Inside(c *gin.Context) {
	h.renderList(c, true, "Currently Inside")
}

// Outside 当前离校名单
// GET /outside/
func (h *PageHandler) Outside(c *gin.Context) {
	h.renderList(c, false, "Currently Outside")
}

func (h *PageHandler) renderList(c *gin.Context, inside bool, title string) {
	students, err := h.studentSvc.ListByPresence(c.Request.Context(), inside)
	if err != nil {
		h.logger.Error("查询名单失败", zap.Bool("inside", inside), zap.Error(err))
		renderInternalError(c)
		return
	}
	render(c, http.StatusOK, "list.html", newPage(c), gin.H{
		"Title":    title,
		"Students": students,
	})
}

// Logs 最近的出入记录
// GET /logs/
func (h *PageHandler) Logs(c *gin.Context) {
	logs, err := h.movementSvc.Recent(c.Request.Context())
	if err != nil {
		h.logger.Error("查询出入记录失败", zap.Error(err))
		renderInternalError(c)
		return
	}
	render(c, http.StatusOK, "logs.html", newPage(c), gin.H{
		"Title": "Movement logs",
		"Logs":  logs,
	})
}

// ExportLogs 导出出入记录为 Excel
// GET /logs/export/
func (h *PageHandler) ExportLogs(c *gin.Context) {
	buf, filename, err := h.movementSvc.Export(c.Request.Context())
	if err != nil {
		h.logger.Error("导出出入记录失败", zap.Error(err))
		renderInternalError(c)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
