package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/internal/authz"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/service"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/response"
)

// APIHandler 供外部集成调用的 JSON 接口
type APIHandler struct {
	studentSvc service.StudentService
	gateSvc    service.GateService
	logger     *zap.Logger
}

// NewAPIHandler 创建 APIHandler
func NewAPIHandler(studentSvc service.StudentService, gateSvc service.GateService, logger *zap.Logger) *APIHandler {
	return &APIHandler{studentSvc: studentSvc, gateSvc: gateSvc, logger: logger}
}

// Search 学号或姓名部分匹配
// GET /api/search?q=
func (h *APIHandler) Search(c *gin.Context) {
	students, err := h.studentSvc.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.InternalError(c)
		return
	}

	items := make([]dto.SearchItem, 0, len(students))
	for _, s := range students {
		items = append(items, dto.SearchItem{
			Enrollment: s.EnrollmentNumber,
			Name:       s.FullName,
			Room:       s.RoomNumber,
			Phone:      s.Phone,
			IsInside:   s.IsInside,
		})
	}
	response.OK(c, dto.SearchResponse{Results: items})
}

// Check 按学号精确查询（表单或 JSON）
// POST /api/check
func (h *APIHandler) Check(c *gin.Context) {
	var req dto.CheckRequest
	if err := bindBody(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.CheckResponse{Found: false, Error: response.CodeBadRequest})
		return
	}

	student, err := h.studentSvc.Lookup(c.Request.Context(), req.EnrollmentNumber)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingEnrollment):
			c.JSON(http.StatusBadRequest, dto.CheckResponse{Found: false, Error: response.CodeMissingEnrollment})
		case errors.Is(err, service.ErrStudentNotFound):
			c.JSON(http.StatusNotFound, dto.CheckResponse{Found: false})
		default:
			response.InternalError(c)
		}
		return
	}

	inside := student.IsInside
	response.OK(c, dto.CheckResponse{
		Found:      true,
		Enrollment: student.EnrollmentNumber,
		Name:       student.FullName,
		IsInside:   &inside,
	})
}

// Toggle 切换在校状态
// POST /api/toggle
func (h *APIHandler) Toggle(c *gin.Context) {
	var req dto.ToggleRequest
	if err := bindBody(c, &req); err != nil {
		response.BadRequest(c, response.CodeBadRequest)
		return
	}

	result, err := h.gateSvc.Toggle(c.Request.Context(), &req, authz.FromContext(c))
	if err != nil {
		h.handleToggleError(c, err)
		return
	}

	response.OK(c, dto.ToggleResponse{
		OK:         true,
		Enrollment: result.Student.EnrollmentNumber,
		Name:       result.Student.FullName,
		IsInside:   result.Student.IsInside,
		Direction:  string(result.Direction),
		Timestamp:  result.Timestamp,
	})
}

func (h *APIHandler) handleToggleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingEnrollment):
		response.BadRequest(c, response.CodeMissingEnrollment)
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c)
	case errors.Is(err, service.ErrToggleConflict):
		response.Conflict(c)
	default:
		h.logger.Error("接口切换出入状态失败", zap.Error(err))
		response.InternalError(c)
	}
}

// bindBody 绑定表单或 JSON；空请求体视为未传参，其余解码错误原样返回
func bindBody(c *gin.Context, obj any) error {
	if err := c.ShouldBind(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
