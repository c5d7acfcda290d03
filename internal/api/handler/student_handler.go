package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	"github.com/maximanoob01/hostel-gate-checkk/internal/service"
)

const msgEnrollmentExists = "Student with this Enrollment number already exists."

// StudentHandler 学生资料维护：新增、编辑、CSV 导入
type StudentHandler struct {
	cfg        *config.Config
	studentSvc service.StudentService
	importSvc  service.ImportService
	logger     *zap.Logger
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(
	cfg *config.Config,
	studentSvc service.StudentService,
	importSvc service.ImportService,
	logger *zap.Logger,
) *StudentHandler {
	return &StudentHandler{
		cfg:        cfg,
		studentSvc: studentSvc,
		importSvc:  importSvc,
		logger:     logger,
	}
}

// AddForm 新增学生表单
// GET /students/add/
func (h *StudentHandler) AddForm(c *gin.Context) {
	h.renderForm(c, newPage(c), http.StatusOK, "Add student", "/students/add/", &dto.StudentForm{IsInside: true}, nil)
}

// Add 新增学生，成功后回到空白表单继续录入
// POST /students/add/
func (h *StudentHandler) Add(c *gin.Context) {
	form := bindStudentForm(c)

	student, err := h.studentSvc.Create(c.Request.Context(), form)
	if err != nil {
		h.handleFormError(c, "Add student", "/students/add/", form, err)
		return
	}
	redirectWith(c, "/students/add/", LevelSuccess,
		fmt.Sprintf("Student %s (%s) added.", student.FullName, student.EnrollmentNumber))
}

// EditForm 编辑学生表单
// GET /students/:id/edit/
func (h *StudentHandler) EditForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	student, err := h.studentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleFormError(c, "Edit student", "", nil, err)
		return
	}
	h.renderForm(c, newPage(c), http.StatusOK, "Edit student", editPath(id), formOf(student), nil)
}

// Edit 保存学生资料
// POST /students/:id/edit/
func (h *StudentHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	form := bindStudentForm(c)

	student, err := h.studentSvc.Update(c.Request.Context(), id, form)
	if err != nil {
		h.handleFormError(c, "Edit student", editPath(id), form, err)
		return
	}
	redirectWith(c, "/check/", LevelSuccess, fmt.Sprintf("Updated %s.", student.FullName))
}

// ImportForm CSV 上传页
// GET /students/import/
func (h *StudentHandler) ImportForm(c *gin.Context) {
	render(c, http.StatusOK, "import.html", newPage(c), gin.H{"Title": "Import students"})
}

// Import 按学号新增或覆盖学生
// POST /students/import/
func (h *StudentHandler) Import(c *gin.Context) {
	if limit := h.cfg.Gate.ImportMaxBytes; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderImportError(c, http.StatusRequestEntityTooLarge, "The uploaded file is too large.")
			return
		}
		h.renderImportError(c, http.StatusOK, "This field is required.")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("打开上传文件失败", zap.Error(err))
		renderInternalError(c)
		return
	}
	defer file.Close()

	result, err := h.importSvc.ImportCSV(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCSV) {
			h.renderImportError(c, http.StatusOK, "The uploaded file is not a valid CSV file.")
			return
		}
		if result == nil {
			h.logger.Error("CSV 导入失败", zap.Error(err))
			renderInternalError(c)
			return
		}
		// 读取中断：已写入的行照常汇报
		h.logger.Warn("CSV 导入提前结束", zap.Error(err))
	}

	redirectWith(c, "/students/import/", LevelSuccess,
		fmt.Sprintf("Import complete. Created: %d, Updated: %d, Errors: %d", result.Created, result.Updated, result.Errors))
}

func (h *StudentHandler) renderImportError(c *gin.Context, status int, msg string) {
	render(c, status, "import.html", newPage(c), gin.H{
		"Title": "Import students",
		"Error": msg,
	})
}

func (h *StudentHandler) renderForm(c *gin.Context, page *Page, status int, title, action string, form *dto.StudentForm, errs dto.FieldErrors) {
	if errs == nil {
		errs = dto.FieldErrors{}
	}
	render(c, status, "student_form.html", page, gin.H{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs,
	})
}

// handleFormError 统一处理新增 / 编辑学生的业务错误
func (h *StudentHandler) handleFormError(c *gin.Context, title, action string, form *dto.StudentForm, err error) {
	var fieldErrs dto.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		h.renderForm(c, newPage(c), http.StatusOK, title, action, form, fieldErrs)
	case errors.Is(err, service.ErrEnrollmentExists):
		h.renderForm(c, newPage(c), http.StatusOK, title, action, form,
			dto.FieldErrors{"enrollment_number": msgEnrollmentExists})
	case errors.Is(err, service.ErrStudentNotFound):
		renderError(c, http.StatusNotFound, "Not found", "Student not found.")
	default:
		h.logger.Error("保存学生失败", zap.Error(err))
		renderInternalError(c)
	}
}

// bindStudentForm 读取表单；复选框未勾选时不提交任何值
func bindStudentForm(c *gin.Context) *dto.StudentForm {
	var form dto.StudentForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		form = dto.StudentForm{
			EnrollmentNumber: c.PostForm("enrollment_number"),
			FullName:         c.PostForm("full_name"),
			RoomNumber:       c.PostForm("room_number"),
			Phone:            c.PostForm("phone"),
		}
	}
	form.IsInside = checked(c.PostForm("is_inside"))
	return &form
}

func checked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func formOf(s *model.Student) *dto.StudentForm {
	return &dto.StudentForm{
		EnrollmentNumber: s.EnrollmentNumber,
		FullName:         s.FullName,
		RoomNumber:       s.RoomNumber,
		Phone:            s.Phone,
		IsInside:         s.IsInside,
	}
}

func editPath(id uint) string {
	return fmt.Sprintf("/students/%d/edit/", id)
}

// parseID 解析路径中的学生 ID，非法时渲染 404
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		renderError(c, http.StatusNotFound, "Not found", "Student not found.")
		return 0, false
	}
	return uint(id), true
}
