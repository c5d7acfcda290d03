package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/service"
)

func newStudentRouter(t *testing.T, st *mockStudentService, imp *mockImportService) *gin.Engine {
	t.Helper()
	cfg := &config.Config{Gate: config.GateConfig{ImportMaxBytes: 1 << 20}}
	h := NewStudentHandler(cfg, st, imp, zap.NewNop())
	r := newTestRouter(t, admin)
	r.GET("/students/add/", h.AddForm)
	r.POST("/students/add/", h.Add)
	r.GET("/students/:id/edit/", h.EditForm)
	r.POST("/students/:id/edit/", h.Edit)
	r.GET("/students/import/", h.ImportForm)
	r.POST("/students/import/", h.Import)
	r.GET("/check/", func(c *gin.Context) { render(c, http.StatusOK, "check.html", newPage(c), gin.H{"Query": ""}) })
	return r
}

func TestAddForm_DefaultsInside(t *testing.T) {
	r := newStudentRouter(t, &mockStudentService{}, &mockImportService{})

	w := doRequest(r, http.MethodGet, "/students/add/", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	assertContains(t, w.Body.String(), `action="/students/add/"`)
	assertContains(t, w.Body.String(), "checked")
}

func TestAdd_Success(t *testing.T) {
	st := &mockStudentService{}
	r := newStudentRouter(t, st, &mockImportService{})

	w := postForm(r, "/students/add/", url.Values{
		"enrollment_number": {" 2023-010 "},
		"full_name":         {"Asha Rao"},
		"room_number":       {"B-12"},
		"is_inside":         {"on"},
	})
	assertRedirect(t, w, "/students/add/")
	if !st.lastForm.IsInside {
		t.Error("勾选复选框应解析为在校")
	}
	if st.lastForm.RoomNumber != "B-12" {
		t.Errorf("房间号未传递: %+v", st.lastForm)
	}

	body := followFlash(t, r, w, "/students/add/")
	assertContains(t, body, "Student Asha Rao (2023-010) added.")
}

func TestAdd_UncheckedMeansOutside(t *testing.T) {
	st := &mockStudentService{}
	r := newStudentRouter(t, st, &mockImportService{})

	postForm(r, "/students/add/", url.Values{"enrollment_number": {"2023-011"}, "full_name": {"Ravi"}})
	if st.lastForm == nil || st.lastForm.IsInside {
		t.Error("未勾选复选框应解析为离校")
	}
}

func TestAdd_ValidationErrors(t *testing.T) {
	st := &mockStudentService{createErr: dto.FieldErrors{"full_name": "This field is required."}}
	r := newStudentRouter(t, st, &mockImportService{})

	w := postForm(r, "/students/add/", url.Values{"enrollment_number": {"2023-012"}})
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	assertContains(t, w.Body.String(), "This field is required.")
	assertContains(t, w.Body.String(), `value="2023-012"`)
}

func TestAdd_DuplicateEnrollment(t *testing.T) {
	st := &mockStudentService{createErr: service.ErrEnrollmentExists}
	r := newStudentRouter(t, st, &mockImportService{})

	w := postForm(r, "/students/add/", url.Values{"enrollment_number": {"2023-001"}, "full_name": {"Dup"}})
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	assertContains(t, w.Body.String(), "Student with this Enrollment number already exists.")
}

func TestEdit(t *testing.T) {
	t.Run("表单回填", func(t *testing.T) {
		st := &mockStudentService{getResult: johnDoe()}
		r := newStudentRouter(t, st, &mockImportService{})
		w := doRequest(r, http.MethodGet, "/students/7/edit/", nil, "")
		if w.Code != http.StatusOK {
			t.Fatalf("期望 200，实际 %d", w.Code)
		}
		assertContains(t, w.Body.String(), `action="/students/7/edit/"`)
		assertContains(t, w.Body.String(), `value="A-101"`)
	})

	t.Run("非法 ID", func(t *testing.T) {
		r := newStudentRouter(t, &mockStudentService{}, &mockImportService{})
		if w := doRequest(r, http.MethodGet, "/students/abc/edit/", nil, ""); w.Code != http.StatusNotFound {
			t.Errorf("期望 404，实际 %d", w.Code)
		}
	})

	t.Run("学生不存在", func(t *testing.T) {
		st := &mockStudentService{getErr: service.ErrStudentNotFound, updateErr: service.ErrStudentNotFound}
		r := newStudentRouter(t, st, &mockImportService{})
		if w := doRequest(r, http.MethodGet, "/students/99/edit/", nil, ""); w.Code != http.StatusNotFound {
			t.Errorf("GET 期望 404，实际 %d", w.Code)
		}
		w := postForm(r, "/students/99/edit/", url.Values{"enrollment_number": {"x"}, "full_name": {"y"}})
		if w.Code != http.StatusNotFound {
			t.Errorf("POST 期望 404，实际 %d", w.Code)
		}
	})

	t.Run("保存成功", func(t *testing.T) {
		st := &mockStudentService{}
		r := newStudentRouter(t, st, &mockImportService{})
		w := postForm(r, "/students/7/edit/", url.Values{
			"enrollment_number": {"2023-001"},
			"full_name":         {"John A. Doe"},
		})
		assertRedirect(t, w, "/check/")
		if st.lastID != 7 {
			t.Errorf("期望更新 ID 7，实际 %d", st.lastID)
		}
		assertContains(t, followFlash(t, r, w, "/check/"), "Updated John A. Doe.")
	})

	t.Run("重复学号", func(t *testing.T) {
		st := &mockStudentService{updateErr: service.ErrEnrollmentExists}
		r := newStudentRouter(t, st, &mockImportService{})
		w := postForm(r, "/students/7/edit/", url.Values{"enrollment_number": {"2023-002"}, "full_name": {"John"}})
		if w.Code != http.StatusOK {
			t.Fatalf("期望 200，实际 %d", w.Code)
		}
		assertContains(t, w.Body.String(), "Student with this Enrollment number already exists.")
	})
}

func TestImport_Success(t *testing.T) {
	imp := &mockImportService{result: &dto.ImportResult{Created: 1, Updated: 1, Errors: 1}}
	r := newStudentRouter(t, &mockStudentService{}, imp)

	csv := "enrollment_number,full_name,room_number,phone\n2023-001,John,A-1,\n"
	body, contentType := multipartFile(t, "file", "students.csv", csv)
	w := doRequest(r, http.MethodPost, "/students/import/", body, contentType)

	assertRedirect(t, w, "/students/import/")
	if imp.body != csv {
		t.Errorf("上传内容未完整传递: %q", imp.body)
	}
	assertContains(t, followFlash(t, r, w, "/students/import/"), "Import complete. Created: 1, Updated: 1, Errors: 1")
}

func TestImport_TooLarge(t *testing.T) {
	imp := &mockImportService{result: &dto.ImportResult{}}
	r := newStudentRouter(t, &mockStudentService{}, imp)

	// 上限 1 MB，上传约 2.4 MB
	row := "2023-001,John Doe,A-101,1234567890\n"
	csv := "enrollment_number,full_name,room_number,phone\n" + strings.Repeat(row, (12<<20)/(5*len(row)))
	body, contentType := multipartFile(t, "file", "students.csv", csv)
	w := doRequest(r, http.MethodPost, "/students/import/", body, contentType)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("期望 413，实际 %d", w.Code)
	}
	assertContains(t, w.Body.String(), "The uploaded file is too large.")
	if imp.body != "" {
		t.Error("超限文件不应进入导入流程")
	}
}

func TestImport_Errors(t *testing.T) {
	t.Run("缺少文件", func(t *testing.T) {
		r := newStudentRouter(t, &mockStudentService{}, &mockImportService{})
		body, contentType := multipartFile(t, "other", "x.csv", "a")
		w := doRequest(r, http.MethodPost, "/students/import/", body, contentType)
		if w.Code != http.StatusOK {
			t.Fatalf("期望 200，实际 %d", w.Code)
		}
		assertContains(t, w.Body.String(), "This field is required.")
	})

	t.Run("非法 CSV", func(t *testing.T) {
		imp := &mockImportService{err: fmt.Errorf("%w: bare quote", service.ErrInvalidCSV)}
		r := newStudentRouter(t, &mockStudentService{}, imp)
		body, contentType := multipartFile(t, "file", "x.csv", "\"")
		w := doRequest(r, http.MethodPost, "/students/import/", body, contentType)
		assertContains(t, w.Body.String(), "The uploaded file is not a valid CSV file.")
	})

	t.Run("读取中断仍汇报", func(t *testing.T) {
		imp := &mockImportService{result: &dto.ImportResult{Created: 2}, err: errBoom}
		r := newStudentRouter(t, &mockStudentService{}, imp)
		body, contentType := multipartFile(t, "file", "x.csv", "enrollment_number\n")
		w := doRequest(r, http.MethodPost, "/students/import/", body, contentType)
		assertRedirect(t, w, "/students/import/")
		assertContains(t, followFlash(t, r, w, "/students/import/"), "Created: 2, Updated: 0, Errors: 0")
	})

	t.Run("存储异常", func(t *testing.T) {
		imp := &mockImportService{err: errBoom}
		r := newStudentRouter(t, &mockStudentService{}, imp)
		body, contentType := multipartFile(t, "file", "x.csv", "enrollment_number\n")
		w := doRequest(r, http.MethodPost, "/students/import/", body, contentType)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("期望 500，实际 %d", w.Code)
		}
	})
}

func TestChecked(t *testing.T) {
	for v, want := range map[string]bool{"on": true, "true": true, "1": true, "": false, "off": false, "false": false} {
		if got := checked(v); got != want {
			t.Errorf("checked(%q) = %v，期望 %v", v, got, want)
		}
	}
}
