package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maximanoob01/hostel-gate-checkk/internal/authz"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/model"
	"github.com/maximanoob01/hostel-gate-checkk/internal/service"
	"github.com/maximanoob01/hostel-gate-checkk/internal/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock StudentService ──

type mockStudentService struct {
	lookupResult  *model.Student
	lookupErr     error
	searchResult  *service.SearchResult
	searchErr     error
	suggestResult []model.Student
	suggestErr    error
	counts        *dto.Counts
	countsErr     error
	listResult    []model.Student
	listErr       error
	getResult     *model.Student
	getErr        error
	createErr     error
	updateErr     error

	lastLookup string
	lastQuery  string
	lastInside *bool
	lastForm   *dto.StudentForm
	lastID     uint
}

func (m *mockStudentService) Lookup(_ context.Context, enr string) (*model.Student, error) {
	m.lastLookup = enr
	if strings.TrimSpace(enr) == "" {
		return nil, service.ErrMissingEnrollment
	}
	return m.lookupResult, m.lookupErr
}
func (m *mockStudentService) Search(_ context.Context, q string) (*service.SearchResult, error) {
	m.lastQuery = q
	return m.searchResult, m.searchErr
}
func (m *mockStudentService) Suggest(_ context.Context, q string) ([]model.Student, error) {
	m.lastQuery = q
	return m.suggestResult, m.suggestErr
}
func (m *mockStudentService) Counts(_ context.Context) (*dto.Counts, error) {
	return m.counts, m.countsErr
}
func (m *mockStudentService) ListByPresence(_ context.Context, inside bool) ([]model.Student, error) {
	m.lastInside = &inside
	return m.listResult, m.listErr
}
func (m *mockStudentService) GetByID(_ context.Context, id uint) (*model.Student, error) {
	m.lastID = id
	return m.getResult, m.getErr
}
func (m *mockStudentService) Create(_ context.Context, form *dto.StudentForm) (*model.Student, error) {
	m.lastForm = form
	if m.createErr != nil {
		return nil, m.createErr
	}
	form.Normalize()
	return &model.Student{ID: 1, EnrollmentNumber: form.EnrollmentNumber, FullName: form.FullName, IsInside: form.IsInside}, nil
}
func (m *mockStudentService) Update(_ context.Context, id uint, form *dto.StudentForm) (*model.Student, error) {
	m.lastID = id
	m.lastForm = form
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	form.Normalize()
	return &model.Student{ID: id, EnrollmentNumber: form.EnrollmentNumber, FullName: form.FullName}, nil
}

// ── Mock GateService ──

type mockGateService struct {
	result    *service.ToggleResult
	err       error
	lastReq   *dto.ToggleRequest
	lastActor *authz.Identity
	calls     int
}

func (m *mockGateService) Toggle(_ context.Context, req *dto.ToggleRequest, actor *authz.Identity) (*service.ToggleResult, error) {
	m.calls++
	m.lastReq = req
	m.lastActor = actor
	if strings.TrimSpace(req.EnrollmentNumber) == "" {
		return nil, service.ErrMissingEnrollment
	}
	return m.result, m.err
}

// ── Mock MovementService ──

type mockMovementService struct {
	recent     []model.MovementLog
	history    []model.MovementLog
	err        error
	historyErr error
	buf        *bytes.Buffer
	filename   string
	exportErr  error
}

func (m *mockMovementService) Recent(_ context.Context) ([]model.MovementLog, error) {
	return m.recent, m.err
}
func (m *mockMovementService) StudentHistory(_ context.Context, _ uint) ([]model.MovementLog, error) {
	return m.history, m.historyErr
}
func (m *mockMovementService) Export(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.exportErr
}

// ── Mock ImportService ──

type mockImportService struct {
	result *dto.ImportResult
	err    error
	body   string
}

func (m *mockImportService) ImportCSV(_ context.Context, r io.Reader) (*dto.ImportResult, error) {
	data, _ := io.ReadAll(r)
	m.body = string(data)
	return m.result, m.err
}

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	logoutJTI   string
	logoutCalls int
	lastLogin   *dto.LoginRequest
}

func (m *mockAuthService) Login(_ context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	m.lastLogin = req
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutCalls++
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) ResolveIdentity(_ context.Context, _ uint) (*authz.Identity, error) {
	return nil, service.ErrUserNotFound
}
func (m *mockAuthService) CreateUser(_ context.Context, _ *dto.CreateUserRequest) (*model.User, error) {
	return nil, nil
}

// ═══════════════════════════════════════════════════════════
// Helpers
// ═══════════════════════════════════════════════════════════

var (
	guard = authz.NewIdentity(1, "guard1", "Gate Guard", authz.RoleGuard, nil)
	admin = authz.NewIdentity(2, "admin", "", authz.RoleAdmin, nil)
)

// newTestRouter 带模板、Cookie Session 与固定身份的测试引擎
func newTestRouter(t *testing.T, identity *authz.Identity) *gin.Engine {
	t.Helper()
	r := gin.New()
	tmpl, err := web.Templates(time.UTC)
	if err != nil {
		t.Fatalf("模板解析失败: %v", err)
	}
	r.SetHTMLTemplate(tmpl)
	r.Use(sessions.Sessions("gate_session", cookie.NewStore([]byte("test-session-secret-0123456789"))))
	r.Use(func(c *gin.Context) {
		if identity != nil {
			c.Set(authz.ContextKey, identity)
		}
		c.Next()
	})
	return r
}

func doRequest(r *gin.Engine, method, path string, body io.Reader, contentType string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// followFlash 携带上一响应的 Session Cookie 访问 path，返回页面内容
func followFlash(t *testing.T, r *gin.Engine, prev *httptest.ResponseRecorder, path string) string {
	t.Helper()
	w := doRequest(r, http.MethodGet, path, nil, "", prev.Result().Cookies()...)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s 期望 200，实际 %d", path, w.Code)
	}
	return w.Body.String()
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("期望 302，实际 %d, body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("期望跳转 %s，实际 %s", location, got)
	}
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("页面应包含 %q\n%s", want, body)
	}
}

func multipartFile(t *testing.T, field, name, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("响应不是合法 JSON: %v, body=%s", err, w.Body.String())
	}
	return m
}

var errBoom = errors.New("boom")

func newPageRouter(t *testing.T, identity *authz.Identity, st *mockStudentService, gate *mockGateService, mv *mockMovementService) *gin.Engine {
	t.Helper()
	h := NewPageHandler(st, gate, mv, zap.NewNop())
	r := newTestRouter(t, identity)
	r.GET("/", h.Home)
	r.GET("/dashboard/", h.Dashboard)
	r.GET("/check/", h.Check)
	r.POST("/check/", h.Search)
	r.POST("/toggle/", h.Toggle)
	r.GET("/inside/", h.Inside)
	r.GET("/outside/", h.Outside)
	r.GET("/logs/", h.Logs)
	r.GET("/logs/export/", h.ExportLogs)
	return r
}
