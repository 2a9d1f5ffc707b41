package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/auth"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	testSourceID      = "0193a7c4-5e2b-7c1d-8f3a-2b4c6d8e0f12"
	testEmployeeID    = "0193a7c4-6a10-7d2e-9b4c-3c5d7e9f1a23"
)

type stubSourceService struct {
	source.SourceService
	syncErr   error
	synced    []string
	createErr error
	uploaded  string
	uploadLen int
	logLimit  int
}

func (s *stubSourceService) Create(ctx context.Context, req source.CreateSourceRequest) (source.SourceResponse, error) {
	if s.createErr != nil {
		return source.SourceResponse{}, s.createErr
	}
	if err := req.Validate(); err != nil {
		return source.SourceResponse{}, err
	}
	return source.SourceResponse{ID: "src-1", Name: req.Name, Kind: req.Kind}, nil
}

func (s *stubSourceService) TriggerSync(ctx context.Context, id string) error {
	if s.syncErr != nil {
		return s.syncErr
	}
	s.synced = append(s.synced, id)
	return nil
}

func (s *stubSourceService) AttachFile(ctx context.Context, id string, filename string, file io.Reader) (source.SourceResponse, error) {
	body, err := io.ReadAll(file)
	if err != nil {
		return source.SourceResponse{}, err
	}
	s.uploaded, s.uploadLen = filename, len(body)
	path := "sources/" + id + "/" + filename
	return source.SourceResponse{ID: id, FilePath: &path}, nil
}

func (s *stubSourceService) ListImportLogs(ctx context.Context, limit int) ([]source.ImportLogResponse, error) {
	s.logLimit = limit
	return []source.ImportLogResponse{}, nil
}

type stubReconciliationService struct {
	managerID string
	selector  attendance.DaySelector
	day       time.Time
}

func (s *stubReconciliationService) Reconcile(ctx context.Context, employeeID string, day time.Time) (attendance.DecisionResponse, error) {
	s.day = day
	return attendance.DecisionResponse{EmployeeID: employeeID, Status: attendance.Absent, Source: attendance.OriginNone}, nil
}

func (s *stubReconciliationService) TodaySnapshot(ctx context.Context) (attendance.DashboardResponse, error) {
	return attendance.DashboardResponse{Date: "2025-12-05", RemoteAvailable: true}, nil
}

func (s *stubReconciliationService) ManagerDashboard(ctx context.Context, managerID string, selector attendance.DaySelector) (attendance.DashboardResponse, error) {
	s.managerID, s.selector = managerID, selector
	return attendance.DashboardResponse{Date: "2025-12-04"}, nil
}

type routerFixture struct {
	handler http.Handler
	jwt     jwt.Service
	sources *stubSourceService
	recon   *stubReconciliationService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	f := &routerFixture{
		jwt:     jwt.NewJWTService(handlerTestSecret),
		sources: &stubSourceService{},
		recon:   &stubReconciliationService{},
	}
	f.handler = NewRouter(RouterConfig{Env: "test"}, f.jwt, NewSourceHandler(f.sources), NewAttendanceHandler(f.recon))
	return f
}

func (f *routerFixture) token(t *testing.T, p auth.Principal) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(p, time.Hour)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) adminToken(t *testing.T) string {
	return f.token(t, auth.Principal{UserID: "u-admin", Role: auth.RoleOwner, IsAdmin: true})
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var resp response.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/sources", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_SourcesAreAdminOnly(t *testing.T) {
	f := newRouterFixture(t)
	employeeID := "e-1"
	token := f.token(t, auth.Principal{UserID: "u-1", EmployeeID: &employeeID, Role: auth.RoleEmployee})

	rec, resp := f.do(t, http.MethodPost, "/api/v1/sources/"+testSourceID+"/sync", token, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	assert.Empty(t, f.sources.synced)
}

func TestRouter_ManualSyncAccepted(t *testing.T) {
	f := newRouterFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/api/v1/sources/"+testSourceID+"/sync", f.adminToken(t), nil, "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{testSourceID}, f.sources.synced)
}

func TestRouter_ManualSyncConflictWhileRunning(t *testing.T) {
	f := newRouterFixture(t)
	f.sources.syncErr = source.ErrSyncInProgress

	rec, resp := f.do(t, http.MethodPost, "/api/v1/sources/"+testSourceID+"/sync", f.adminToken(t), nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
}

func TestRouter_ManualSyncUnknownSource(t *testing.T) {
	f := newRouterFixture(t)
	f.sources.syncErr = source.ErrSourceNotFound

	rec, _ := f.do(t, http.MethodPost, "/api/v1/sources/0193a7c4-0000-7000-8000-000000000000/sync", f.adminToken(t), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CreateSourceValidation(t *testing.T) {
	f := newRouterFixture(t)

	body := bytes.NewBufferString(`{"name":"","kind":"api"}`)
	rec, resp := f.do(t, http.MethodPost, "/api/v1/sources", f.adminToken(t), body, "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "name")
	assert.Contains(t, resp.Error.Details, "url")

	f.sources.createErr = validator.ValidationErrors{{Field: "kind", Message: "bad"}}
	rec, _ = f.do(t, http.MethodPost, "/api/v1/sources", f.adminToken(t), bytes.NewBufferString(`{}`), "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/sources", f.adminToken(t), bytes.NewBufferString(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Upload(t *testing.T) {
	f := newRouterFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "punches.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("cardno,dt\n42,5-Dec-25\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec, resp := f.do(t, http.MethodPost, "/api/v1/sources/"+testSourceID+"/upload", f.adminToken(t), &buf, mw.FormDataContentType())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "punches.csv", f.sources.uploaded)
	assert.Equal(t, 22, f.sources.uploadLen)
}

func TestRouter_ImportLogLimit(t *testing.T) {
	f := newRouterFixture(t)

	rec, resp := f.do(t, http.MethodGet, "/api/v1/import-logs?limit=500", f.adminToken(t), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, f.sources.logLimit)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, source.MaxLogPageSize, resp.Meta.Limit)
	assert.Equal(t, 0, resp.Meta.Count)
}

func TestRouter_ManagerDashboard(t *testing.T) {
	f := newRouterFixture(t)
	managerID := "e-mgr"
	token := f.token(t, auth.Principal{UserID: "u-2", EmployeeID: &managerID, Role: auth.RoleManager})

	rec, _ := f.do(t, http.MethodGet, "/api/v1/attendance/manager?day=lastday", token, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, managerID, f.recon.managerID)
	assert.Equal(t, attendance.SelectorLastDay, f.recon.selector)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/attendance/manager?day=tomorrow", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ManagerDashboardRequiresManagerRole(t *testing.T) {
	f := newRouterFixture(t)
	employeeID := "e-1"
	token := f.token(t, auth.Principal{UserID: "u-1", EmployeeID: &employeeID, Role: auth.RoleEmployee})

	rec, _ := f.do(t, http.MethodGet, "/api/v1/attendance/manager", token, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	noEmployee := f.token(t, auth.Principal{UserID: "u-3", Role: auth.RoleManager})
	rec, _ = f.do(t, http.MethodGet, "/api/v1/attendance/manager", noEmployee, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_Reconcile(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/attendance/employees/"+testEmployeeID+"/reconcile?date=2025-12-01", f.adminToken(t), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), f.recon.day)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/attendance/employees/"+testEmployeeID+"/reconcile?date=01-12-2025", f.adminToken(t), nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_TodayIsAdminOnly(t *testing.T) {
	f := newRouterFixture(t)
	managerID := "e-mgr"
	token := f.token(t, auth.Principal{UserID: "u-2", EmployeeID: &managerID, Role: auth.RoleManager})

	rec, _ := f.do(t, http.MethodGet, "/api/v1/attendance/today", token, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := f.do(t, http.MethodGet, "/api/v1/attendance/today", f.adminToken(t), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestRouter_RejectsMalformedIDs(t *testing.T) {
	f := newRouterFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/sources/src-1"},
		{http.MethodDelete, "/api/v1/sources/src-1"},
		{http.MethodPost, "/api/v1/sources/src-1/test"},
		{http.MethodPost, "/api/v1/sources/src-1/sync"},
		{http.MethodGet, "/api/v1/attendance/employees/e-1/reconcile"},
	} {
		rec, _ := f.do(t, tc.method, tc.path, f.adminToken(t), nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", tc.method, tc.path)
	}
	assert.Empty(t, f.sources.synced)
	assert.True(t, f.recon.day.IsZero())
}
