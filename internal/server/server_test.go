package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/report"
	"github.com/Tiliavir/worktimer/internal/server"
	"github.com/Tiliavir/worktimer/internal/storage"
	"github.com/Tiliavir/worktimer/internal/submit"
	"github.com/Tiliavir/worktimer/internal/timer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSink struct {
	name string
	err  error
}

func (s stubSink) Name() string { return s.name }
func (s stubSink) Deliver(context.Context, model.WorkLogEntry, model.TimerSession) error {
	return s.err
}

type stubSource struct {
	ds  model.Dataset
	err error
}

func (s stubSource) FetchDataset(context.Context) (model.Dataset, error) { return s.ds, s.err }

type testEnv struct {
	router *gin.Engine
	repo   *storage.MemoryStore
}

func newEnv(t *testing.T, remoteErr, localErr error, source *stubSource) testEnv {
	t.Helper()
	repo := storage.NewMemoryStore("wt", zap.NewNop())
	mgr := server.NewEngineManager(repo, timer.Options{TickInterval: time.Hour}, zap.NewNop())
	t.Cleanup(mgr.Close)

	sub := submit.New(stubSink{"remote", remoteErr}, stubSink{"local", localErr}, submit.Options{Logger: zap.NewNop()})
	var src report.Source
	if source != nil {
		src = *source
	}
	now := func() time.Time { return time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC) }
	h := server.NewHandler(mgr, sub, src, now, zap.NewNop())
	return testEnv{router: server.NewRouter(h, zap.NewNop()), repo: repo}
}

func (env testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, server.Response) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var resp server.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return w, resp
}

func decodeData[T any](t *testing.T, resp server.Response) T {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestHealth(t *testing.T) {
	env := newEnv(t, nil, nil, nil)
	w, resp := env.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || resp.Code != 0 {
		t.Fatalf("health = %d %+v", w.Code, resp)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newEnv(t, nil, nil, nil)
	w, resp := env.do(t, http.MethodGet, "/api/nothing-here", "")
	if w.Code != http.StatusNotFound || resp.Code != 40401 {
		t.Errorf("unknown route = %d %+v, want 404 with code 40401", w.Code, resp)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newEnv(t, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestTimerLifecycle(t *testing.T) {
	env := newEnv(t, nil, nil, nil)
	base := "/api/employees/101/timer"

	_, resp := env.do(t, http.MethodGet, base, "")
	d := decodeData[timer.DisplayState](t, resp)
	if d.State != model.StateStopped || !d.CanStart {
		t.Fatalf("initial display = %+v", d)
	}

	steps := []struct {
		path    string
		applied bool
		state   model.State
	}{
		{"/start", true, model.StateRunning},
		{"/start", false, model.StateRunning},
		{"/resume", false, model.StateRunning},
		{"/break", true, model.StatePaused},
		{"/break", false, model.StatePaused},
		{"/resume", true, model.StateRunning},
		{"/logout", true, model.StateStopped},
		{"/start", false, model.StateStopped},
	}
	for _, s := range steps {
		w, resp := env.do(t, http.MethodPost, base+s.path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("POST %s = %d", s.path, w.Code)
		}
		tr := decodeData[server.TransitionResponse](t, resp)
		if tr.Applied != s.applied || tr.Display.State != s.state {
			t.Errorf("POST %s = applied %v state %s, want %v %s", s.path, tr.Applied, tr.Display.State, s.applied, s.state)
		}
	}

	w, resp := env.do(t, http.MethodPost, base+"/submit", `{"employeeName":"Ada","blockers":"none"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("submit = %d %+v", w.Code, resp)
	}
	sr := decodeData[server.SubmitResponse](t, resp)
	if sr.Outcome != submit.BothOK || sr.EntryID == "" {
		t.Errorf("submit = %+v", sr)
	}
	if sr.Display.Ended || !sr.Display.CanStart {
		t.Errorf("display after submit = %+v, want a fresh session", sr.Display)
	}
	today := time.Now().Format("2006-01-02")
	if stored, _ := env.repo.Load(context.Background(), "101", today); stored != nil {
		t.Errorf("session still stored after submit: %+v", *stored)
	}
}

func TestSubmitBeforeLogout(t *testing.T) {
	env := newEnv(t, nil, nil, nil)
	env.do(t, http.MethodPost, "/api/employees/7/timer/start", "")
	w, resp := env.do(t, http.MethodPost, "/api/employees/7/timer/submit", "")
	if w.Code != http.StatusConflict || resp.Code == 0 {
		t.Errorf("submit before logout = %d %+v", w.Code, resp)
	}
}

func TestSubmitBothFailedKeepsSession(t *testing.T) {
	down := errors.New("down")
	env := newEnv(t, down, down, nil)
	base := "/api/employees/7/timer"
	env.do(t, http.MethodPost, base+"/start", "")
	env.do(t, http.MethodPost, base+"/logout", "")

	w, resp := env.do(t, http.MethodPost, base+"/submit", `{"blockers":""}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	sr := decodeData[server.SubmitResponse](t, resp)
	if sr.Outcome != submit.BothFailed || sr.RemoteError != "down" || sr.LocalError != "down" {
		t.Errorf("submit = %+v", sr)
	}
	if !sr.Display.Ended {
		t.Error("session was reset although nothing was delivered")
	}
	today := time.Now().Format("2006-01-02")
	if stored, _ := env.repo.Load(context.Background(), "7", today); stored == nil {
		t.Error("stored session cleared although nothing was delivered")
	}
}

func TestSubmitInvalidBody(t *testing.T) {
	env := newEnv(t, nil, nil, nil)
	w, _ := env.do(t, http.MethodPost, "/api/employees/7/timer/submit", `{"blockers":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func sampleSource() *stubSource {
	return &stubSource{ds: model.Dataset{
		Employees: []model.Employee{{ID: "7", Name: "Grace"}},
		Attendance: []model.AttendanceRecord{
			{EmployeeID: "7", Date: "2024-06-01"},
			{EmployeeID: "7", Date: "2024-06-15"},
			{EmployeeID: "7", Date: "2024-07-01"},
		},
	}}
}

func TestPerformance(t *testing.T) {
	env := newEnv(t, nil, nil, sampleSource())
	w, resp := env.do(t, http.MethodGet, "/api/reports/performance?range=month", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %+v", w.Code, resp)
	}
	rep := decodeData[struct {
		Range     string                  `json:"range"`
		Employees []model.EmployeeMetrics `json:"employees"`
	}](t, resp)
	if rep.Range != "month" || len(rep.Employees) != 1 || rep.Employees[0].TotalAttendanceDays != 2 {
		t.Errorf("report = %+v", rep)
	}

	w, _ = env.do(t, http.MethodGet, "/api/reports/performance?range=decade", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown range status = %d, want 400", w.Code)
	}
}

func TestPerformanceWithoutSource(t *testing.T) {
	env := newEnv(t, nil, nil, nil)
	w, _ := env.do(t, http.MethodGet, "/api/reports/performance", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestPerformanceSourceError(t *testing.T) {
	env := newEnv(t, nil, nil, &stubSource{err: errors.New("backend down")})
	w, _ := env.do(t, http.MethodGet, "/api/reports/performance", "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestExportPerformance(t *testing.T) {
	env := newEnv(t, nil, nil, sampleSource())

	w, _ := env.do(t, http.MethodGet, "/api/reports/performance/export?range=month&format=csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("csv status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "performance-month-2024-06-20.csv") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(w.Body.String(), "7,Grace,2,") {
		t.Errorf("csv body = %q", w.Body.String())
	}

	w, _ = env.do(t, http.MethodGet, "/api/reports/performance/export?format=pdf", "")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Errorf("pdf export = %d", w.Code)
	}

	w, _ = env.do(t, http.MethodGet, "/api/reports/performance/export?format=yaml", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("yaml export status = %d, want 400", w.Code)
	}
}
