package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/worktimer/internal/config"
	"github.com/Tiliavir/worktimer/internal/model"
)

// ErrNoBaseURL is returned when remote.base_url is not configured.
var ErrNoBaseURL = errors.New("remote.base_url is not configured")

const (
	attendancePath = "/api/attendance"
	leavesPath     = "/api/leaves"
	tasksPath      = "/api/tasks"
	employeesPath  = "/api/employees"
)

// Client talks to the EMS backend.
type Client struct {
	baseURL       string
	timesheetPath string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient creates a backend client. ts may be nil for an unauthenticated
// backend.
func NewClient(ctx context.Context, cfg *config.RemoteConfig, ts oauth2.TokenSource, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{}
	if ts != nil {
		httpClient = oauth2.NewClient(ctx, ts)
	}
	httpClient.Timeout = cfg.Timeout

	path := cfg.TimesheetPath
	if path == "" {
		path = config.DefaultTimesheetPath
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		timesheetPath: path,
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

// TimesheetRequest is the body posted for a finished session.
type TimesheetRequest struct {
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	WorkHours  float64 `json:"workHours"`
	Blockers   *string `json:"blockers"`
}

// NewTimesheetRequest converts a work log entry into the backend payload.
func NewTimesheetRequest(entry model.WorkLogEntry) TimesheetRequest {
	return TimesheetRequest{
		EmployeeID: entry.EmployeeID,
		Date:       entry.Date,
		StartTime:  entry.StartTime.Format(time.RFC3339),
		EndTime:    entry.EndTime.Format(time.RFC3339),
		WorkHours:  entry.WorkHours(),
		Blockers:   entry.Blockers,
	}
}

// SubmitTimesheet posts entry to the timesheet endpoint. Any non-2xx response
// is an error.
func (c *Client) SubmitTimesheet(ctx context.Context, entry model.WorkLogEntry) error {
	body, err := json.Marshal(NewTimesheetRequest(entry))
	if err != nil {
		return fmt.Errorf("marshalling timesheet: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.timesheetPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	_, err = c.do(req)
	return err
}

// envelope is the backend's wrapped response shape.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// getList fetches path and decodes a bare JSON array or an envelope whose
// data holds the array.
func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return decodeList[T](body)
}

func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	var items []T
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return items, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if env.Code != 0 && env.Code != http.StatusOK {
		return nil, fmt.Errorf("remote API error %d: %s", env.Code, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("decoding response data: %w", err)
	}
	return items, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Debug("remote request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return getList[model.Employee](ctx, c, employeesPath)
}

func (c *Client) ListAttendance(ctx context.Context) ([]model.AttendanceRecord, error) {
	return getList[model.AttendanceRecord](ctx, c, attendancePath)
}

func (c *Client) ListLeaves(ctx context.Context) ([]model.LeaveRecord, error) {
	return getList[model.LeaveRecord](ctx, c, leavesPath)
}

func (c *Client) ListTasks(ctx context.Context) ([]model.TaskRecord, error) {
	return getList[model.TaskRecord](ctx, c, tasksPath)
}

// FetchDataset loads every collection a performance report needs.
func (c *Client) FetchDataset(ctx context.Context) (model.Dataset, error) {
	var ds model.Dataset
	var err error
	if ds.Employees, err = c.ListEmployees(ctx); err != nil {
		return ds, fmt.Errorf("listing employees: %w", err)
	}
	if ds.Attendance, err = c.ListAttendance(ctx); err != nil {
		return ds, fmt.Errorf("listing attendance: %w", err)
	}
	if ds.Leaves, err = c.ListLeaves(ctx); err != nil {
		return ds, fmt.Errorf("listing leaves: %w", err)
	}
	if ds.Tasks, err = c.ListTasks(ctx); err != nil {
		return ds, fmt.Errorf("listing tasks: %w", err)
	}
	return ds, nil
}
