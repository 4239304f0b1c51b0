package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/report"
	"github.com/Tiliavir/worktimer/internal/submit"
	"github.com/Tiliavir/worktimer/internal/timer"
)

// Submitter delivers a logged out session.
type Submitter interface {
	Submit(ctx context.Context, sess submit.Session, employeeName, blockers string) (submit.Result, error)
}

// Handler serves the timer and report endpoints.
type Handler struct {
	engines   *EngineManager
	submitter Submitter
	source    report.Source
	clock     func() time.Time
	logger    *zap.Logger
}

// NewHandler wires the HTTP handlers. source may be nil, in which case the
// report endpoints answer 503.
func NewHandler(engines *EngineManager, submitter Submitter, source report.Source, clock func() time.Time, logger *zap.Logger) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{
		engines:   engines,
		submitter: submitter,
		source:    source,
		clock:     clock,
		logger:    logger,
	}
}

// TransitionResponse is returned by the timer action endpoints.
type TransitionResponse struct {
	Applied bool               `json:"applied"`
	Display timer.DisplayState `json:"display"`
}

// SubmitRequest is the body of the submit endpoint.
type SubmitRequest struct {
	EmployeeName string `json:"employeeName"`
	Blockers     string `json:"blockers"`
}

// SubmitResponse reports a submission attempt.
type SubmitResponse struct {
	Outcome     submit.Outcome     `json:"outcome"`
	Message     string             `json:"message"`
	EntryID     string             `json:"entry_id"`
	RemoteError string             `json:"remote_error,omitempty"`
	LocalError  string             `json:"local_error,omitempty"`
	Display     timer.DisplayState `json:"display"`
}

func (h *Handler) engine(c *gin.Context) (*timer.Engine, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		badRequest(c, "employee id is required")
		return nil, false
	}
	e, err := h.engines.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusServiceUnavailable, codeUnavailable, err.Error())
		return nil, false
	}
	return e, true
}

// GetTimer returns the display state.
// GET /api/employees/:id/timer
func (h *Handler) GetTimer(c *gin.Context) {
	e, found := h.engine(c)
	if !found {
		return
	}
	ok(c, e.DisplayState())
}

// transition builds a handler for one timer action.
// POST /api/employees/:id/timer/{start,break,resume,logout}
func (h *Handler) transition(apply func(*timer.Engine, context.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, found := h.engine(c)
		if !found {
			return
		}
		applied := apply(e, c.Request.Context())
		ok(c, TransitionResponse{Applied: applied, Display: e.DisplayState()})
	}
}

// Submit delivers the logged out session.
// POST /api/employees/:id/timer/submit
func (h *Handler) Submit(c *gin.Context) {
	e, found := h.engine(c)
	if !found {
		return
	}
	var req SubmitRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	res, err := h.submitter.Submit(c.Request.Context(), e, req.EmployeeName, req.Blockers)
	if errors.Is(err, submit.ErrSessionNotEnded) {
		fail(c, http.StatusConflict, codeConflict, "log out before submitting")
		return
	}
	if err != nil {
		_ = c.Error(err)
		internalError(c)
		return
	}

	body := SubmitResponse{
		Outcome: res.Outcome,
		Message: res.Outcome.Message(),
		EntryID: res.Entry.ID,
		Display: e.DisplayState(),
	}
	if res.RemoteErr != nil {
		body.RemoteError = res.RemoteErr.Error()
	}
	if res.LocalErr != nil {
		body.LocalError = res.LocalErr.Error()
	}
	if !res.Outcome.Delivered() {
		c.JSON(http.StatusBadGateway, Response{Code: codeDeliveryFailed, Message: body.Message, Data: body})
		return
	}
	ok(c, body)
}

func (h *Handler) buildReport(c *gin.Context) (report.Report, bool) {
	if h.source == nil {
		fail(c, http.StatusServiceUnavailable, codeUnavailable, "no report data source configured")
		return report.Report{}, false
	}
	r, err := report.ParseRange(c.Query("range"))
	if err != nil {
		badRequest(c, err.Error())
		return report.Report{}, false
	}
	ds, err := h.source.FetchDataset(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusBadGateway, codeDeliveryFailed, "could not load report data")
		return report.Report{}, false
	}
	return report.Aggregate(ds, r, h.clock()), true
}

// Performance returns per-employee metrics.
// GET /api/reports/performance?range=month
func (h *Handler) Performance(c *gin.Context) {
	rep, found := h.buildReport(c)
	if !found {
		return
	}
	ok(c, rep)
}

// ExportPerformance downloads the report as a file.
// GET /api/reports/performance/export?range=month&format=xlsx
func (h *Handler) ExportPerformance(c *gin.Context) {
	format, err := report.ParseFormat(c.DefaultQuery("format", "csv"), report.FormatCSV, report.FormatXLSX, report.FormatPDF)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	rep, found := h.buildReport(c)
	if !found {
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, rep); err != nil {
		_ = c.Error(err)
		internalError(c)
		return
	}

	filename := url.QueryEscape(report.FileName(rep, format))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+filename)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
