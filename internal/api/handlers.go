// Package api exposes the HTTP surface of the tracker. Handlers stay thin:
// they parse input, call a service and translate service errors to HTTP.
package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pmarinho/classxp/internal/blobstore"
	"github.com/pmarinho/classxp/internal/middleware"
	"github.com/pmarinho/classxp/internal/models"
	"github.com/pmarinho/classxp/internal/services"
	"github.com/pmarinho/classxp/internal/store"
)

type Handler struct {
	store   store.Store
	classes *services.ClassService
	records *services.RecordService
	stats   *services.StatsService
	reports *services.ReportService
	backup  *services.BackupService
	suggest *services.SuggestService
	persist blobstore.Persister   // nil disables durable persistence
	opts    services.StatsOptions // server-wide default, query params override
}

func NewHandler(
	st store.Store,
	classes *services.ClassService,
	records *services.RecordService,
	stats *services.StatsService,
	reports *services.ReportService,
	backup *services.BackupService,
	suggest *services.SuggestService,
	persist blobstore.Persister,
	opts services.StatsOptions,
) *Handler {
	return &Handler{
		store:   st,
		classes: classes,
		records: records,
		stats:   stats,
		reports: reports,
		backup:  backup,
		suggest: suggest,
		persist: persist,
		opts:    opts,
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/api/state", h.handleState)

	e.POST("/api/classes", h.handleCreateClass)
	e.PUT("/api/classes/:id", h.handleUpdateClass)
	e.DELETE("/api/classes/:id", h.handleDeleteClass)
	e.POST("/api/classes/:id/students", h.handleAddStudent)
	e.PUT("/api/classes/:id/students/:sid", h.handleUpdateStudent)
	e.DELETE("/api/classes/:id/students/:sid", h.handleRemoveStudent)

	e.POST("/api/records/toggle", h.handleToggle)
	e.PUT("/api/lessons", h.handleSetLesson)
	e.POST("/api/sessions/commit", h.handleCommit)

	e.GET("/api/reports/overview", h.handleOverview)
	e.GET("/api/reports/period", h.handlePeriod)
	e.GET("/api/reports/monthly", h.handleMonthly)
	e.GET("/api/reports/trend", h.handleTrend)
	e.GET("/api/reports/xp", h.handleXP)

	e.GET("/api/export", h.handleExport)
	e.POST("/api/import", h.handleImport)
	e.POST("/api/suggestions", h.handleSuggestions)
}

func serviceError(c echo.Context, err error) error {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorBadGateway:
			status = http.StatusBadGateway
		}
		return c.JSON(status, map[string]any{"message": se.Message, "error": string(se.Code)})
	}
	return c.JSON(http.StatusInternalServerError, map[string]any{"message": "internal error", "error": err.Error()})
}

// save pushes the mutated document to the persistence collaborator. A failed
// write keeps the in-memory state and is reported to the caller; nothing is
// rolled back (last write wins, no partial updates).
func (h *Handler) save(c echo.Context) error {
	if h.persist == nil {
		return nil
	}
	return h.persist.Save(c.Request().Context(), h.store.Snapshot())
}

func saveFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusBadGateway, map[string]any{
		"message": "changes kept in memory but persistence failed",
		"error":   err.Error(),
	})
}

func (h *Handler) handleState(c echo.Context) error {
	doc := h.store.Snapshot()
	return c.JSON(http.StatusOK, map[string]any{
		"classes":        doc.Classes,
		"lessons":        doc.Lessons,
		"studentRecords": doc.StudentRecords,
		"role":           middleware.RoleFromContext(c),
	})
}

func (h *Handler) handleCreateClass(c echo.Context) error {
	var in services.ClassInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	cls, err := h.classes.CreateClass(in)
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, cls)
}

func (h *Handler) handleUpdateClass(c echo.Context) error {
	var in services.ClassInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	cls, err := h.classes.UpdateClass(c.Param("id"), in)
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, cls)
}

func (h *Handler) handleDeleteClass(c echo.Context) error {
	if err := h.classes.DeleteClass(c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleAddStudent(c echo.Context) error {
	var in services.StudentInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	st, err := h.classes.AddStudent(c.Param("id"), in)
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) handleUpdateStudent(c echo.Context) error {
	var in services.StudentInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	st, err := h.classes.UpdateStudent(c.Param("id"), c.Param("sid"), in)
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) handleRemoveStudent(c echo.Context) error {
	if err := h.classes.RemoveStudent(c.Param("id"), c.Param("sid")); err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// POST /api/records/toggle
// { classId, dateKey, studentId, criterion, weekday?, value }
// A weekday targets one daily-task slot; otherwise criterion is toggled.
func (h *Handler) handleToggle(c echo.Context) error {
	var req struct {
		ClassID   string           `json:"classId"`
		DateKey   string           `json:"dateKey"`
		StudentID string           `json:"studentId"`
		Criterion models.CheckType `json:"criterion"`
		Weekday   string           `json:"weekday"`
		Value     bool             `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	var (
		chk models.StudentChecks
		err error
	)
	if req.Weekday != "" {
		chk, err = h.records.ToggleDailyTask(req.ClassID, req.DateKey, req.StudentID, req.Weekday, req.Value)
	} else {
		chk, err = h.records.ToggleCheck(req.ClassID, req.DateKey, req.StudentID, req.Criterion, req.Value)
	}
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, chk)
}

func (h *Handler) handleSetLesson(c echo.Context) error {
	var req struct {
		ClassID string             `json:"classId"`
		DateKey string             `json:"dateKey"`
		Lesson  models.DailyLesson `json:"lesson"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	if err := h.records.SetLesson(req.ClassID, req.DateKey, req.Lesson); err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleCommit(c echo.Context) error {
	var req struct {
		ClassID string `json:"classId"`
		DateKey string `json:"dateKey"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	result, err := h.records.CommitSession(req.ClassID, req.DateKey)
	if err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) statsOptions(c echo.Context) services.StatsOptions {
	opts := h.opts
	switch c.QueryParam("includeCancelled") {
	case "true":
		opts.IncludeCancelled = true
	case "false":
		opts.IncludeCancelled = false
	}
	return opts
}

func (h *Handler) handleOverview(c echo.Context) error {
	return c.JSON(http.StatusOK, h.reports.Overview(time.Now(), h.statsOptions(c)))
}

func (h *Handler) handlePeriod(c echo.Context) error {
	stats, err := h.stats.PeriodStats(c.QueryParam("classId"), c.QueryParam("start"), c.QueryParam("end"), h.statsOptions(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func yearMonth(c echo.Context) (int, time.Month, error) {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return 0, 0, services.NewInvalidError("year required")
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, services.NewInvalidError("month must be 1-12")
	}
	return year, time.Month(month), nil
}

func (h *Handler) handleMonthly(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return serviceError(c, err)
	}
	grid, err := h.reports.MonthlyGrid(c.QueryParam("classId"), year, month)
	if err != nil {
		return serviceError(c, err)
	}
	if c.QueryParam("format") == "csv" {
		b, err := services.MonthlyGridCSV(grid)
		if err != nil {
			return serviceError(c, err)
		}
		c.Response().Header().Set("Content-Disposition", "attachment; filename=monthly.csv")
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", b)
	}
	return c.JSON(http.StatusOK, grid)
}

func (h *Handler) handleTrend(c echo.Context) error {
	year, month, err := yearMonth(c)
	if err != nil {
		return serviceError(c, err)
	}
	report, err := h.reports.IndividualTrend(c.QueryParam("classId"), c.QueryParam("studentId"), year, month, h.statsOptions(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) handleXP(c echo.Context) error {
	report, err := h.reports.XPBreakdown(c.QueryParam("classId"), c.QueryParam("studentId"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) handleExport(c echo.Context) error {
	result, err := h.backup.Export(time.Now())
	if err != nil {
		return serviceError(c, err)
	}
	c.Response().Header().Set("Content-Disposition", "attachment; filename="+result.Filename)
	return c.Blob(http.StatusOK, result.ContentType, result.Data)
}

func (h *Handler) handleImport(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	if err := h.backup.Import(body); err != nil {
		return serviceError(c, err)
	}
	if err := h.save(c); err != nil {
		return saveFailed(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleSuggestions(c echo.Context) error {
	var req struct {
		StudentName    string  `json:"studentName"`
		AttendanceRate float64 `json:"attendanceRate"`
		HomeworkRate   float64 `json:"homeworkCompletionRate"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"message": "invalid body", "error": err.Error()})
	}
	out, err := h.suggest.Suggestions(c.Request().Context(), req.StudentName, req.AttendanceRate, req.HomeworkRate)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"suggestions": out})
}
