package api

import (
	"database/sql"
	"net/http"
	"reflect"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nrtkbb/fnbundle/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const perPage = 100

type Handler struct {
	db *sql.DB
}

func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// Register mounts every catalog route on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/api/runs", h.ListRuns)
	e.GET("/api/runs/:run_id", h.GetRun)
	e.GET("/api/records", h.ListRecords)
	e.GET("/api/skipped", h.ListSkipped)
	e.GET("/api/export", h.ExportRun)
	e.GET("/api/stats", h.GetStats)
}

// NewPaginatedResponse creates a new paginated response and adds telemetry
func NewPaginatedResponse(c echo.Context, data interface{}, page int, total int) *PaginatedResponse {
	totalPages := (total + perPage - 1) / perPage
	hasNext := page < totalPages

	if span := trace.SpanFromContext(c.Request().Context()); span != nil {
		span.SetAttributes(
			attribute.Bool("has_next_page", hasNext),
			attribute.Int("response_items", reflect.ValueOf(data).Len()),
		)
	}

	return &PaginatedResponse{
		Data:       data,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    hasNext,
	}
}

func parseRunID(s string) (int64, error) {
	if s == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "run_id parameter is required")
	}
	runID, err := strconv.ParseInt(s, 10, 64)
	if err != nil || runID < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid run_id")
	}
	return runID, nil
}

// getRunIDFromQuery gets and validates run_id from query parameters
func (h *Handler) getRunIDFromQuery(c echo.Context) (int64, error) {
	return parseRunID(c.QueryParam("run_id"))
}

// getPageFromQuery gets and validates page number from query parameters.
// Page 1 is always valid, so empty results are not an error.
func (h *Handler) getPageFromQuery(c echo.Context, total int) (int, error) {
	pageStr := c.QueryParam("page")
	page := 1
	if pageStr != "" {
		var err error
		page, err = strconv.Atoi(pageStr)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid page number")
		}
	}

	if page < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Page number must be greater than 0")
	}

	totalPages := (total + perPage - 1) / perPage
	if page > 1 && page > totalPages {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Page number exceeds total pages. Total pages: "+strconv.Itoa(totalPages))
	}

	span := trace.SpanFromContext(c.Request().Context())
	span.SetAttributes(
		attribute.Int("page", page),
		attribute.Int("per_page", perPage),
		attribute.Int("total", total),
		attribute.Int("total_pages", totalPages),
	)

	return page, nil
}

func toRun(r models.Run) Run {
	return Run{
		RunID:         r.RunID,
		RunUUID:       r.RunUUID,
		Label:         r.Label,
		InputDir:      r.InputDir,
		OutputPath:    r.OutputPath,
		CreatedAt:     r.CreatedAt,
		AcceptedCount: r.AcceptedCount,
		SkippedCount:  r.SkippedCount,
		IgnoredCount:  r.IgnoredCount,
	}
}

func toRecord(r models.Record) Record {
	return Record{
		SourceName: r.SourceName,
		Fields:     r.Fields,
		Line:       r.Line(),
		Size:       r.SizeBytes,
		Modified:   r.ModificationTimeUTC,
		Created:    r.CreationTimeUTC,
	}
}
