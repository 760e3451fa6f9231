package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nrtkbb/fnbundle/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ListRuns returns catalog runs, newest first
func (h *Handler) ListRuns(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "ListRuns")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	total, err := db.CountRuns(ctx, h.db)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get total count")
	}

	page, err := h.getPageFromQuery(c, total)
	if err != nil {
		span.RecordError(err)
		return err
	}

	runs, err := db.ListRuns(ctx, h.db, perPage, (page-1)*perPage)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to query runs")
	}

	data := make([]Run, 0, len(runs))
	for _, r := range runs {
		data = append(data, toRun(r))
	}

	return c.JSON(http.StatusOK, NewPaginatedResponse(c, data, page, total))
}

// GetRun returns a single run
func (h *Handler) GetRun(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "GetRun")
	defer span.End()

	runID, err := parseRunID(c.Param("run_id"))
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int64("run_id", runID))

	run, err := db.GetRun(ctx, h.db, runID)
	if errors.Is(err, db.ErrRunNotFound) {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusNotFound, "Run not found")
	}
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get run")
	}

	return c.JSON(http.StatusOK, toRun(*run))
}
