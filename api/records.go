package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nrtkbb/fnbundle/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// requireRun resolves run_id from the query and checks the run exists
func (h *Handler) requireRun(c echo.Context) (int64, error) {
	runID, err := h.getRunIDFromQuery(c)
	if err != nil {
		return 0, err
	}
	if _, err := db.GetRun(c.Request().Context(), h.db, runID); err != nil {
		if errors.Is(err, db.ErrRunNotFound) {
			return 0, echo.NewHTTPError(http.StatusNotFound, "Run not found")
		}
		return 0, echo.NewHTTPError(http.StatusInternalServerError, "Failed to get run")
	}
	return runID, nil
}

// ListRecords returns the records of a run in bundle order, optionally
// filtered on exact field values f1..f4
func (h *Handler) ListRecords(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "ListRecords")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	runID, err := h.requireRun(c)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int64("run_id", runID))

	filter := db.RecordFilter{
		c.QueryParam("f1"),
		c.QueryParam("f2"),
		c.QueryParam("f3"),
		c.QueryParam("f4"),
	}

	total, err := db.CountRecords(ctx, h.db, runID, filter)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get total count")
	}

	page, err := h.getPageFromQuery(c, total)
	if err != nil {
		span.RecordError(err)
		return err
	}

	records, err := db.ListRecords(ctx, h.db, runID, filter, perPage, (page-1)*perPage)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to query records")
	}

	data := make([]Record, 0, len(records))
	for _, r := range records {
		data = append(data, toRecord(r))
	}

	return c.JSON(http.StatusOK, NewPaginatedResponse(c, data, page, total))
}

// ListSkipped returns the malformed filenames of a run
func (h *Handler) ListSkipped(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "ListSkipped")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	runID, err := h.requireRun(c)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int64("run_id", runID))

	skipped, err := db.ListSkipped(ctx, h.db, runID)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to query skipped entries")
	}

	data := make([]SkippedEntry, 0, len(skipped))
	for _, s := range skipped {
		data = append(data, SkippedEntry{SourceName: s.SourceName, FieldCount: s.FieldCount})
	}

	return c.JSON(http.StatusOK, data)
}

// ExportRun returns the bundle output of a run as plain text
func (h *Handler) ExportRun(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "ExportRun")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	runID, err := h.requireRun(c)
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Int64("run_id", runID))

	records, err := db.ListRecords(ctx, h.db, runID, db.RecordFilter{}, -1, 0)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to query records")
	}

	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.Line())
		b.WriteByte('\n')
	}
	span.SetAttributes(attribute.Int("lines", len(records)))

	return c.String(http.StatusOK, b.String())
}
