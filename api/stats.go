package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// GetStats returns catalog-wide totals and per-label counts
func (h *Handler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "GetStats")
	defer span.End()

	var stats CatalogStats
	err := h.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(accepted_count), 0),
			COALESCE(SUM(skipped_count), 0)
		FROM runs
	`).Scan(&stats.TotalRuns, &stats.TotalRecords, &stats.TotalSkipped)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get catalog statistics")
	}

	var latest int64
	err = h.db.QueryRowContext(ctx, `
		SELECT run_id FROM runs
		ORDER BY created_at DESC, run_id DESC
		LIMIT 1
	`).Scan(&latest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get latest run")
	default:
		stats.LatestRunID = &latest
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT
			label,
			COUNT(*) as run_count,
			SUM(accepted_count) as record_count,
			SUM(skipped_count) as skipped_count,
			MAX(created_at) as last_run
		FROM runs
		GROUP BY label
		ORDER BY run_count DESC, label
	`)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get label statistics")
	}
	defer rows.Close()

	stats.Labels = []LabelStats{}
	for rows.Next() {
		var ls LabelStats
		if err := rows.Scan(&ls.Label, &ls.RunCount, &ls.RecordCount, &ls.SkippedCount, &ls.LastRun); err != nil {
			span.RecordError(err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to scan label row")
		}
		stats.Labels = append(stats.Labels, ls)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get label statistics")
	}

	span.SetAttributes(
		attribute.Int("total_runs", stats.TotalRuns),
		attribute.Int("label_count", len(stats.Labels)),
	)

	return c.JSON(http.StatusOK, stats)
}
