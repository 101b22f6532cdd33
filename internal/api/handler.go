package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arjoma/scheinfirmen-at/internal/domain/dto"
	"github.com/arjoma/scheinfirmen-at/internal/service"
)

// Handler provides HTTP handlers for querying the latest archived snapshot.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Interact with the service layer for data access
//   - Translate results into response DTOs
type Handler struct {
	svc service.SnapshotService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.SnapshotService) *Handler {
	return &Handler{svc: svc}
}

// GetRecords handles GET /api/v1/records requests.
//
// Query Parameters:
//   - limit (int, optional): page size, 1-500 (default 100).
//   - offset (int, optional): page offset (default 0).
//
// GetRecords godoc
// @Summary      List archived records
// @Description  Returns a page of the latest snapshot's records in source order
// @Tags         records
// @Produce      json
// @Param        limit   query     int  false  "Page size (1-500)" example(100)
// @Param        offset  query     int  false  "Page offset" example(0)
// @Success      200     {object}  dto.RecordListResponse  "Success"
// @Failure      400     {object}  dto.ErrorResponse       "Bad Request"
// @Failure      404     {object}  dto.ErrorResponse       "Empty archive"
// @Failure      500     {object}  dto.ErrorResponse       "Internal Error"
// @Router       /api/v1/records [get]
func (h *Handler) GetRecords(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 100, 1, 500)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0, 0, 1<<30)
	if !ok {
		return
	}

	stand, records, total, err := h.svc.ListRecords(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch records", err))
		return
	}
	if stand == "" {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no snapshot archived yet", nil))
		return
	}

	resp := dto.RecordListResponse{
		Stand:   stand,
		Total:   total,
		Records: make([]dto.RecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, dto.NewRecordResponse(rec))
	}

	c.JSON(http.StatusOK, resp)
}

// GetMonthlyStats handles GET /api/v1/stats/monthly requests.
//
// GetMonthlyStats godoc
// @Summary      Monthly additions
// @Description  Returns per-month publication counts with cumulative totals for the latest snapshot
// @Tags         stats
// @Produce      json
// @Success      200  {object}  dto.MonthlyStatsResponse  "Success"
// @Failure      404  {object}  dto.ErrorResponse         "Empty archive"
// @Failure      500  {object}  dto.ErrorResponse         "Internal Error"
// @Router       /api/v1/stats/monthly [get]
func (h *Handler) GetMonthlyStats(c *gin.Context) {
	stand, rows, err := h.svc.MonthlyAdditions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch stats", err))
		return
	}
	if stand == "" {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no snapshot archived yet", nil))
		return
	}

	resp := dto.MonthlyStatsResponse{Stand: stand, Months: make([]dto.MonthlyCountEntry, 0, len(rows))}
	for _, row := range rows {
		resp.Months = append(resp.Months, dto.MonthlyCountEntry{
			Month:     row.Month,
			Additions: row.Additions,
			Total:     row.Total,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// GetRecentAdditions handles GET /api/v1/stats/recent requests.
//
// Query Parameters:
//   - days (int, optional): lookback window in days, 1-365 (default 30).
//
// GetRecentAdditions godoc
// @Summary      Recent additions
// @Description  Returns records published within the last N days of the latest snapshot
// @Tags         stats
// @Produce      json
// @Param        days  query     int  false  "Lookback window in days (1-365)" example(30)
// @Success      200   {object}  dto.RecordListResponse  "Success"
// @Failure      400   {object}  dto.ErrorResponse       "Bad Request"
// @Failure      404   {object}  dto.ErrorResponse       "Empty archive"
// @Failure      500   {object}  dto.ErrorResponse       "Internal Error"
// @Router       /api/v1/stats/recent [get]
func (h *Handler) GetRecentAdditions(c *gin.Context) {
	days, ok := intQuery(c, "days", 30, 1, 365)
	if !ok {
		return
	}

	stand, records, err := h.svc.RecentAdditions(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch recent additions", err))
		return
	}
	if stand == "" {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no snapshot archived yet", nil))
		return
	}

	resp := dto.RecordListResponse{
		Stand:   stand,
		Total:   len(records),
		Records: make([]dto.RecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Records = append(resp.Records, dto.NewRecordResponse(rec))
	}

	c.JSON(http.StatusOK, resp)
}

// intQuery parses an optional integer query parameter with bounds. On a
// malformed or out-of-range value it writes a 400 response and returns ok=false.
func intQuery(c *gin.Context, name string, def, min, max int) (int, bool) {
	s := c.Query(name)
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < min || v > max {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid "+name+" parameter", err))
		return 0, false
	}
	return v, true
}
