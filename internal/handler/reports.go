package handler

import (
	"net/http"
	"strconv"

	"retailpos/internal/apierror"
	"retailpos/internal/dto"
	"retailpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportHandler struct{ svc service.ReportService }

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// DailySummary godoc
// @Summary      Daily sales summary
// @Description  Totals, profit and payment-method breakdown for one day
// @Tags         reports
// @Produce      json
// @Param        date  query  string  false  "Day to summarize (YYYY-MM-DD, defaults to today)"
// @Success      200  {object}  dto.DailySummaryResponse
// @Router       /v1/reports/daily [get]
func (h *ReportHandler) DailySummary(c *gin.Context) {
	resp, err := h.svc.DailySummary(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportHandler) RangeSummary(c *gin.Context) {
	var filter dto.ReportRangeFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.RangeSummary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportHandler) TopProducts(c *gin.Context) {
	var filter dto.ReportRangeFilter
	if !bindQuery(c, &filter) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.svc.TopProducts(c.Request.Context(), filter, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// SessionReport godoc
// @Summary      Register session cash report
// @Description  Expected cash vs declared closing amount for a session
// @Tags         reports
// @Produce      json
// @Param        id  path  string  true  "Session ID"
// @Success      200  {object}  dto.SessionReportResponse
// @Router       /v1/reports/session/{id} [get]
func (h *ReportHandler) SessionReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.SessionReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
