package handler

import (
	"net/http"

	"retailpos/internal/service"

	"github.com/gin-gonic/gin"
)

// PriceCheckHandler serves the public barcode price endpoint.
// No authentication required — no side effects whatsoever.
type PriceCheckHandler struct {
	svc service.ProductService
}

func NewPriceCheckHandler(svc service.ProductService) *PriceCheckHandler {
	return &PriceCheckHandler{svc: svc}
}

// GetByBarcode godoc
// @Summary Price check by barcode (no authentication)
// @Tags price
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{barcode} [get]
func (h *PriceCheckHandler) GetByBarcode(c *gin.Context) {
	resp, err := h.svc.PriceCheck(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
