package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/internal/forecast/application"
	"github.com/wyfcoding/stockinsight/internal/forecast/domain"
	mdomain "github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

type ForecastHandler struct {
	svc *application.PredictService
}

func NewForecastHandler(svc *application.PredictService) *ForecastHandler {
	return &ForecastHandler{svc: svc}
}

func (h *ForecastHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/predict/:symbol", h.Predict)
	r.GET("/evaluate/:symbol", h.Evaluate)
}

// PredictedPriceDTO 预测记录的响应格式，价格以字符串输出保留精度
type PredictedPriceDTO struct {
	Symbol              string  `json:"symbol"`
	Date                string  `json:"date"`
	PredictedClosePrice string  `json:"predicted_close_price"`
	PredictedOpenPrice  *string `json:"predicted_open_price"`
	PredictedHighPrice  *string `json:"predicted_high_price"`
	PredictedLowPrice   *string `json:"predicted_low_price"`
	PredictedVolume     *string `json:"predicted_volume"`
}

func toDTO(p *domain.PredictedPrice) PredictedPriceDTO {
	return PredictedPriceDTO{
		Symbol:              p.Symbol,
		Date:                p.Date.Format(mdomain.DateLayout),
		PredictedClosePrice: p.PredictedClose.StringFixed(domain.PricePrecision),
		PredictedOpenPrice:  optional(p.PredictedOpen),
		PredictedHighPrice:  optional(p.PredictedHigh),
		PredictedLowPrice:   optional(p.PredictedLow),
		PredictedVolume:     optional(p.PredictedVol),
	}
}

func optional(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(domain.PricePrecision)
	return &s
}

// Predict GET /predict/:symbol?horizon_days=30
func (h *ForecastHandler) Predict(c *gin.Context) {
	symbol, err := mdomain.NormalizeSymbol(c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	horizon := h.svc.DefaultHorizon()
	if raw := c.Query("horizon_days"); raw != "" {
		horizon, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "horizon_days must be an integer"})
			return
		}
	}

	preds, err := h.svc.Predict(c.Request.Context(), symbol, horizon)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]PredictedPriceDTO, len(preds))
	for i, p := range preds {
		out[i] = toDTO(p)
	}
	c.JSON(http.StatusOK, out)
}

// Evaluate GET /evaluate/:symbol
func (h *ForecastHandler) Evaluate(c *gin.Context) {
	symbol, err := mdomain.NormalizeSymbol(c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := h.svc.Evaluate(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ev)
}
