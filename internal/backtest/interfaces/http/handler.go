package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/internal/backtest/application"
	"github.com/wyfcoding/stockinsight/internal/backtest/domain"
	mdomain "github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

type BacktestHandler struct {
	app      *application.BacktestApplicationService
	defaults domain.CrossoverParams
}

// NewBacktestHandler defaults 用于请求中缺省的字段
func NewBacktestHandler(app *application.BacktestApplicationService, defaults domain.CrossoverParams) *BacktestHandler {
	return &BacktestHandler{app: app, defaults: defaults}
}

func (h *BacktestHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/backtest", h.RunBacktest)
}

// RunBacktestRequest initial_investment 接受数字或字符串
type RunBacktestRequest struct {
	Symbol            string           `json:"symbol" binding:"required"`
	InitialInvestment *decimal.Decimal `json:"initial_investment"`
	ShortWindow       *int             `json:"short_window"`
	LongWindow        *int             `json:"long_window"`
}

type RunBacktestResponse struct {
	TotalReturn    float64 `json:"total_return"`
	FinalValue     float64 `json:"final_value"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	TradesExecuted int     `json:"trades_executed"`
}

// RunBacktest POST /backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req RunBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	symbol, err := mdomain.NormalizeSymbol(req.Symbol)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.RunBacktestCommand{
		Symbol:            symbol,
		InitialInvestment: h.defaults.InitialInvestment,
		ShortWindow:       h.defaults.ShortWindow,
		LongWindow:        h.defaults.LongWindow,
	}
	if req.InitialInvestment != nil {
		cmd.InitialInvestment = *req.InitialInvestment
	}
	if req.ShortWindow != nil {
		cmd.ShortWindow = *req.ShortWindow
	}
	if req.LongWindow != nil {
		cmd.LongWindow = *req.LongWindow
	}

	result, err := h.app.RunBacktest(c.Request.Context(), cmd)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, RunBacktestResponse{
		TotalReturn:    result.TotalReturn.InexactFloat64(),
		FinalValue:     result.FinalValue.InexactFloat64(),
		MaxDrawdown:    result.MaxDrawdown.InexactFloat64(),
		TradesExecuted: result.TradesExecuted,
	})
}
