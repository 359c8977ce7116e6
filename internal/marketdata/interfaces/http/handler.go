package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/stockinsight/internal/marketdata/application"
	"github.com/wyfcoding/stockinsight/internal/marketdata/domain"
)

type MarketDataHandler struct {
	fetch *application.FetchService
}

func NewMarketDataHandler(fetch *application.FetchService) *MarketDataHandler {
	return &MarketDataHandler{fetch: fetch}
}

func (h *MarketDataHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/fetch/:symbol", h.Fetch)
}

// Fetch GET /fetch/:symbol?data_type=stock|crypto&market=USD
// 拉取失败一律返回 400，包括写库失败
func (h *MarketDataHandler) Fetch(c *gin.Context) {
	symbol, err := domain.NormalizeSymbol(c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := domain.ParseDataKind(c.DefaultQuery("data_type", string(domain.KindStock)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.fetch.Fetch(c.Request.Context(), symbol, kind, c.DefaultQuery("market", domain.DefaultMarket))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
