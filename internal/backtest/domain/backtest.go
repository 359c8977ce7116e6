package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

// 默认参数
var (
	DefaultInitialInvestment = decimal.NewFromInt(10000)
)

const (
	DefaultShortWindow = 50
	DefaultLongWindow  = 200
)

// Side 成交方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// CrossoverParams 双均线回测参数，窗口单位为交易日
type CrossoverParams struct {
	InitialInvestment decimal.Decimal
	ShortWindow       int
	LongWindow        int
}

// DefaultCrossoverParams 初始资金 10000，短窗 50，长窗 200
func DefaultCrossoverParams() CrossoverParams {
	return CrossoverParams{
		InitialInvestment: DefaultInitialInvestment,
		ShortWindow:       DefaultShortWindow,
		LongWindow:        DefaultLongWindow,
	}
}

func (p CrossoverParams) Validate() error {
	if !p.InitialInvestment.IsPositive() {
		return utils.NewValidationError("initial_investment must be positive")
	}
	if p.ShortWindow < 1 || p.LongWindow < 1 {
		return utils.NewValidationError("short_window and long_window must be at least 1")
	}
	return nil
}

// Trade 一次全仓买入或全部卖出
type Trade struct {
	Date     time.Time       `json:"date"`
	Side     Side            `json:"side"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// BacktestResult 回测结果，不落库
type BacktestResult struct {
	Symbol            string
	InitialInvestment decimal.Decimal
	FinalValue        decimal.Decimal
	// TotalReturn 绝对收益 FinalValue - InitialInvestment
	TotalReturn decimal.Decimal
	// MaxDrawdown 最大回撤比例，取值 [0,1]
	MaxDrawdown    decimal.Decimal
	TradesExecuted int
	Trades         []Trade
	EquityCurve    []decimal.Decimal
}
