// Package domain 提供双均线交叉策略的回测引擎。
// 引擎按日线逐根推进，只持有空仓与全仓两种状态，不计手续费与滑点。
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/pkg/algos"
)

// Bar 回测使用的日线
type Bar struct {
	Date  time.Time
	Close decimal.Decimal
}

// BacktestEngine 回测引擎服务
type BacktestEngine struct {
	repo BacktestDataRepository
}

func NewBacktestEngine(repo BacktestDataRepository) *BacktestEngine {
	return &BacktestEngine{repo: repo}
}

// RunBacktest 加载历史数据并执行回测
func (e *BacktestEngine) RunBacktest(ctx context.Context, symbol string, params CrossoverParams) (*BacktestResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	bars, err := e.repo.GetHistoricalData(ctx, symbol)
	if err != nil {
		return nil, err
	}
	result := Simulate(bars, params)
	result.Symbol = symbol
	return result, nil
}

// Simulate 在给定序列上回放策略，结果只取决于输入。
// 空仓且短均线低于长均线时买入，持仓且短均线高于长均线时卖出。
// 任一均线未满窗口时不比较。
// 空仓以持仓数量为零判断：在收盘价 0 处卖出后现金归零，之后每次买入信号都会记一笔数量为 0 的买入。
func Simulate(bars []Bar, params CrossoverParams) *BacktestResult {
	closes := make([]decimal.Decimal, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	short := algos.RollingMean(closes, params.ShortWindow)
	long := algos.RollingMean(closes, params.LongWindow)

	cash := params.InitialInvestment
	position := decimal.Zero
	peak := params.InitialInvestment
	maxDrawdown := decimal.Zero
	trades := make([]Trade, 0)
	equity := make([]decimal.Decimal, 0, len(bars))

	for i, bar := range bars {
		price := bar.Close
		if short[i].Valid && long[i].Valid {
			s, l := short[i].Decimal, long[i].Decimal
			switch {
			case s.LessThan(l) && position.IsZero() && price.IsPositive():
				position = cash.Div(price)
				cash = decimal.Zero
				trades = append(trades, Trade{Date: bar.Date, Side: SideBuy, Price: price, Quantity: position})
			case s.GreaterThan(l) && position.IsPositive():
				cash = position.Mul(price)
				trades = append(trades, Trade{Date: bar.Date, Side: SideSell, Price: price, Quantity: position})
				position = decimal.Zero
			}
		}

		value := cash.Add(position.Mul(price))
		equity = append(equity, value)
		if value.GreaterThan(peak) {
			peak = value
		}
		if dd := peak.Sub(value).Div(peak); dd.GreaterThan(maxDrawdown) {
			maxDrawdown = dd
		}
	}

	final := cash
	if len(bars) > 0 {
		final = cash.Add(position.Mul(bars[len(bars)-1].Close))
	}

	return &BacktestResult{
		InitialInvestment: params.InitialInvestment,
		FinalValue:        final,
		TotalReturn:       final.Sub(params.InitialInvestment),
		MaxDrawdown:       maxDrawdown,
		TradesExecuted:    len(trades),
		Trades:            trades,
		EquityCurve:       equity,
	}
}
