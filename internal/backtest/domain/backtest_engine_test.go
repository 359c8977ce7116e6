package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

func barsFrom(closes ...float64) []Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{Date: start.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return bars
}

func params(short, long int) CrossoverParams {
	return CrossoverParams{InitialInvestment: decimal.NewFromInt(10000), ShortWindow: short, LongWindow: long}
}

func TestSimulate_SingleBuy(t *testing.T) {
	bars := barsFrom(10, 11, 12, 11, 10)
	res := Simulate(bars, params(2, 3))

	require.Equal(t, 1, res.TradesExecuted)
	trade := res.Trades[0]
	assert.Equal(t, SideBuy, trade.Side)
	assert.True(t, trade.Date.Equal(bars[4].Date))
	assert.True(t, trade.Price.Equal(decimal.NewFromInt(10)))
	assert.True(t, trade.Quantity.Equal(decimal.NewFromInt(1000)))

	assert.True(t, res.FinalValue.Equal(decimal.NewFromInt(10000)), res.FinalValue.String())
	assert.True(t, res.TotalReturn.IsZero())
	assert.True(t, res.MaxDrawdown.IsZero())
	assert.Len(t, res.EquityCurve, 5)
}

func TestSimulate_BuyThenSell(t *testing.T) {
	// 下跌后反弹：短均线先跌破长均线触发买入，反弹后上穿触发卖出
	bars := barsFrom(10, 9, 8, 10, 12)
	res := Simulate(bars, params(1, 2))

	require.Equal(t, 2, res.TradesExecuted)
	assert.Equal(t, SideBuy, res.Trades[0].Side)
	assert.True(t, res.Trades[0].Price.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, SideSell, res.Trades[1].Side)
	assert.True(t, res.Trades[1].Price.Equal(decimal.NewFromInt(10)))

	// 10000/9 股以 10 卖出
	want := decimal.NewFromInt(10000).Div(decimal.NewFromInt(9)).Mul(decimal.NewFromInt(10))
	assert.True(t, res.FinalValue.Equal(want), res.FinalValue.String())
	assert.True(t, res.MaxDrawdown.GreaterThan(decimal.Zero))
	assert.True(t, res.MaxDrawdown.LessThanOrEqual(decimal.NewFromInt(1)))
}

func TestSimulate_WindowLongerThanSeries(t *testing.T) {
	res := Simulate(barsFrom(10, 11, 12), params(50, 200))
	assert.Equal(t, 0, res.TradesExecuted)
	assert.True(t, res.FinalValue.Equal(decimal.NewFromInt(10000)))
	assert.True(t, res.MaxDrawdown.IsZero())
}

func TestSimulate_SkipsBuyAtZeroClose(t *testing.T) {
	res := Simulate(barsFrom(10, 0, 3), params(1, 2))
	assert.Equal(t, 0, res.TradesExecuted)
	assert.True(t, res.FinalValue.Equal(decimal.NewFromInt(10000)))
	assert.True(t, res.MaxDrawdown.IsZero())
}

func TestSimulate_TotalLoss(t *testing.T) {
	res := Simulate(barsFrom(10, 9, 0), params(1, 2))
	require.Equal(t, 1, res.TradesExecuted)
	assert.True(t, res.Trades[0].Price.Equal(decimal.NewFromInt(9)))
	assert.True(t, res.FinalValue.IsZero())
	assert.True(t, res.MaxDrawdown.Equal(decimal.NewFromInt(1)))
}

func TestSimulate_ZeroQuantityBuysAfterWipeout(t *testing.T) {
	// 1 处全仓买入，0 处卖出后现金归零，3 和 2 两处的买入信号只记数量为 0 的买入
	res := Simulate(barsFrom(10, 8, 1, 10, 0, 3, 1, 2), params(2, 3))
	require.Equal(t, 4, res.TradesExecuted)

	want := []struct {
		side  Side
		price int64
		qty   int64
	}{
		{SideBuy, 1, 10000},
		{SideSell, 0, 10000},
		{SideBuy, 3, 0},
		{SideBuy, 2, 0},
	}
	for i, w := range want {
		assert.Equal(t, w.side, res.Trades[i].Side, "trade %d", i)
		assert.True(t, res.Trades[i].Price.Equal(decimal.NewFromInt(w.price)), "trade %d price", i)
		assert.True(t, res.Trades[i].Quantity.Equal(decimal.NewFromInt(w.qty)), "trade %d quantity", i)
	}
	assert.True(t, res.FinalValue.IsZero())
	assert.True(t, res.MaxDrawdown.Equal(decimal.NewFromInt(1)))
}

func TestSimulate_Deterministic(t *testing.T) {
	bars := barsFrom(5, 7, 6, 8, 4, 9, 3, 10, 2, 11, 6, 7)
	a := Simulate(bars, params(2, 4))
	b := Simulate(bars, params(2, 4))
	assert.True(t, a.FinalValue.Equal(b.FinalValue))
	assert.True(t, a.MaxDrawdown.Equal(b.MaxDrawdown))
	assert.Equal(t, a.TradesExecuted, b.TradesExecuted)
	assert.True(t, a.MaxDrawdown.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, a.MaxDrawdown.LessThanOrEqual(decimal.NewFromInt(1)))
}

func TestCrossoverParams_Validate(t *testing.T) {
	tests := []struct {
		name string
		p    CrossoverParams
		ok   bool
	}{
		{"defaults", DefaultCrossoverParams(), true},
		{"zero investment", CrossoverParams{InitialInvestment: decimal.Zero, ShortWindow: 1, LongWindow: 2}, false},
		{"negative investment", CrossoverParams{InitialInvestment: decimal.NewFromInt(-1), ShortWindow: 1, LongWindow: 2}, false},
		{"zero short window", params(0, 2), false},
		{"zero long window", params(1, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, utils.ErrValidation))
			}
		})
	}
}

type stubRepo struct {
	bars []Bar
	err  error
}

func (r stubRepo) GetHistoricalData(context.Context, string) ([]Bar, error) {
	return r.bars, r.err
}

func TestBacktestEngine_RunBacktest(t *testing.T) {
	engine := NewBacktestEngine(stubRepo{bars: barsFrom(10, 11, 12, 11, 10)})
	res, err := engine.RunBacktest(context.Background(), "TEST", params(2, 3))
	require.NoError(t, err)
	assert.Equal(t, "TEST", res.Symbol)
	assert.Equal(t, 1, res.TradesExecuted)

	engine = NewBacktestEngine(stubRepo{err: utils.NewNoDataError("No stock data available")})
	_, err = engine.RunBacktest(context.Background(), "NOPE", params(2, 3))
	assert.True(t, errors.Is(err, utils.ErrNoData))

	_, err = engine.RunBacktest(context.Background(), "TEST", params(0, 3))
	assert.True(t, errors.Is(err, utils.ErrValidation))
}
