package domain

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptySeries 没有可拟合的数据
var ErrEmptySeries = errors.New("empty series")

// LinearModel close = Intercept + Slope * days，days 为距 Origin 的自然日数
type LinearModel struct {
	Intercept   float64   `json:"intercept"`
	Slope       float64   `json:"slope"`
	Origin      time.Time `json:"origin"`
	LastDate    time.Time `json:"last_date"`
	Samples     int       `json:"samples"`
	Fingerprint string    `json:"fingerprint"`
}

// Fingerprint 序列指纹：条数、首尾日期与收盘价哈希。序列有任何变化都会改变指纹。
func Fingerprint(obs []Observation) string {
	if len(obs) == 0 {
		return "0"
	}
	h := fnv.New64a()
	for _, o := range obs {
		_, _ = h.Write([]byte(strconv.FormatFloat(o.Close, 'g', -1, 64)))
		_, _ = h.Write([]byte{';'})
	}
	return fmt.Sprintf("%d:%s:%s:%x",
		len(obs),
		obs[0].Date.Format("20060102"),
		obs[len(obs)-1].Date.Format("20060102"),
		h.Sum64(),
	)
}

// daysSince 两个 UTC 零点之间的自然日数
func daysSince(origin, t time.Time) float64 {
	return math.Round(t.Sub(origin).Hours() / 24)
}

// features 以 origin 为零点把观测转换为 (x, y)
func features(origin time.Time, obs []Observation) (xs, ys []float64) {
	xs = make([]float64, len(obs))
	ys = make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = daysSince(origin, o.Date)
		ys[i] = o.Close
	}
	return xs, ys
}

// fit 普通最小二乘。x 只有一个取值时斜率为 0，截距取均值。
func fit(xs, ys []float64) (intercept, slope float64) {
	distinct := false
	for _, x := range xs[1:] {
		if x != xs[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return stat.Mean(ys, nil), 0
	}
	return stat.LinearRegression(xs, ys, nil, false)
}

// FitLinearModel 用全部历史拟合，obs 需按日期升序
func FitLinearModel(obs []Observation) (*LinearModel, error) {
	if len(obs) == 0 {
		return nil, ErrEmptySeries
	}
	origin := obs[0].Date
	xs, ys := features(origin, obs)
	intercept, slope := fit(xs, ys)

	return &LinearModel{
		Intercept:   intercept,
		Slope:       slope,
		Origin:      origin,
		LastDate:    obs[len(obs)-1].Date,
		Samples:     len(obs),
		Fingerprint: Fingerprint(obs),
	}, nil
}

// PredictAt 预测某日的收盘价
func (m *LinearModel) PredictAt(date time.Time) float64 {
	return m.Intercept + m.Slope*daysSince(m.Origin, date)
}

// Extrapolate 生成最后一个交易日之后连续 horizon 个自然日的预测
func (m *LinearModel) Extrapolate(symbol string, horizon int, now time.Time) []*PredictedPrice {
	out := make([]*PredictedPrice, 0, horizon)
	for i := 1; i <= horizon; i++ {
		date := m.LastDate.AddDate(0, 0, i)
		out = append(out, &PredictedPrice{
			Symbol:         symbol,
			Date:           date,
			PredictedClose: decimal.NewFromFloat(m.PredictAt(date)).Round(PricePrecision),
			CreatedAt:      now,
		})
	}
	return out
}

// Evaluation 时间顺序 80/20 切分后的离线评估
type Evaluation struct {
	Symbol    string  `json:"symbol"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	MSE       float64 `json:"mse"`
	R2        float64 `json:"r2"`
}

// MinEvaluationSamples 评估所需的最少观测数
const MinEvaluationSamples = 3

// Evaluate 前 80% 训练、后 20% 测试，不打乱顺序
func Evaluate(symbol string, obs []Observation) (*Evaluation, error) {
	n := len(obs)
	if n < MinEvaluationSamples {
		return nil, fmt.Errorf("need at least %d observations, got %d", MinEvaluationSamples, n)
	}

	nTest := int(math.Ceil(0.2 * float64(n)))
	nTrain := n - nTest

	xs, ys := features(obs[0].Date, obs)
	intercept, slope := fit(xs[:nTrain], ys[:nTrain])

	testY := ys[nTrain:]
	estimates := make([]float64, nTest)
	var sse float64
	for i, x := range xs[nTrain:] {
		estimates[i] = intercept + slope*x
		d := testY[i] - estimates[i]
		sse += d * d
	}

	return &Evaluation{
		Symbol:    symbol,
		TrainSize: nTrain,
		TestSize:  nTest,
		Intercept: intercept,
		Slope:     slope,
		MSE:       sse / float64(nTest),
		R2:        rSquared(estimates, testY, sse),
	}, nil
}

// rSquared 测试集方差为 0 时，完全拟合记 1，否则记 0
func rSquared(estimates, values []float64, sse float64) float64 {
	mean := stat.Mean(values, nil)
	var sst float64
	for _, v := range values {
		sst += (v - mean) * (v - mean)
	}
	if sst == 0 {
		if sse == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(estimates, values, nil)
}
