package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

// DateLayout 日线日期格式
const DateLayout = "2006-01-02"

// DefaultMarket 加密货币缺省计价市场
const DefaultMarket = "USD"

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// DataKind 行情数据类型
type DataKind string

const (
	KindStock  DataKind = "stock"
	KindCrypto DataKind = "crypto"
)

// ParseDataKind 解析 data_type 参数，空串视为 stock
func ParseDataKind(s string) (DataKind, error) {
	switch DataKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindStock:
		return KindStock, nil
	case KindCrypto:
		return KindCrypto, nil
	default:
		return "", utils.NewValidationError("Invalid data_type %q, expected stock or crypto", s)
	}
}

// Bar 日线 K 线，(Symbol, Date) 唯一
type Bar struct {
	Symbol string
	// 交易日，UTC 零点
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

func NewBar(symbol string, date time.Time, o, h, l, c, v decimal.Decimal) *Bar {
	return &Bar{
		Symbol: symbol,
		Date:   TruncateDate(date),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: v,
	}
}

// NormalizeSymbol 去空白、转大写并校验代码格式
func NormalizeSymbol(s string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(s))
	if !symbolPattern.MatchString(symbol) {
		return "", utils.NewValidationError("Invalid symbol %q", s)
	}
	return symbol, nil
}

// TruncateDate 去掉时间部分，返回 UTC 零点
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
