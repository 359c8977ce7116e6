// Package algos 提供区间求和线段树及基于它的滑动均值
package algos

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SegmentTree 区间求和线段树
// 构建 O(n)，查询 O(log n)，更新 O(log n)
type SegmentTree struct {
	tree []decimal.Decimal
	n    int
}

// NewSegmentTree 创建线段树
func NewSegmentTree(arr []decimal.Decimal) *SegmentTree {
	n := len(arr)
	st := &SegmentTree{
		tree: make([]decimal.Decimal, 4*max(n, 1)),
		n:    n,
	}
	if n > 0 {
		st.build(arr, 0, 0, n-1)
	}
	return st
}

// Len 元素个数
func (st *SegmentTree) Len() int {
	return st.n
}

func (st *SegmentTree) build(arr []decimal.Decimal, node, start, end int) {
	if start == end {
		st.tree[node] = arr[start]
		return
	}
	mid := (start + end) / 2
	left, right := 2*node+1, 2*node+2
	st.build(arr, left, start, mid)
	st.build(arr, right, mid+1, end)
	st.tree[node] = st.tree[left].Add(st.tree[right])
}

// Update 更新指定位置的值
func (st *SegmentTree) Update(index int, value decimal.Decimal) error {
	if index < 0 || index >= st.n {
		return fmt.Errorf("index %d out of range [0,%d)", index, st.n)
	}
	st.update(0, 0, st.n-1, index, value)
	return nil
}

func (st *SegmentTree) update(node, start, end, index int, value decimal.Decimal) {
	if start == end {
		st.tree[node] = value
		return
	}
	mid := (start + end) / 2
	left, right := 2*node+1, 2*node+2
	if index <= mid {
		st.update(left, start, mid, index, value)
	} else {
		st.update(right, mid+1, end, index, value)
	}
	st.tree[node] = st.tree[left].Add(st.tree[right])
}

// Query 查询闭区间 [left, right] 的和
func (st *SegmentTree) Query(left, right int) (decimal.Decimal, error) {
	if left < 0 || right >= st.n || left > right {
		return decimal.Zero, fmt.Errorf("invalid range [%d,%d]", left, right)
	}
	return st.query(0, 0, st.n-1, left, right), nil
}

func (st *SegmentTree) query(node, start, end, left, right int) decimal.Decimal {
	if right < start || end < left {
		return decimal.Zero
	}
	if left <= start && end <= right {
		return st.tree[node]
	}
	mid := (start + end) / 2
	return st.query(2*node+1, start, mid, left, right).Add(st.query(2*node+2, mid+1, end, left, right))
}

// RollingMean 计算窗口为 window 的简单移动平均。
// 下标 i 处的结果在 i+1 < window 时无效（Valid=false）。
func RollingMean(values []decimal.Decimal, window int) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(values))
	if window <= 0 || len(values) == 0 {
		return out
	}

	st := NewSegmentTree(values)
	divisor := decimal.NewFromInt(int64(window))
	for i := window - 1; i < len(values); i++ {
		sum, err := st.Query(i-window+1, i)
		if err != nil {
			continue
		}
		out[i] = decimal.NullDecimal{Decimal: sum.Div(divisor), Valid: true}
	}
	return out
}
