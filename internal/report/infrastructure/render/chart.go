// Package render 生成价格对照图和单页 PDF 报告
package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/wyfcoding/stockinsight/internal/report/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	actualColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	predictedColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// ChartPNG 绘制实际价格与预测价格两条折线，横轴为日期
func ChartPNG(symbol string, points []domain.Point) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Stock Price Prediction for %s", symbol)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Price"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	actual, predicted := split(points)
	if err := addLine(p, "Actual Price", actual, actualColor); err != nil {
		return nil, err
	}
	if err := addLine(p, "Predicted Price", predicted, predictedColor); err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("create png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// split 拆出两侧各自非空的点，X 为 Unix 秒
func split(points []domain.Point) (actual, predicted plotter.XYs) {
	for _, pt := range points {
		x := float64(pt.Date.Unix())
		if pt.Close != nil {
			actual = append(actual, plotter.XY{X: x, Y: *pt.Close})
		}
		if pt.Predicted != nil {
			predicted = append(predicted, plotter.XY{X: x, Y: *pt.Predicted})
		}
	}
	return actual, predicted
}

func addLine(p *plot.Plot, label string, xys plotter.XYs, c color.Color) error {
	if len(xys) == 0 {
		return nil
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("build %s line: %w", label, err)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}
