package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/wyfcoding/stockinsight/internal/report/domain"
)

const chartImage = "chart"

// PDFRenderer 单页 Letter 报告：标题行加价格对照图
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) RenderPDF(symbol string, points []domain.Point) ([]byte, error) {
	png, err := ChartPNG(symbol, points)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(fmt.Sprintf("Stock Price Prediction Report for %s", symbol), true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(50, 50, fmt.Sprintf("Stock Price Prediction Report for %s", symbol))

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(chartImage, opt, bytes.NewReader(png))
	pdf.ImageOptions(chartImage, 50, 96, 500, 300, false, opt, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
