package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	mdomain "github.com/wyfcoding/stockinsight/internal/marketdata/domain"
	"github.com/wyfcoding/stockinsight/internal/report/application"
	"github.com/wyfcoding/stockinsight/internal/report/domain"
	"github.com/wyfcoding/stockinsight/pkg/utils"
)

type ReportHandler struct {
	svc *application.ReportService
}

func NewReportHandler(svc *application.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/report/:symbol", h.Report)
}

// ReportRow JSON 报告的一行，缺失一侧为 null
type ReportRow struct {
	Date                string   `json:"date"`
	ClosePrice          *float64 `json:"close_price"`
	PredictedClosePrice *float64 `json:"predicted_close_price"`
}

// Report GET /report/:symbol?format=json|pdf
func (h *ReportHandler) Report(c *gin.Context) {
	symbol, err := mdomain.NormalizeSymbol(c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	format, err := domain.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.svc.Report(c.Request.Context(), symbol, format)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	if format == domain.FormatPDF {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
		c.Data(http.StatusOK, "application/pdf", out.PDF)
		return
	}

	rows := make([]ReportRow, len(out.Points))
	for i, p := range out.Points {
		rows[i] = ReportRow{
			Date:                p.Date.Format(mdomain.DateLayout),
			ClosePrice:          p.Close,
			PredictedClosePrice: p.Predicted,
		}
	}
	c.JSON(http.StatusOK, rows)
}
