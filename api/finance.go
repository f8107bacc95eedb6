package api

import (
	"fmt"
	"net/http"

	"checkmaster/services"

	"github.com/gin-gonic/gin"
)

// FinanceAPI отчеты о выручке и экспорт
type FinanceAPI struct {
	Finance *services.FinanceService
	Export  *services.ExportService
}

// NewFinanceAPI создает новый экземпляр FinanceAPI
func NewFinanceAPI(finance *services.FinanceService, export *services.ExportService) *FinanceAPI {
	return &FinanceAPI{Finance: finance, Export: export}
}

// RegisterFinanceRoutes регистрирует маршруты финансовых отчетов
func (api *FinanceAPI) RegisterFinanceRoutes(r *gin.RouterGroup) {
	finance := r.Group("/finance")
	{
		finance.GET("/companies", api.GetCompanyReports)
		finance.GET("/companies/:name", api.GetCompanyDetail)
		finance.GET("/export", api.ExportReport)
	}
}

// GetCompanyReports выручка по компаниям
func (api *FinanceAPI) GetCompanyReports(c *gin.Context) {
	overview, err := api.Finance.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   overview,
		"formatted": gin.H{
			"grand_total": services.FormatBRL(overview.GrandTotal),
		},
	})
}

// GetCompanyDetail инспекции одной компании
func (api *FinanceAPI) GetCompanyDetail(c *gin.Context) {
	detail, err := api.Finance.CompanyDetail(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, detail)
}

// ExportReport отдает Excel или PDF файл; ?company= ограничивает одной компанией
func (api *FinanceAPI) ExportReport(c *gin.Context) {
	format := services.ExportFormat(c.DefaultQuery("format", string(services.ExportExcel)))

	doc, err := api.Export.Export(c.Request.Context(), format, c.Query("company"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
