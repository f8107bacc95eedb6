package api

import (
	"net/http"
	"time"

	"checkmaster/services"

	"github.com/gin-gonic/gin"
)

// DashboardStats статистика главной страницы с отформатированной выручкой
type DashboardStats struct {
	*services.DashboardSummary
	TotalRevenueFormatted string    `json:"total_revenue_formatted"`
	LastUpdated           time.Time `json:"last_updated"`
}

// DashboardAPI главная страница
type DashboardAPI struct {
	Dashboard *services.DashboardService
}

// NewDashboardAPI создает новый экземпляр DashboardAPI
func NewDashboardAPI(dashboard *services.DashboardService) *DashboardAPI {
	return &DashboardAPI{Dashboard: dashboard}
}

// RegisterDashboardRoutes регистрирует маршруты главной страницы
func (api *DashboardAPI) RegisterDashboardRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", api.GetDashboardStats)
}

// GetDashboardStats выручка, инспекции за сегодня, компании и быстрые шаблоны
func (api *DashboardAPI) GetDashboardStats(c *gin.Context) {
	summary, err := api.Dashboard.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, DashboardStats{
		DashboardSummary:      summary,
		TotalRevenueFormatted: services.FormatBRL(summary.TotalRevenue),
		LastUpdated:           time.Now(),
	})
}
