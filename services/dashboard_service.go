package services

import (
	"context"
	"time"

	"checkmaster/models"

	"github.com/shopspring/decimal"
)

// quickTemplatesLimit количество избранных шаблонов на главной
const quickTemplatesLimit = 3

// DashboardSummary показатели главной страницы
type DashboardSummary struct {
	TotalRevenue    decimal.Decimal   `json:"total_revenue"`
	TodayCount      int               `json:"today_count"`
	ActiveCompanies int               `json:"active_companies"`
	Favorites       []models.Template `json:"favorites"`
}

// DashboardService сводка для главной страницы
type DashboardService struct {
	inspections *InspectionService
	templates   *TemplateService
	now         func() time.Time
}

// NewDashboardService создает сервис главной страницы
func NewDashboardService(inspections *InspectionService, templates *TemplateService) *DashboardService {
	return &DashboardService{inspections: inspections, templates: templates, now: time.Now}
}

// Summary считает выручку, инспекции за сегодня и активные компании
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	all, err := s.inspections.List(ctx)
	if err != nil {
		return nil, err
	}
	favorites, err := s.templates.Favorites(ctx)
	if err != nil {
		return nil, err
	}
	if len(favorites) > quickTemplatesLimit {
		favorites = favorites[:quickTemplatesLimit]
	}

	now := s.now().Local()
	today := 0
	for _, ins := range all {
		d := ins.Date.Local()
		if d.Year() == now.Year() && d.YearDay() == now.YearDay() {
			today++
		}
	}

	return &DashboardSummary{
		TotalRevenue:    models.SumTotals(all),
		TodayCount:      today,
		ActiveCompanies: len(models.BuildCompanyReports(all)),
		Favorites:       favorites,
	}, nil
}
