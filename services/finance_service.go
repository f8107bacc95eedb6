package services

import (
	"context"
	"strings"

	"checkmaster/models"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FinanceOverview выручка по компаниям
type FinanceOverview struct {
	Reports    []models.CompanyReport `json:"reports"`
	GrandTotal decimal.Decimal        `json:"grand_total"`
	Count      int                    `json:"count"`
}

// CompanyDetail инспекции одной компании и их сумма
type CompanyDetail struct {
	Name        string              `json:"name"`
	Total       decimal.Decimal     `json:"total"`
	Count       int                 `json:"count"`
	Inspections []models.Inspection `json:"inspections"`
}

// FinanceService отчеты о выручке. Отчеты не кэшируются и строятся заново
// при каждом чтении.
type FinanceService struct {
	inspections *InspectionService
	logger      *zap.Logger
}

// NewFinanceService создает сервис отчетов
func NewFinanceService(inspections *InspectionService, logger *zap.Logger) *FinanceService {
	return &FinanceService{inspections: inspections, logger: loggerOrNop(logger)}
}

// Overview группирует все инспекции по компаниям
func (s *FinanceService) Overview(ctx context.Context) (*FinanceOverview, error) {
	all, err := s.inspections.List(ctx)
	if err != nil {
		return nil, err
	}
	return &FinanceOverview{
		Reports:    models.BuildCompanyReports(all),
		GrandTotal: models.SumTotals(all),
		Count:      len(all),
	}, nil
}

// CompanyDetail инспекции компании с нормализованным названием name
func (s *FinanceService) CompanyDetail(ctx context.Context, name string) (*CompanyDetail, error) {
	all, err := s.inspections.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := models.FilterByCompany(all, name)
	return &CompanyDetail{
		Name:        models.NormalizeCompanyName(name),
		Total:       models.SumTotals(filtered),
		Count:       len(filtered),
		Inspections: filtered,
	}, nil
}

// Selection инспекции для экспорта: все или одной компании
func (s *FinanceService) Selection(ctx context.Context, company string) (label string, inspections []models.Inspection, err error) {
	all, err := s.inspections.List(ctx)
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(company) == "" {
		return "Geral", all, nil
	}
	return models.NormalizeCompanyName(company), models.FilterByCompany(all, company), nil
}

// FormatBRL форматирует сумму в виде "R$ 1.234,56"
func FormatBRL(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	value := amount.Abs().Round(2).InexactFloat64()
	return sign + "R$ " + humanize.FormatFloat("#.###,##", value)
}
