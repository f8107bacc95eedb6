package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CompanyReport сводка выручки по одной компании. Не хранится,
// пересчитывается при каждом чтении.
type CompanyReport struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// BuildCompanyReports группирует инспекции по нормализованному названию
// компании и сортирует по убыванию суммы
func BuildCompanyReports(inspections []Inspection) []CompanyReport {
	index := make(map[string]int)
	reports := make([]CompanyReport, 0)
	for i := range inspections {
		name := inspections[i].NormalizedCompany()
		idx, ok := index[name]
		if !ok {
			idx = len(reports)
			index[name] = idx
			reports = append(reports, CompanyReport{Name: name, Total: decimal.Zero})
		}
		reports[idx].Total = reports[idx].Total.Add(inspections[i].TotalValue)
		reports[idx].Count++
	}
	sort.SliceStable(reports, func(a, b int) bool {
		return reports[a].Total.GreaterThan(reports[b].Total)
	})
	return reports
}

// FilterByCompany инспекции с заданным нормализованным названием компании
func FilterByCompany(inspections []Inspection, name string) []Inspection {
	key := NormalizeCompanyName(name)
	out := make([]Inspection, 0)
	for _, ins := range inspections {
		if ins.NormalizedCompany() == key {
			out = append(out, ins)
		}
	}
	return out
}

// SumTotals сумма итогов инспекций
func SumTotals(inspections []Inspection) decimal.Decimal {
	total := decimal.Zero
	for _, ins := range inspections {
		total = total.Add(ins.TotalValue)
	}
	return total
}
