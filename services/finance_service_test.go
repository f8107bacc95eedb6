package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"checkmaster/models"
	"checkmaster/testutils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedInspections(t *testing.T, service *InspectionService, items ...models.Inspection) {
	t.Helper()
	for _, ins := range items {
		_, err := service.Save(context.Background(), ins)
		require.NoError(t, err)
	}
}

func TestFinanceService(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	inspections := NewInspectionService(testutils.NewFailingStore(), nil)
	seedInspections(t, inspections,
		pricedInspection("V4", "AAA1111", 100, now),
		pricedInspection("v4 ", "BBB2222", 50, now),
		pricedInspection("SAS", "CCC3333", 300, now),
		pricedInspection("", "DDD4444", 10, now),
	)
	finance := NewFinanceService(inspections, nil)

	t.Run("Сводка по компаниям", func(t *testing.T) {
		overview, err := finance.Overview(ctx)
		require.NoError(t, err)

		assert.Equal(t, 4, overview.Count)
		assert.True(t, overview.GrandTotal.Equal(decimal.NewFromInt(460)))
		require.Len(t, overview.Reports, 3)
		assert.Equal(t, "SAS", overview.Reports[0].Name)
		assert.Equal(t, "V4", overview.Reports[1].Name)
		assert.Equal(t, 2, overview.Reports[1].Count)
		assert.Equal(t, models.HeadquartersName, overview.Reports[2].Name)
	})

	t.Run("Детализация компании", func(t *testing.T) {
		detail, err := finance.CompanyDetail(ctx, " v4")
		require.NoError(t, err)
		assert.Equal(t, "V4", detail.Name)
		assert.Equal(t, 2, detail.Count)
		assert.True(t, detail.Total.Equal(decimal.NewFromInt(150)))

		detail, err = finance.CompanyDetail(ctx, "Outra")
		require.NoError(t, err)
		assert.Empty(t, detail.Inspections)
		assert.True(t, detail.Total.IsZero())
	})

	t.Run("Выборка для экспорта", func(t *testing.T) {
		label, all, err := finance.Selection(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "Geral", label)
		assert.Len(t, all, 4)

		label, filtered, err := finance.Selection(ctx, "sas")
		require.NoError(t, err)
		assert.Equal(t, "SAS", label)
		assert.Len(t, filtered, 1)
	})

	t.Run("Ошибка хранилища", func(t *testing.T) {
		store := testutils.NewFailingStore()
		store.FailReads = true
		broken := NewFinanceService(NewInspectionService(store, nil), nil)

		_, err := broken.Overview(ctx)
		assert.ErrorIs(t, err, testutils.ErrStoreUnavailable)
	})
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "R$ 0,00"},
		{"5.5", "R$ 5,50"},
		{"999.99", "R$ 999,99"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.8", "R$ 1.234.567,80"},
		{"-20", "-R$ 20,00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBRL(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestExportService(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2026, 3, 15, 14, 30, 0, 0, time.Local)

	inspections := NewInspectionService(testutils.NewFailingStore(), nil)
	first := pricedInspection("V4", "abc1d23", 120, issued)
	first.Brand, first.Model, first.TemplateName = "Fiat", "Uno", "V4"
	seedInspections(t, inspections, first, pricedInspection("SAS", "", 80, issued))

	export := NewExportService(NewFinanceService(inspections, nil), "", nil)
	export.now = func() time.Time { return issued }

	t.Run("Excel", func(t *testing.T) {
		doc, err := export.Export(ctx, ExportExcel, "")
		require.NoError(t, err)
		assert.Equal(t, "CheckMaster_Financeiro_Geral_2026-03-15.xlsx", doc.FileName)

		f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
		require.NoError(t, err)
		defer f.Close()

		assert.Equal(t, []string{"Financeiro"}, f.GetSheetList())

		cell := func(name string) string {
			v, err := f.GetCellValue("Financeiro", name)
			require.NoError(t, err)
			return v
		}
		assert.Equal(t, DefaultExportTitle, cell("A1"))
		assert.Equal(t, "CLIENTE: Geral", cell("A2"))
		assert.Equal(t, "DATA", cell("A5"))
		assert.Equal(t, "VALOR", cell("F5"))
		assert.Equal(t, "15/03/2026", cell("A6"))
		assert.Equal(t, "ABC1D23", cell("C6"))
		assert.Equal(t, "Fiat Uno", cell("D6"))
		assert.Equal(t, "-", cell("C7"))
		assert.Equal(t, "TOTAL GERAL", cell("A8"))
	})

	t.Run("Excel одной компании", func(t *testing.T) {
		doc, err := export.Export(ctx, ExportExcel, "sas")
		require.NoError(t, err)
		assert.Equal(t, "CheckMaster_Financeiro_SAS_2026-03-15.xlsx", doc.FileName)

		f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
		require.NoError(t, err)
		defer f.Close()

		total, err := f.GetCellValue("Financeiro", "A7")
		require.NoError(t, err)
		assert.Equal(t, "TOTAL GERAL", total)
	})

	t.Run("PDF", func(t *testing.T) {
		doc, err := export.Export(ctx, ExportPDF, "")
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", doc.ContentType)
		assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
	})

	t.Run("Неизвестный формат", func(t *testing.T) {
		_, err := export.Export(ctx, ExportFormat("csv"), "")
		assert.ErrorIs(t, err, models.ErrUnsupportedExport)
	})
}

func TestDashboardService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local)

	store := testutils.NewFailingStore()
	inspections := NewInspectionService(store, nil)
	templates := NewTemplateService(store, nil)
	seedInspections(t, inspections,
		pricedInspection("V4", "AAA", 100, now.Add(-time.Hour)),
		pricedInspection("SAS", "BBB", 40, now.Add(-48*time.Hour)),
		pricedInspection("sas", "CCC", 10, now),
	)

	dashboard := NewDashboardService(inspections, templates)
	dashboard.now = func() time.Time { return now }

	summary, err := dashboard.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 2, summary.TodayCount)
	assert.Equal(t, 2, summary.ActiveCompanies)
	assert.Len(t, summary.Favorites, 2)
	for _, tmpl := range summary.Favorites {
		assert.True(t, tmpl.IsFavorite)
	}
}
