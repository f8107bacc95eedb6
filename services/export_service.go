package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"checkmaster/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportFormat формат файла экспорта
type ExportFormat string

const (
	ExportExcel ExportFormat = "excel"
	ExportPDF   ExportFormat = "pdf"
)

// DefaultExportTitle заголовок документа по умолчанию
const DefaultExportTitle = "RELATÓRIO DE FATURAMENTO - CHECKMASTER AUTO"

// exportColumns фиксированные колонки таблицы
var exportColumns = []string{"DATA", "HORA", "PLACA", "VEÍCULO", "SERVIÇO", "VALOR"}

// ExportDocument готовый файл экспорта
type ExportDocument struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService формирует файлы финансового отчета. Только читает инспекции.
type ExportService struct {
	finance *FinanceService
	title   string
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService создает сервис экспорта
func NewExportService(finance *FinanceService, title string, logger *zap.Logger) *ExportService {
	if title == "" {
		title = DefaultExportTitle
	}
	return &ExportService{
		finance: finance,
		title:   title,
		logger:  loggerOrNop(logger),
		now:     time.Now,
	}
}

// ExportFileName имя файла без расширения
func ExportFileName(companyLabel string, now time.Time) string {
	return fmt.Sprintf("CheckMaster_Financeiro_%s_%s", companyLabel, now.Format("2006-01-02"))
}

// Export формирует файл по всем инспекциям или по одной компании
func (s *ExportService) Export(ctx context.Context, format ExportFormat, company string) (*ExportDocument, error) {
	label, inspections, err := s.finance.Selection(ctx, company)
	if err != nil {
		return nil, err
	}
	now := s.now()
	name := ExportFileName(label, now)

	var doc *ExportDocument
	switch format {
	case ExportExcel, "":
		data, err := s.Excel(inspections, label, now)
		if err != nil {
			return nil, err
		}
		doc = &ExportDocument{
			FileName:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	case ExportPDF:
		data, err := s.PDF(inspections, label, now)
		if err != nil {
			return nil, err
		}
		doc = &ExportDocument{FileName: name + ".pdf", ContentType: "application/pdf", Data: data}
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedExport, format)
	}

	s.logger.Info("Сформирован экспорт",
		zap.String("file", doc.FileName),
		zap.Int("inspections", len(inspections)))
	return doc, nil
}

// exportRow значения строки таблицы
func exportRow(ins models.Inspection) []string {
	d := ins.Date.Local()
	plate := strings.ToUpper(ins.Plate)
	if plate == "" {
		plate = "-"
	}
	return []string{
		d.Format("02/01/2006"),
		d.Format("15:04"),
		plate,
		strings.TrimSpace(ins.Brand + " " + ins.Model),
		ins.TemplateName,
		FormatBRL(ins.TotalValue),
	}
}

// Excel строит xlsx документ с заголовком, таблицей и строкой итога
func (s *ExportService) Excel(inspections []models.Inspection, companyLabel string, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Не удалось закрыть Excel файл", zap.Error(err))
		}
	}()

	sheet := "Financeiro"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16, Color: "0033A0"},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0033A0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	moneyFmt := `"R$" #,##0.00`
	moneyStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Color: "10B981"},
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 12, Color: "0033A0"},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"F8FAFC"}, Pattern: 1},
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, err
	}

	// Шапка документа
	f.SetCellValue(sheet, "A1", s.title)
	f.MergeCell(sheet, "A1", "F1")
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	f.SetCellValue(sheet, "A2", "CLIENTE: "+companyLabel)
	f.SetCellValue(sheet, "A3", fmt.Sprintf("DATA DE EMISSÃO: %s às %s", now.Format("02/01/2006"), now.Format("15:04")))

	const headerRow = 5
	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheet, cell, col)
	}
	f.SetCellStyle(sheet, "A5", "F5", headerStyle)

	row := headerRow + 1
	for _, ins := range inspections {
		values := exportRow(ins)
		for i, v := range values[:5] {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		valueCell, _ := excelize.CoordinatesToCellName(6, row)
		f.SetCellValue(sheet, valueCell, ins.TotalValue.InexactFloat64())
		f.SetCellStyle(sheet, valueCell, valueCell, moneyStyle)
		row++
	}

	labelCell, _ := excelize.CoordinatesToCellName(1, row)
	endLabelCell, _ := excelize.CoordinatesToCellName(5, row)
	totalCell, _ := excelize.CoordinatesToCellName(6, row)
	f.SetCellValue(sheet, labelCell, "TOTAL GERAL")
	f.MergeCell(sheet, labelCell, endLabelCell)
	f.SetCellValue(sheet, totalCell, models.SumTotals(inspections).InexactFloat64())
	f.SetCellStyle(sheet, labelCell, totalCell, totalStyle)

	f.SetColWidth(sheet, "A", "C", 16)
	f.SetColWidth(sheet, "D", "E", 34)
	f.SetColWidth(sheet, "F", "F", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования Excel: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF строит документ для печати с той же таблицей
func (s *ExportService) PDF(inspections []models.Inspection, companyLabel string, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 160)
	pdf.Cell(0, 10, tr(s.title))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.Cell(0, 6, tr("CLIENTE: "+companyLabel))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("DATA DE EMISSÃO: %s às %s", now.Format("02/01/2006"), now.Format("15:04"))))
	pdf.Ln(10)

	widths := []float64{22, 16, 24, 50, 46, 32}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(0, 51, 160)
	pdf.SetTextColor(255, 255, 255)
	for i, col := range exportColumns {
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(30, 41, 59)
	for _, ins := range inspections {
		for i, v := range exportRow(ins) {
			align := "L"
			if i == len(widths)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, tr(v), "B", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	labelWidth := 0.0
	for _, w := range widths[:5] {
		labelWidth += w
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(0, 51, 160)
	pdf.SetFillColor(248, 250, 252)
	pdf.CellFormat(labelWidth, 9, "TOTAL GERAL", "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[5], 9, tr(FormatBRL(models.SumTotals(inspections))), "1", 0, "R", true, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("ошибка формирования PDF: %w", err)
	}
	return buf.Bytes(), nil
}
