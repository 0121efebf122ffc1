package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService renders batches and rate history as spreadsheets.
type ExportService struct {
	batchRepo repository.BatchRepository
	rateRepo  repository.RateRepository
}

// NewExportService creates a new export service
func NewExportService(batchRepo repository.BatchRepository, rateRepo repository.RateRepository) *ExportService {
	return &ExportService{batchRepo: batchRepo, rateRepo: rateRepo}
}

// ExportBatchCSV writes one row per payslip of the batch.
func (s *ExportService) ExportBatchCSV(ctx context.Context, batchID uint) ([]byte, string, error) {
	batch, err := s.batchRepo.FindByIDWithPayslips(ctx, batchID)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Lote de Nómina", batch.Name, batch.Status})
	_ = writer.Write([]string{"Período", batch.DateFrom.Format("2006-01-02"), batch.DateTo.Format("2006-01-02")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Recibo", "Empleado", "Cédula", "Estado", "Bruto USD", "Deducciones USD", "Neto USD"})

	for i := range batch.Payslips {
		p := &batch.Payslips[i]
		_ = writer.Write([]string{
			p.Number,
			p.Employee.FullName(),
			p.Employee.Identity,
			p.Status,
			p.Gross().Round(2).String(),
			p.Deductions().Round(2).String(),
			p.Net().Round(2).String(),
		})
	}
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Total Neto", "", "", "", "", "", batch.TotalNet().Round(2).String()})

	writer.Flush()
	filename := fmt.Sprintf("lote_%d_%s.csv", batch.ID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportBatchXLSX renders the batch as a workbook: a summary sheet plus
// one detail row per payslip line.
func (s *ExportService) ExportBatchXLSX(ctx context.Context, batchID uint) ([]byte, string, error) {
	batch, err := s.batchRepo.FindByIDWithPayslips(ctx, batchID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Resumen"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Lote de Nómina: "+batch.Name)
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(sheet, "A2", "Período")
	_ = f.SetCellValue(sheet, "B2", batch.DateFrom.Format("2006-01-02"))
	_ = f.SetCellValue(sheet, "C2", batch.DateTo.Format("2006-01-02"))
	_ = f.SetCellValue(sheet, "A3", "Estado")
	_ = f.SetCellValue(sheet, "B3", batch.Status)

	headers := []string{"Recibo", "Empleado", "Cédula", "Estado", "Bruto USD", "Deducciones USD", "Neto USD"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 6
	for i := range batch.Payslips {
		p := &batch.Payslips[i]
		values := []interface{}{
			p.Number,
			p.Employee.FullName(),
			p.Employee.Identity,
			p.Status,
			p.Gross().Round(2).InexactFloat64(),
			p.Deductions().Round(2).InexactFloat64(),
			p.Net().Round(2).InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row+1), "Total Neto")
	_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", row+1), batch.TotalNet().Round(2).InexactFloat64())

	detail := "Detalle"
	_, _ = f.NewSheet(detail)
	detailHeaders := []string{"Recibo", "Secuencia", "Código", "Concepto", "Categoría", "Monto USD"}
	for i, h := range detailHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(detail, cell, h)
		_ = f.SetCellStyle(detail, cell, cell, headerStyle)
	}
	row = 2
	for i := range batch.Payslips {
		p := &batch.Payslips[i]
		for _, line := range p.Lines {
			values := []interface{}{
				p.Number, line.Sequence, line.Code, line.Name, line.Category,
				line.Amount.Round(2).InexactFloat64(),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(detail, cell, v)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("lote_%d_%s.xlsx", batch.ID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportLiquidationXLSX renders an already-built liquidation report as a
// workbook: the settlement sheet plus the monthly interest annex.
func (s *ExportService) ExportLiquidationXLSX(report *LiquidationReport) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Liquidación"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Liquidación de Prestaciones Sociales")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(sheet, "A2", "Empleado")
	_ = f.SetCellValue(sheet, "B2", report.Employee.FullName)
	_ = f.SetCellValue(sheet, "A3", "Cédula")
	_ = f.SetCellValue(sheet, "B3", report.Employee.Identity)
	_ = f.SetCellValue(sheet, "A4", "Ingreso")
	_ = f.SetCellValue(sheet, "B4", report.ContractSummary.HireDate.Format("2006-01-02"))
	_ = f.SetCellValue(sheet, "A5", "Egreso")
	_ = f.SetCellValue(sheet, "B5", report.ContractSummary.CutOff.Format("2006-01-02"))
	_ = f.SetCellValue(sheet, "A6", "Antigüedad (meses)")
	_ = f.SetCellValue(sheet, "B6", report.ContractSummary.ServiceMonths)
	_ = f.SetCellValue(sheet, "A7", "Moneda")
	_ = f.SetCellValue(sheet, "B7", report.Currency)
	_ = f.SetCellValue(sheet, "A8", "Tasa")
	_ = f.SetCellValue(sheet, "B8", report.ExchangeRate.InexactFloat64())
	_ = f.SetCellValue(sheet, "C8", report.RateSourceDate)
	if report.Notice != "" {
		_ = f.SetCellValue(sheet, "A9", report.Notice)
	}

	writeRows := func(start int, title string, rows []ReportRow) int {
		cell := fmt.Sprintf("A%d", start)
		_ = f.SetCellValue(sheet, cell, title)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
		row := start + 1
		for i := range rows {
			r := &rows[i]
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Code)
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Name)
			_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.AmountUSD.InexactFloat64())
			_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Amount.InexactFloat64())
			row++
		}
		return row + 1
	}

	row := writeRows(11, "Asignaciones", report.Benefits)
	row = writeRows(row, "Deducciones", report.Deductions)

	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total Asignaciones")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), report.Totals.Benefits.InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row+1), "Total Deducciones")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row+1), report.Totals.Deductions.InexactFloat64())
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row+2), "Neto a Pagar")
	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row+2), report.Totals.Net.InexactFloat64())

	if len(report.MonthlyInterestBreakdown) > 0 {
		annex := "Intereses"
		_, _ = f.NewSheet(annex)
		annexHeaders := []string{"Mes", "Tasa del Mes", "Abono", "Saldo", "Interés", "Interés Acumulado"}
		for i, h := range annexHeaders {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			_ = f.SetCellValue(annex, cell, h)
			_ = f.SetCellStyle(annex, cell, cell, headerStyle)
		}
		for i := range report.MonthlyInterestBreakdown {
			m := &report.MonthlyInterestBreakdown[i]
			values := []interface{}{
				m.MonthEnd.Format("2006-01"),
				m.MonthRate.InexactFloat64(),
				m.Accrual.InexactFloat64(),
				m.Balance.InexactFloat64(),
				m.Interest.InexactFloat64(),
				m.CumulativeInterest.InexactFloat64(),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
				_ = f.SetCellValue(annex, cell, v)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("liquidacion_%s_%s.xlsx", report.Employee.Identity, report.PeriodTo.Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportRatesCSV writes the normalized rate history of a currency.
func (s *ExportService) ExportRatesCSV(ctx context.Context, currency string) ([]byte, string, error) {
	if currency == "" {
		currency = models.CurrencyVES
	}
	rates, err := s.rateRepo.List(ctx, currency, nil, nil)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	_ = writer.Write([]string{"Fecha", "Moneda", fmt.Sprintf("%s por USD", currency), "Fuente"})
	for i := range rates {
		r := &rates[i]
		source := ""
		if r.Source != nil {
			source = *r.Source
		}
		_ = writer.Write([]string{
			r.EffectiveDate.Format("2006-01-02"),
			r.Currency,
			r.ForeignPerUSD().String(),
			source,
		})
	}
	writer.Flush()
	filename := fmt.Sprintf("tasas_%s_%s.csv", currency, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
