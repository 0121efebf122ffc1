package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/jung-kurt/gofpdf"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/internal/storage"
	"github.com/tresdv/nomina-api/pkg/logger"
)

// ReportService renders the liquidation payload and payslip receipts to
// PDF. The payload itself comes from the LiquidationService; this layer
// only formats. Generated documents are archived to local storage when a
// store is configured.
type ReportService struct {
	liquidationSvc *LiquidationService
	payslipRepo    repository.PayslipRepository
	employeeRepo   repository.EmployeeRepository
	store          *storage.LocalStorage
}

// NewReportService creates a new report service
func NewReportService(
	liquidationSvc *LiquidationService,
	payslipRepo repository.PayslipRepository,
	employeeRepo repository.EmployeeRepository,
	store *storage.LocalStorage,
) *ReportService {
	return &ReportService{
		liquidationSvc: liquidationSvc,
		payslipRepo:    payslipRepo,
		employeeRepo:   employeeRepo,
		store:          store,
	}
}

// archive keeps a copy of a generated document. Failures are logged, the
// caller still gets its buffer.
func (s *ReportService) archive(data []byte, filename, subDir string) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Save(data, filename, subDir); err != nil {
		logger.Warn("no se pudo archivar el documento", "error", err, "filename", filename)
	}
}

// liquidationRowView is a report row with display-formatted amounts.
type liquidationRowView struct {
	Sequence  int
	Name      string
	Formula   string
	Narrative string
	Amount    string
}

type interestRowView struct {
	Month      string
	Rate       string
	Accrual    string
	Balance    string
	Interest   string
	Cumulative string
}

type liquidationView struct {
	Employee       string
	Identity       string
	HireDate       string
	CutOff         string
	ServiceMonths  string
	MonthlyWage    string
	DailySalary    string
	Currency       string
	ExchangeRate   string
	RateSourceDate string
	Notice         string
	Benefits       []liquidationRowView
	Deductions     []liquidationRowView
	TotalBenefits  string
	TotalDeductions string
	Net            string
	NetInWords     string
	InterestRows   []interestRowView
	GeneratedAt    string
}

// GenerateLiquidationPDF renders the liquidation report for a payslip.
func (s *ReportService) GenerateLiquidationPDF(ctx context.Context, payslipID uint, opts ReportOptions) (*bytes.Buffer, string, error) {
	report, err := s.liquidationSvc.BuildReport(ctx, payslipID, opts)
	if err != nil {
		return nil, "", err
	}

	view := liquidationView{
		Employee:        report.Employee.FullName,
		Identity:        report.Employee.Identity,
		HireDate:        report.ContractSummary.HireDate.Format("02/01/2006"),
		CutOff:          report.ContractSummary.CutOff.Format("02/01/2006"),
		ServiceMonths:   report.ContractSummary.ServiceMonthsExact.String(),
		MonthlyWage:     FormatMoney(report.ContractSummary.MonthlyWage),
		DailySalary:     FormatMoney(report.ContractSummary.DailySalary),
		Currency:        report.Currency,
		ExchangeRate:    report.ExchangeRate.String(),
		RateSourceDate:  report.RateSourceDate,
		Notice:          report.Notice,
		TotalBenefits:   FormatMoney(report.Totals.Benefits),
		TotalDeductions: FormatMoney(report.Totals.Deductions),
		Net:             FormatMoney(report.Totals.Net),
		NetInWords:      AmountToWords(report.Totals.Net, report.Currency),
		GeneratedAt:     time.Now().Format("02/01/2006 15:04"),
	}
	for _, row := range report.Benefits {
		view.Benefits = append(view.Benefits, liquidationRowView{
			Sequence:  row.Sequence,
			Name:      row.Name,
			Formula:   row.Formula,
			Narrative: row.Narrative,
			Amount:    FormatMoney(row.Amount),
		})
	}
	for _, row := range report.Deductions {
		view.Deductions = append(view.Deductions, liquidationRowView{
			Sequence:  row.Sequence,
			Name:      row.Name,
			Formula:   row.Formula,
			Narrative: row.Narrative,
			Amount:    FormatMoney(row.Amount),
		})
	}
	for _, month := range report.MonthlyInterestBreakdown {
		view.InterestRows = append(view.InterestRows, interestRowView{
			Month:      month.MonthEnd.Format("01/2006"),
			Rate:       month.MonthRate.String(),
			Accrual:    FormatMoney(month.Accrual),
			Balance:    FormatMoney(month.Balance),
			Interest:   FormatMoney(month.Interest),
			Cumulative: FormatMoney(month.CumulativeInterest),
		})
	}

	buf, err := s.generatePDF("liquidacion.html", view)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("liquidacion_%s_%s.pdf", report.Employee.Identity, report.PeriodTo.Format("2006-01-02"))
	s.archive(buf.Bytes(), filename, "liquidaciones")
	return buf, filename, nil
}

// GeneratePayslipReceiptPDF renders a simple payslip receipt.
func (s *ReportService) GeneratePayslipReceiptPDF(ctx context.Context, payslipID uint) (*bytes.Buffer, string, error) {
	payslip, err := s.payslipRepo.FindByIDWithDetails(ctx, payslipID)
	if err != nil {
		return nil, "", err
	}
	employee, err := s.employeeRepo.FindByID(ctx, payslip.EmployeeID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(120, 10, "Recibo de Nomina")
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 10, payslip.Number)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, "Empleado: "+employee.FullName())
	pdf.Cell(95, 6, "Cedula: "+employee.Identity)
	pdf.Ln(6)
	pdf.Cell(95, 6, "Periodo: "+payslip.DateFrom.Format("02/01/2006")+" - "+payslip.DateTo.Format("02/01/2006"))
	pdf.Cell(95, 6, "Estructura: "+payslip.StructureCode)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(100, 7, "Concepto")
	pdf.Cell(40, 7, "Categoria")
	pdf.CellFormat(40, 7, "Monto USD", "", 0, "R", false, 0, "")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 10)
	for _, line := range payslip.Lines {
		pdf.Cell(100, 6, line.Name)
		pdf.Cell(40, 6, line.Category)
		pdf.CellFormat(40, 6, FormatMoney(line.Amount), "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(140, 7, "Neto a Pagar")
	pdf.CellFormat(40, 7, FormatMoney(payslip.Net()), "", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(180, 5, "SON: "+AmountToWords(payslip.Net(), payslip.Contract.Currency), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("recibo_%s.pdf", payslip.Number)
	s.archive(buf.Bytes(), filename, "recibos")
	return &buf, filename, nil
}

// generatePDF renders an HTML template and converts it with wkhtmltopdf.
func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s (path: %s): %w", templateName, tmplPath, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
