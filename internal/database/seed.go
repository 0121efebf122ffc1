package database

import (
	"errors"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed inserts the default admin account and the built-in payslip rule
// structures. It is idempotent: existing rows are left untouched.
func Seed(db *gorm.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedRules(db); err != nil {
		return err
	}
	return nil
}

func seedAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@nomina.local"
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "cambiar123"
		logger.Warn("usando contraseña de administrador por defecto, cámbiela de inmediato")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:             email,
		EncryptedPassword: string(hash),
		Role:              models.RoleAdmin,
		FullName:          "Administrador",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Info("cuenta de administrador creada", "email", email)
	return nil
}

// defaultRules returns every built-in salary rule. The liquidation
// structures share a core set; liquidation-v2 adds utilidades and the
// accrued prestaciones interest on top of it.
func defaultRules() []models.SalaryRule {
	liquidCore := func(structure string) []models.SalaryRule {
		return []models.SalaryRule{
			{
				StructureCode: structure,
				Code:          models.RuleCodeAntiguedad,
				Name:          "Prestaciones Sociales (Antigüedad)",
				Category:      models.LineCategoryAllowance,
				Sequence:      10,
				Amount:        "contract.daily_salary * 5 * timeline.service_months",
				FormulaLabel:  "Salario diario × 5 días × meses de servicio (Art. 142 LOTTT)",
			},
			{
				StructureCode: structure,
				Code:          models.RuleCodeVacaciones,
				Name:          "Vacaciones Fraccionadas",
				Category:      models.LineCategoryAllowance,
				Sequence:      20,
				Condition:     "timeline.vacation_days_due > 0",
				Amount:        "contract.daily_salary * timeline.vacation_days_due",
				FormulaLabel:  "Salario diario × días de vacaciones pendientes (Art. 190 LOTTT)",
			},
			{
				StructureCode: structure,
				Code:          models.RuleCodeBonoVacacional,
				Name:          "Bono Vacacional Fraccionado",
				Category:      models.LineCategoryAllowance,
				Sequence:      30,
				Condition:     "timeline.bono_vacacional_days_due > 0",
				Amount:        "contract.daily_salary * timeline.bono_vacacional_days_due",
				FormulaLabel:  "Salario diario × días de bono vacacional pendientes (Art. 192 LOTTT)",
			},
			{
				StructureCode: structure,
				Code:          models.RuleCodeVacationPrepaid,
				Name:          "Vacaciones Pagadas por Adelantado",
				Category:      models.LineCategoryDeduction,
				Sequence:      40,
				Amount:        "-contract.vacation_prepaid",
				FormulaLabel:  "Monto de vacaciones ya pagado, descontado de la liquidación",
			},
			{
				StructureCode: structure,
				Code:          models.RuleCodeARIDeduction,
				Name:          "Retención I.S.L.R. (ARI)",
				Category:      models.LineCategoryDeduction,
				Sequence:      70,
				Amount:        "-(contract.deduction_base * contract.ari_biweekly_pct / 100)",
				FormulaLabel:  "Base de deducción × porcentaje ARI declarado",
			},
			{
				StructureCode: structure,
				Code:          models.RuleCodeSSODeduction,
				Name:          "Seguro Social Obligatorio",
				Category:      models.LineCategoryDeduction,
				Sequence:      80,
				Amount:        "-(contract.monthly_wage * 0.045 * payslip.period_days / 30)",
				FormulaLabel:  "4,5% del salario mensual, prorrateado por días del período",
			},
			{
				StructureCode: structure,
				Code:          models.RuleCodeLiquidNet,
				Name:          "Neto a Pagar",
				Category:      models.LineCategoryNet,
				Sequence:      99,
				Amount:        "categories.gross + categories.deduction",
				FormulaLabel:  "Total asignaciones menos total deducciones",
			},
		}
	}

	rules := liquidCore(models.StructureLiquidationV1)
	rules = append(rules, liquidCore(models.StructureLiquidationV2)...)
	rules = append(rules,
		models.SalaryRule{
			StructureCode: models.StructureLiquidationV2,
			Code:          models.RuleCodeUtilidades,
			Name:          "Utilidades Fraccionadas",
			Category:      models.LineCategoryAllowance,
			Sequence:      50,
			Amount:        "contract.monthly_wage * payslip.months_in_fiscal_year / 12 * contract.utilidades_factor",
			FormulaLabel:  "Salario mensual × meses del ejercicio / 12 × factor de utilidades (Art. 131 LOTTT)",
		},
		models.SalaryRule{
			StructureCode: models.StructureLiquidationV2,
			Code:          models.RuleCodeIntereses,
			Name:          "Intereses sobre Prestaciones",
			Category:      models.LineCategoryAllowance,
			Sequence:      60,
			Amount:        "prestaciones.intereses",
			FormulaLabel:  "13% anual sobre saldo acumulado de prestaciones, capitalizado mensualmente",
		},
	)

	rules = append(rules,
		models.SalaryRule{
			StructureCode: models.StructureRegular,
			Code:          models.RuleCodeSalario,
			Name:          "Sueldo Base",
			Category:      models.LineCategoryBasic,
			Sequence:      10,
			Amount:        "contract.salary_share * payslip.period_days / 30",
			FormulaLabel:  "Porción salarial del paquete, prorrateada por días del período",
		},
		models.SalaryRule{
			StructureCode: models.StructureRegular,
			Code:          models.RuleCodeBono,
			Name:          "Bonificación No Salarial",
			Category:      models.LineCategoryAllowance,
			Sequence:      20,
			Condition:     "contract.bonus_share > 0",
			Amount:        "contract.bonus_share * payslip.period_days / 30",
			FormulaLabel:  "Porción de bonificación del paquete, prorrateada por días del período",
		},
		models.SalaryRule{
			StructureCode: models.StructureRegular,
			Code:          models.RuleCodeCestaTicket,
			Name:          "Cesta Ticket Socialista",
			Category:      models.LineCategoryAllowance,
			Sequence:      30,
			Condition:     "contract.cesta_daily > 0",
			Amount:        "contract.cesta_daily * payslip.worked_days",
			FormulaLabel:  "Valor diario de cesta ticket × días trabajados",
		},
		models.SalaryRule{
			StructureCode: models.StructureRegular,
			Code:          models.RuleCodeARI,
			Name:          "Retención I.S.L.R. (ARI)",
			Category:      models.LineCategoryDeduction,
			Sequence:      70,
			Amount:        "-(contract.deduction_base * contract.ari_biweekly_pct / 100)",
			FormulaLabel:  "Base de deducción × porcentaje ARI declarado",
		},
		models.SalaryRule{
			StructureCode: models.StructureRegular,
			Code:          models.RuleCodeSSO,
			Name:          "Seguro Social Obligatorio",
			Category:      models.LineCategoryDeduction,
			Sequence:      80,
			Amount:        "-(contract.monthly_wage * 0.045 * payslip.period_days / 30)",
			FormulaLabel:  "4,5% del salario mensual, prorrateado por días del período",
		},
		models.SalaryRule{
			StructureCode: models.StructureRegular,
			Code:          models.RuleCodeNet,
			Name:          "Neto a Pagar",
			Category:      models.LineCategoryNet,
			Sequence:      99,
			Amount:        "categories.gross + categories.deduction",
			FormulaLabel:  "Total asignaciones menos total deducciones",
		},
	)

	rules = append(rules,
		models.SalaryRule{
			StructureCode: models.StructureAguinaldos,
			Code:          models.RuleCodeAguinaldos,
			Name:          "Aguinaldos (Utilidades)",
			Category:      models.LineCategoryAllowance,
			Sequence:      10,
			Amount:        "contract.monthly_wage * payslip.months_in_fiscal_year / 12",
			FormulaLabel:  "Salario mensual × meses trabajados del ejercicio / 12",
		},
		models.SalaryRule{
			StructureCode: models.StructureAguinaldos,
			Code:          models.RuleCodeNet,
			Name:          "Neto a Pagar",
			Category:      models.LineCategoryNet,
			Sequence:      99,
			Amount:        "categories.gross + categories.deduction",
			FormulaLabel:  "Total asignaciones menos total deducciones",
		},
	)

	return rules
}

func seedRules(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.SalaryRule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rules := defaultRules()
	for i := range rules {
		rules[i].Active = true
	}
	if err := db.Create(&rules).Error; err != nil {
		return err
	}
	logger.Info("reglas salariales por defecto creadas", "count", len(rules))
	return nil
}

// SeedDemoRates inserts a couple of VES reference rates so a fresh
// development database can convert amounts out of the box.
func SeedDemoRates(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.CurrencyRate{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	source := "BCV"
	rates := []models.CurrencyRate{
		{
			Currency:      models.CurrencyVES,
			EffectiveDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			Rate:          decimal.RequireFromString("52.0200"),
			Quote:         models.QuoteForeignPerUSD,
			Source:        &source,
		},
		{
			Currency:      models.CurrencyVES,
			EffectiveDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Rate:          decimal.RequireFromString("236.4601"),
			Quote:         models.QuoteForeignPerUSD,
			Source:        &source,
		},
	}
	return db.Create(&rates).Error
}
