package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/config"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User, tempPassword string) error {
	data := struct {
		Name     string
		Email    string
		Password string
		AppURL   string
	}{
		Name:     user.FullName,
		Email:    user.Email,
		Password: tempPassword,
		AppURL:   s.config.AppURL,
	}

	body, err := s.renderTemplate("account_created.html", data)
	if err != nil {
		return err
	}
	return s.send(user.Email, "Cuenta creada en Nómina", body)
}

func (s *EmailService) SendPayslipConfirmed(ctx context.Context, user *models.User, payslip *models.Payslip) error {
	data := struct {
		Name   string
		Number string
		From   string
		To     string
		Net    string
		AppURL string
	}{
		Name:   user.FullName,
		Number: payslip.Number,
		From:   payslip.DateFrom.Format("02/01/2006"),
		To:     payslip.DateTo.Format("02/01/2006"),
		Net:    FormatMoney(payslip.Net()),
		AppURL: s.config.AppURL,
	}

	body, err := s.renderTemplate("payslip_confirmed.html", data)
	if err != nil {
		return err
	}
	return s.send(user.Email, "Recibo de nómina confirmado", body)
}

func (s *EmailService) SendLiquidationReady(ctx context.Context, user *models.User, employee *models.Employee, net decimal.Decimal) error {
	data := struct {
		Name     string
		Employee string
		Net      string
		AppURL   string
	}{
		Name:     user.FullName,
		Employee: employee.FullName(),
		Net:      FormatMoney(net),
		AppURL:   s.config.AppURL,
	}

	body, err := s.renderTemplate("liquidation_ready.html", data)
	if err != nil {
		return err
	}
	return s.send(user.Email, "Liquidación disponible", body)
}

func (s *EmailService) send(to, subject, html string) error {
	if s.config.ResendAPIKey == "" {
		logger.Warn("RESEND_API_KEY no configurado, correo omitido", "to", to, "subject", subject)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}
	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
