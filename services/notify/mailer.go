package notify

import (
	"context"
	"fmt"

	"github.com/salesdesk/crm-backend/config"
	"github.com/salesdesk/crm-backend/models"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Notifier sends best-effort notifications after successful mutations.
// Implementations report whether a notification was sent; failures are
// logged, never propagated, so a broken mail server cannot fail a
// committed mutation.
type Notifier interface {
	NotifyNewClient(ctx context.Context, client *models.Client) bool
	NotifyNewLead(ctx context.Context, lead *models.Lead, client *models.Client) bool
	NotifyLeadStatusChange(ctx context.Context, lead *models.Lead, client *models.Client, oldStatus, newStatus models.LeadStatus) bool
}

// Mailer sends notifications over SMTP. With mail disabled or no host
// configured every notification is a silent no-op.
type Mailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewMailer creates a new SMTP notifier
func NewMailer(cfg config.MailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger,
	}
}

func (m *Mailer) enabled() bool {
	return m.cfg.Enabled && m.cfg.Host != "" && len(m.cfg.SalesTeam) > 0
}

// NotifyNewClient notifies the sales team about a new client
func (m *Mailer) NotifyNewClient(ctx context.Context, client *models.Client) bool {
	subject := fmt.Sprintf("Nuevo cliente registrado: %s", client.ContactName)
	body := fmt.Sprintf(
		"Se ha registrado un nuevo cliente en el sistema.\n\n"+
			"Nombre de contacto: %s\n"+
			"Tipo de cliente: %s\n"+
			"Empresa: %s\n"+
			"Teléfono: %s\n"+
			"Correo: %s\n",
		client.ContactName,
		client.ClientType,
		orDash(client.CompanyName),
		orDash(client.Phone),
		orDash(client.Email),
	)
	return m.send(ctx, subject, body)
}

// NotifyNewLead notifies the sales team about a new sales lead
func (m *Mailer) NotifyNewLead(ctx context.Context, lead *models.Lead, client *models.Client) bool {
	subject := fmt.Sprintf("Nueva oportunidad de venta: %s", client.ContactName)
	body := fmt.Sprintf(
		"Se ha creado una nueva oportunidad de venta.\n\n"+
			"Cliente: %s\n"+
			"Canal: %s\n"+
			"Estado: %s\n",
		client.ContactName,
		lead.Channel,
		lead.Status,
	)
	return m.send(ctx, subject, body)
}

// NotifyLeadStatusChange notifies the sales team about a lead status change
func (m *Mailer) NotifyLeadStatusChange(ctx context.Context, lead *models.Lead, client *models.Client, oldStatus, newStatus models.LeadStatus) bool {
	subject := fmt.Sprintf("Cambio de estado de oportunidad: %s", client.ContactName)
	body := fmt.Sprintf(
		"La oportunidad de venta ha cambiado de estado.\n\n"+
			"Cliente: %s\n"+
			"Estado anterior: %s\n"+
			"Estado nuevo: %s\n",
		client.ContactName,
		oldStatus,
		newStatus,
	)
	return m.send(ctx, subject, body)
}

func (m *Mailer) send(ctx context.Context, subject, body string) bool {
	if !m.enabled() {
		return false
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		m.logger.Error("invalid mail sender", zap.String("from", m.cfg.From), zap.Error(err))
		return false
	}
	if err := msg.To(m.cfg.SalesTeam...); err != nil {
		m.logger.Error("invalid mail recipients", zap.Strings("to", m.cfg.SalesTeam), zap.Error(err))
		return false
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		m.logger.Error("failed to create mail client", zap.Error(err))
		return false
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("failed to send notification",
			zap.String("subject", subject),
			zap.Error(err),
		)
		return false
	}

	m.logger.Info("notification sent",
		zap.String("subject", subject),
		zap.Int("recipients", len(m.cfg.SalesTeam)),
	)
	return true
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

var _ Notifier = (*Mailer)(nil)
