package services

import (
	"context"
	"fmt"
	"html"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/config"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

const emailSubjectOrderShipped = "Your %s order %s is on its way"

// Mailer delivers a single message. *sendgrid.Client satisfies it through sendgridMailer.
type Mailer interface {
	Send(ctx context.Context, msg *mail.SGMailV3) error
}

type sendgridMailer struct {
	client *sendgrid.Client
}

func NewSendgridMailer(apiKey string) Mailer {
	return &sendgridMailer{client: sendgrid.NewSendClient(apiKey)}
}

func (m *sendgridMailer) Send(ctx context.Context, msg *mail.SGMailV3) error {
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid returned %d: %s", utils.ErrExternalServiceFailure, resp.StatusCode, resp.Body)
	}
	return nil
}

// NotificationService sends customer emails in the background. Delivery is
// best effort: failures are logged and the triggering write stands.
type NotificationService struct {
	cfg    *config.Config
	mailer Mailer
	wg     sync.WaitGroup
}

func NewNotificationService(cfg *config.Config, mailer Mailer) *NotificationService {
	return &NotificationService{cfg: cfg, mailer: mailer}
}

func (s *NotificationService) enabled() bool {
	return s != nil && s.mailer != nil && s.cfg.LDFlag_SendOrderEmails
}

func (s *NotificationService) OrderShipped(o *models.Order) {
	if !s.enabled() {
		return
	}
	msg := s.orderShippedMessage(o)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()
		if err := s.mailer.Send(ctx, msg); err != nil {
			utils.Logger.WithError(err).WithField("order_id", o.ID).Error("Failed to send order shipped email")
		}
	}()
}

func (s *NotificationService) orderShippedMessage(o *models.Order) *mail.SGMailV3 {
	from := mail.NewEmail(s.cfg.OrganizationName, s.cfg.LDFlag_SendgridFromEmail)
	to := mail.NewEmail(o.CustomerName, o.CustomerEmail)
	subject := fmt.Sprintf(emailSubjectOrderShipped, s.cfg.OrganizationName, o.OrderNumber)

	tracking := "Tracking details will follow shortly."
	if o.TrackingNumber != nil && *o.TrackingNumber != "" {
		carrier := "your carrier"
		if o.Carrier != nil && *o.Carrier != "" {
			carrier = *o.Carrier
		}
		tracking = fmt.Sprintf("Tracking number: %s (%s)", *o.TrackingNumber, carrier)
	}

	plain := fmt.Sprintf("Hi %s,\n\nGood news! Order %s has shipped.\n%s\n\n- The %s team",
		o.CustomerName, o.OrderNumber, tracking, s.cfg.OrganizationName)
	htmlContent := fmt.Sprintf(orderShippedEmailHTML,
		html.EscapeString(o.CustomerName), html.EscapeString(o.OrderNumber),
		html.EscapeString(tracking), html.EscapeString(s.cfg.OrganizationName))

	msg := mail.NewSingleEmail(from, subject, to, plain, htmlContent)
	if s.cfg.LDFlag_SendgridSandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	return msg
}

func (s *NotificationService) Wait() {
	if s != nil {
		s.wg.Wait()
	}
}

const orderShippedEmailHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #222;">
  <p>Hi %s,</p>
  <p>Good news! Order <strong>%s</strong> has shipped.</p>
  <p>%s</p>
  <p>- The %s team</p>
</body>
</html>`
