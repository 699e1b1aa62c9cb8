package contacts

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer delivers mail through the SendGrid v3 API
type SendGridMailer struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

var _ Mailer = (*SendGridMailer)(nil)

func NewSendGridMailer(apiKey, fromName, fromEmail string) *SendGridMailer {
	return &SendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(recipient, recipient)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d body %s", response.StatusCode, response.Body)
	}

	return nil
}

// LogMailer prints messages instead of delivering them. Used when no
// SendGrid key is configured, mostly local development.
type LogMailer struct {
	logger Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(logger Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, recipient, subject, htmlBody string) error {
	m.logger.Info("email notification", "to", recipient, "subject", subject, "body", htmlBody)
	return nil
}

// Notifier builds and dispatches account emails. Delivery happens on a
// separate goroutine and failures are logged, never surfaced to the
// request that triggered them.
type Notifier struct {
	mailer  Mailer
	baseURL string
	logger  Logger
}

func NewNotifier(mailer Mailer, baseURL string) *Notifier {
	return &Notifier{
		mailer:  mailer,
		baseURL: baseURL,
		logger:  defLogger{},
	}
}

func (n *Notifier) WithLogger(logger Logger) *Notifier {
	n.logger = logger
	return n
}

// SendVerificationEmail dispatches the confirm-your-email message
func (n *Notifier) SendVerificationEmail(email, token string) {
	link := fmt.Sprintf("%s/auth/verify?token=%s", n.baseURL, token)
	body := fmt.Sprintf(
		`<p>Welcome! Please confirm your email address by following <a href="%s">this link</a>.</p>`,
		link,
	)
	n.dispatch(email, "Confirm your email", body)
}

// SendPasswordResetEmail dispatches the reset-your-password message
func (n *Notifier) SendPasswordResetEmail(email, token string) {
	link := fmt.Sprintf("%s/auth/password/reset/confirm?token=%s", n.baseURL, token)
	body := fmt.Sprintf(
		`<p>We received a request to reset your password. Follow <a href="%s">this link</a> to choose a new one. If you did not ask for this, ignore this message.</p>`,
		link,
	)
	n.dispatch(email, "Reset your password", body)
}

func (n *Notifier) dispatch(recipient, subject, body string) {
	go func() {
		ctx := context.Background()
		if err := n.mailer.Send(ctx, recipient, subject, body); err != nil {
			n.logger.Error("email delivery failed", "to", recipient, "subject", subject, "error", err)
		}
	}()
}
