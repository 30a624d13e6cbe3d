package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/wneessen/go-mail"

	"github.com/sakif/plantcare/internal/model"
)

// retryable SMTP dial/send attempts per message, on top of the first try.
const mailMaxRetries = 2

// Mailer delivers notifications over SMTP. Bodies are plain text — HTML
// rendering belongs to the (external) templating layer.
type Mailer struct {
	client *mail.Client
	from   string
}

// MailerConfig carries SMTP connection settings.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var _ Notifier = (*Mailer)(nil)

// NewMailer creates an SMTP-backed Notifier. Construction only validates
// the settings; connections are dialed per send.
func NewMailer(cfg MailerConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: creating smtp client: %w", err)
	}

	return &Mailer{client: client, from: cfg.From}, nil
}

func (m *Mailer) SendWateringReminder(ctx context.Context, target model.NotificationTarget, entry *model.GardenEntry) error {
	subject := fmt.Sprintf("Time to Water: %s", entry.CommonName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour %s needs watering!\n\nCare tip: %s\n\nGive it some water today — we'll remind you again next time.\n",
		target.Name, entry.CommonName, waterText(entry),
	)
	return m.send(ctx, target.Address, subject, body)
}

func (m *Mailer) SendGardenAddition(ctx context.Context, target model.NotificationTarget, entry *model.GardenEntry) error {
	subject := fmt.Sprintf("Added to Your Garden: %s", entry.CommonName)
	body := fmt.Sprintf(
		"Hi %s,\n\n%s (%s) has been added to your garden.\n\nWater: %s\nLight: %s\nSoil: %s\n\nWe'll remind you when it's time to water!\n",
		target.Name, entry.CommonName, entry.ScientificName,
		waterText(entry), entry.Care.Light, entry.Care.Soil,
	)
	return m.send(ctx, target.Address, subject, body)
}

// send composes and delivers one message, retrying transient failures with
// fibonacci backoff. The caller's ctx bounds the whole attempt including
// retries, so a slow relay can't stall a reminder batch.
func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("notify: invalid from address %q: %w", m.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("notify: invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	backoff := retry.WithMaxRetries(mailMaxRetries, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("notify: sending to %s: %w", to, err)
	}
	return nil
}

func waterText(entry *model.GardenEntry) string {
	if entry.Care.Water == "" {
		return "Every 2-3 days"
	}
	return entry.Care.Water
}
