package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/phisoli/parasekreterim/internal/amqp"
	"github.com/phisoli/parasekreterim/internal/log"
)

// SMTPConfig carries the mail relay settings. An empty Host disables
// real delivery; messages are logged instead so the worker can run in
// development without a relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Notifier turns queued notification messages into e-mails.
type Notifier struct {
	cfg    SMTPConfig
	logger *log.Logger
}

func NewNotifier(cfg SMTPConfig, logger *log.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentNotifier),
	}
}

// Deliver sends one notification. It is the handler plugged into the
// queue consumer: returning an error makes the broker redeliver.
func (n *Notifier) Deliver(msg *amqp.NotificationMessage) error {
	ctx := context.Background()

	if n.cfg.Host == "" {
		n.logger.InfoContext(ctx, "SMTP not configured, logging notification instead",
			log.FieldOperation, log.OpNotify,
			"type", string(msg.Type),
			"to", msg.Email,
			"subject", msg.Subject)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", msg.Email)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		n.logger.ErrorContext(ctx, "Failed to send notification email",
			log.FieldOperation, log.OpNotify,
			"to", msg.Email,
			"error", err)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.InfoContext(ctx, "Notification delivered",
		log.FieldOperation, log.OpNotify,
		"type", string(msg.Type),
		"to", msg.Email)
	return nil
}
