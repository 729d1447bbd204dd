package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/smtp"
	"time"

	gomail "github.com/emersion/go-message/mail"
	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/platform/logger"
)

// SMTPNotifier sends mail through an SMTP relay. Messages are composed as
// RFC 5322 text/plain with go-message so headers are folded and encoded
// correctly.
type SMTPNotifier struct {
	addr   string
	from   string
	auth   smtp.Auth
	logger *slog.Logger

	// sendMail is injectable for testing; defaults to smtp.SendMail.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Ensure SMTPNotifier implements Notifier
var _ Notifier = (*SMTPNotifier)(nil)

// NewSMTPNotifier creates a notifier from SMTP configuration.
// If logger is nil, the default logger is used.
func NewSMTPNotifier(cfg config.SMTPConfig, log *slog.Logger) *SMTPNotifier {
	if log == nil {
		log = slog.Default()
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPNotifier{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from:     cfg.From,
		auth:     auth,
		logger:   log.With(slog.String("component", "smtp_notifier")),
		sendMail: smtp.SendMail,
	}
}

// Send implements Notifier.Send.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := composeMessage(n.from, to, subject, body)
	if err != nil {
		return fmt.Errorf("failed to compose message: %w", err)
	}

	if err := n.sendMail(n.addr, n.auth, n.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	n.logger.Debug("sent notification email", "subject", subject)
	return nil
}

// composeMessage builds an RFC 5322 text/plain message.
func composeMessage(from, to, subject, body string) ([]byte, error) {
	var header gomail.Header
	header.SetDate(time.Now())
	header.SetAddressList("From", []*gomail.Address{{Address: from}})
	header.SetAddressList("To", []*gomail.Address{{Address: to}})
	header.SetSubject(subject)

	var buf bytes.Buffer
	w, err := gomail.CreateSingleInlineWriter(&buf, header)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(w, body); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// LogNotifier is used when no SMTP host is configured: it records the
// notification instead of delivering it. Handy in development.
type LogNotifier struct{}

// Ensure LogNotifier implements Notifier
var _ Notifier = (*LogNotifier)(nil)

// Send implements Notifier.Send by logging the message.
func (LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	logger.FromContext(ctx).Info("mail notification (smtp disabled)",
		"to", to,
		"subject", subject,
		"body", body)
	return nil
}

// NewNotifier returns an SMTP notifier when a host is configured, and a
// log-only notifier otherwise.
func NewNotifier(cfg config.SMTPConfig, log *slog.Logger) Notifier {
	if cfg.Host == "" {
		return LogNotifier{}
	}
	return NewSMTPNotifier(cfg, log)
}
