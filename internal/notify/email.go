package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/jgoulah/hydromon/pkg/models"
)

// Subject is used for every report mail
const Subject = "London Hydro Daily Usage"

// EmailConfig describes the SMTP account the report is sent from
type EmailConfig struct {
	Server    string
	Port      int
	Username  string // gmail account, with or without domain
	Token     string // app password
	Recipient string // defaults to the sender address
}

// Email sends the report body as a plaintext mail over STARTTLS
type Email struct {
	cfg  EmailConfig
	log  *zap.SugaredLogger
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewEmail creates an email notifier
func NewEmail(cfg EmailConfig, log *zap.SugaredLogger) *Email {
	e := &Email{cfg: cfg, log: log}
	e.send = e.dialAndSend
	return e
}

// Name identifies the notifier in logs and errors
func (e *Email) Name() string {
	return "email"
}

// Notify mails the report
func (e *Email) Notify(ctx context.Context, report models.Report) error {
	msg, err := e.buildMessage(report)
	if err != nil {
		return &Error{Notifier: e.Name(), Err: err}
	}

	if err := e.send(ctx, msg); err != nil {
		return &Error{Notifier: e.Name(), Err: err}
	}

	e.log.Infow("email sent", "to", e.recipient())
	return nil
}

func (e *Email) sender() string {
	if strings.Contains(e.cfg.Username, "@") {
		return e.cfg.Username
	}
	return e.cfg.Username + "@gmail.com"
}

func (e *Email) recipient() string {
	if e.cfg.Recipient != "" {
		return e.cfg.Recipient
	}
	return e.sender()
}

func (e *Email) buildMessage(report models.Report) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(e.sender()); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(e.recipient()); err != nil {
		return nil, fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(Subject)
	msg.SetBodyString(mail.TypeTextPlain, report.Body)
	return msg, nil
}

func (e *Email) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(e.cfg.Server,
		mail.WithPort(e.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(e.cfg.Username),
		mail.WithPassword(e.cfg.Token),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	e.log.Debugw("sending email", "server", e.cfg.Server, "port", e.cfg.Port)
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}
