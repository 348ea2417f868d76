package notify

import (
	"context"

	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Config struct {
	Host     string `yaml:"host" envconfig:"SMTP_HOST"`
	Port     int    `yaml:"port" envconfig:"SMTP_PORT" default:"587"`
	From     string `yaml:"from" envconfig:"EMAIL_ADDRESS"`
	Password string `yaml:"password" envconfig:"EMAIL_PASSWORD" json:"-"`
}

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPNotifier delivers notices over SMTP. With no host or sender configured
// it degrades to a no-op, so the service runs fine without a mail account.
type SMTPNotifier struct {
	cfg Config
	log *zap.Logger
}

func NewSMTPNotifier(cfg Config, log *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		cfg: cfg,
		log: log.Named("notifier"),
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if n.cfg.Host == "" || n.cfg.From == "" {
		n.log.Debug("smtp is not configured, skipping notice", zap.String("to", to))
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return errors.Wrap(err, "from address")
	}
	if err := msg.To(to); err != nil {
		return errors.Wrap(err, "to address")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.From),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return errors.Wrap(err, "smtp client")
	}
	return client.DialAndSendWithContext(ctx, msg)
}
