package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Notifier delivers invite emails.
type Notifier interface {
	SendInvite(ctx context.Context, email, senderName, inviteID string) error
}

// InviteLink returns the acceptance link for an invite.
func InviteLink(baseURL, inviteID string) string {
	return strings.TrimRight(baseURL, "/") + "/" + inviteID
}

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string
	Port     int
	SSL      bool
	AuthType string
	Username string
	Password string
	From     string
}

// mailSender is the part of *mail.Client the notifier uses.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPNotifier sends invites over SMTP.
type SMTPNotifier struct {
	client    mailSender
	from      string
	siteName  string
	inviteURL string
	template  *InviteTemplate
	logger    *zap.Logger
}

// NewSMTPNotifier creates an SMTP notifier.
func NewSMTPNotifier(cfg SMTPConfig, tmpl *InviteTemplate, siteName, inviteURL string, logger *zap.Logger) (*SMTPNotifier, error) {
	var opts []mail.Option
	if cfg.Port != 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.AuthType != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthType(cfg.AuthType)))
	}
	if cfg.SSL {
		opts = append(opts, mail.WithSSLPort(true))
	}
	if cfg.Username != "" {
		opts = append(opts, mail.WithUsername(cfg.Username), mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return newSMTPNotifier(client, cfg.From, tmpl, siteName, inviteURL, logger), nil
}

func newSMTPNotifier(client mailSender, from string, tmpl *InviteTemplate, siteName, inviteURL string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		client:    client,
		from:      from,
		siteName:  siteName,
		inviteURL: inviteURL,
		template:  tmpl,
		logger:    logger,
	}
}

// SendInvite renders and sends the invite email.
func (n *SMTPNotifier) SendInvite(ctx context.Context, email, senderName, inviteID string) error {
	msg, err := n.buildMessage(email, senderName, inviteID)
	if err != nil {
		return err
	}
	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send invite mail: %w", err)
	}

	n.logger.Debug("invite mail sent", zap.String("invite_id", inviteID))
	return nil
}

func (n *SMTPNotifier) buildMessage(email, senderName, inviteID string) (*mail.Msg, error) {
	subject, body, err := n.template.Render(InviteMailData{
		SenderName: senderName,
		SiteName:   n.siteName,
		InviteLink: InviteLink(n.inviteURL, inviteID),
	})
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(strings.TrimSpace(email)); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	if n.template.Format() == FormatHTML {
		msg.SetBodyString(mail.TypeTextHTML, body)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, body)
	}
	return msg, nil
}

// BreakerConfig configures BreakerNotifier.
type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

// BreakerNotifier stops calling a failing mail transport for a while
// instead of making every invite wait on it.
type BreakerNotifier struct {
	next    Notifier
	breaker *gobreaker.CircuitBreaker[any]
}

// NewBreakerNotifier wraps next with a circuit breaker.
func NewBreakerNotifier(next Notifier, cfg BreakerConfig, logger *zap.Logger) *BreakerNotifier {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}

	settings := gobreaker.Settings{
		Name:        "invite-mail",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerNotifier{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
	}
}

// SendInvite implements Notifier.
func (n *BreakerNotifier) SendInvite(ctx context.Context, email, senderName, inviteID string) error {
	_, err := n.breaker.Execute(func() (any, error) {
		return nil, n.next.SendInvite(ctx, email, senderName, inviteID)
	})
	return err
}

// State returns the breaker state.
func (n *BreakerNotifier) State() gobreaker.State {
	return n.breaker.State()
}

// NopNotifier logs invites instead of sending them.
type NopNotifier struct {
	inviteURL string
	logger    *zap.Logger
}

// NewNopNotifier creates a notifier for setups without mail delivery.
func NewNopNotifier(inviteURL string, logger *zap.Logger) *NopNotifier {
	return &NopNotifier{inviteURL: inviteURL, logger: logger}
}

// SendInvite implements Notifier.
func (n *NopNotifier) SendInvite(_ context.Context, _, _, inviteID string) error {
	n.logger.Info("mail delivery disabled, invite not sent",
		zap.String("invite_id", inviteID),
		zap.String("invite_link", InviteLink(n.inviteURL, inviteID)),
	)
	return nil
}
