package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/config"
	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	mailtpl "github.com/faizi-7/graveyard-back/pkg/mailer/templates"
)

// JobPublisher puts an EmailJob on the mail queue. helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier turns account events into EmailJobs for the email worker.
type QueueNotifier struct {
	cfg *config.Config
	pub JobPublisher
	log *logrus.Logger
}

func NewQueueNotifier(cfg *config.Config, pub JobPublisher, log *logrus.Logger) *QueueNotifier {
	return &QueueNotifier{cfg: cfg, pub: pub, log: log}
}

func (n *QueueNotifier) publish(ctx context.Context, job EmailJob) error {
	if err := n.pub.PublishJSON(ctx, job); err != nil {
		if n.log != nil {
			n.log.WithFields(logrus.Fields{"template": job.Template, "to": job.To}).WithError(err).Error("enqueue email failed")
		}
		return err
	}
	return nil
}

func (n *QueueNotifier) SendVerificationEmail(ctx context.Context, to, name, link string) error {
	return n.publish(ctx, EmailJob{
		To:       to,
		Template: mailtpl.VerifyEmail,
		Data:     mailtpl.NewVerifyEmailData(n.cfg, name, to, link),
	})
}

func (n *QueueNotifier) SendPasswordResetEmail(ctx context.Context, to, name, link string, expiresAt time.Time) error {
	return n.publish(ctx, EmailJob{
		To:       to,
		Template: mailtpl.ResetPassword,
		Data:     mailtpl.NewResetPasswordData(n.cfg, name, to, link, expiresAt),
	})
}

// SendContactMessage forwards the message to the configured inbox with the
// sender as reply-to.
func (n *QueueNotifier) SendContactMessage(ctx context.Context, msg entity.ContactMessage) error {
	if n.cfg.ContactInbox == "" {
		return errors.New("contact inbox not configured")
	}
	return n.publish(ctx, EmailJob{
		To:       n.cfg.ContactInbox,
		ReplyTo:  msg.Email,
		Template: mailtpl.ContactMessage,
		Data:     mailtpl.NewContactMessageData(n.cfg, msg.Name, msg.Email, msg.Message),
	})
}

// LogNotifier only logs what would have been sent. Used when MAIL_SEND_ENABLED=false.
// Links carry live tokens, so they are logged only when revealLinks is set.
type LogNotifier struct {
	log         *logrus.Logger
	revealLinks bool
}

func NewLogNotifier(log *logrus.Logger, revealLinks bool) *LogNotifier {
	return &LogNotifier{log: log, revealLinks: revealLinks}
}

func (n *LogNotifier) fields(to, link string) logrus.Fields {
	f := logrus.Fields{"to": to}
	if n.revealLinks {
		f["link"] = link
	}
	return f
}

func (n *LogNotifier) SendVerificationEmail(_ context.Context, to, _, link string) error {
	n.log.WithFields(n.fields(to, link)).Info("verification email (not sent)")
	return nil
}

func (n *LogNotifier) SendPasswordResetEmail(_ context.Context, to, _, link string, expiresAt time.Time) error {
	n.log.WithFields(n.fields(to, link)).WithField("expires_at", expiresAt).Info("password reset email (not sent)")
	return nil
}

// SendContactMessage fails: nobody would ever read the message.
func (n *LogNotifier) SendContactMessage(_ context.Context, msg entity.ContactMessage) error {
	n.log.WithFields(logrus.Fields{"from": msg.Email, "name": msg.Name}).Warn("contact message dropped, mail sending is disabled")
	return errors.New("mail sending is disabled")
}
