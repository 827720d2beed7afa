package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/config"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
	"github.com/faizi-7/graveyard-back/pkg/mailer"
	mailtpl "github.com/faizi-7/graveyard-back/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			handle(ctx, logger, mg, msg)
		}
		close(done)
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

type sender interface {
	Send(ctx context.Context, to, replyTo, subject, text, html string) error
}

// handle renders and sends one job. Malformed jobs are dropped. A failed send
// is requeued once; a redelivered job that fails again is dropped.
func handle(ctx context.Context, logger *logrus.Logger, mg sender, msg amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		logger.WithError(err).Warn("bad message")
		_ = msg.Nack(false, false)
		return
	}
	if job.To == "" {
		logger.Warn("job without recipient dropped")
		_ = msg.Nack(false, false)
		return
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			logger.WithError(err).WithField("template", job.Template).Error("render failed")
			_ = msg.Nack(false, false)
			return
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := mg.Send(c, job.To, job.ReplyTo, subject, text, html); err != nil {
		helpers.LogError(logger, "send failed", err, logrus.Fields{"template": job.Template, "redelivered": msg.Redelivered})
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
}
