package templates

import (
	"time"

	"github.com/faizi-7/graveyard-back/config"
)

// Option pattern
type Option func(*EmailData)

func WithVerifyURL(url string) Option { return func(d *EmailData) { d.VerifyURL = url } }
func WithResetURL(url string) Option  { return func(d *EmailData) { d.ResetURL = url } }
func WithMessage(msg string) Option   { return func(d *EmailData) { d.Message = msg } }

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:    name,
		Email:   email,
		Type:    typ,
		AppName: cfg.AppName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewVerifyEmailData(cfg *config.Config, name, email, verifyURL string) map[string]any {
	return ToMap(NewBaseEmailData(cfg, VerifyEmail, name, email, WithVerifyURL(verifyURL)))
}

func NewResetPasswordData(cfg *config.Config, name, email, resetURL string, expiresAt time.Time) map[string]any {
	return ToMap(NewBaseEmailData(cfg, ResetPassword, name, email, WithResetURL(resetURL), WithExpiresAt(expiresAt)))
}

func NewContactMessageData(cfg *config.Config, name, email, message string) map[string]any {
	return ToMap(NewBaseEmailData(cfg, ContactMessage, name, email, WithMessage(message)))
}
