package application

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/internal/domain/errs"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

const minTokenLen = 5

// AccountService runs the email verification and password reset flows.
// Tokens are stateless: a reset token can be replayed until it expires.
type AccountService struct {
	Identity *IdentityService
	Tokens   *helpers.TokenAuthority
	Notifier Notifier
	Logger   *logrus.Logger

	VerifyEmailURL   string
	ResetPasswordURL string
}

func NewAccountService(identity *IdentityService, tokens *helpers.TokenAuthority, notifier Notifier, logger *logrus.Logger, verifyEmailURL, resetPasswordURL string) *AccountService {
	return &AccountService{
		Identity:         identity,
		Tokens:           tokens,
		Notifier:         notifier,
		Logger:           logger,
		VerifyEmailURL:   verifyEmailURL,
		ResetPasswordURL: resetPasswordURL,
	}
}

// withQuery appends key=value to base, keeping any query base already has.
func withQuery(base, key, value string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?" + key + "=" + url.QueryEscape(value)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func displayName(u *entity.User) string {
	if u.Fullname != "" {
		return u.Fullname
	}
	return u.Username
}

// RequestEmailVerification mails a verification link to the user. Users who
// are already verified still get one.
func (s *AccountService) RequestEmailVerification(ctx context.Context, userID string) error {
	u, err := s.Identity.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	token, _, err := s.Tokens.Issue(helpers.TokenEmailVerification, u.Email)
	if err != nil {
		return tokenError(err)
	}
	link := withQuery(s.VerifyEmailURL, "emailToken", token)
	if err := s.Notifier.SendVerificationEmail(ctx, u.Email, displayName(u), link); err != nil {
		return errs.Internal("unable to send verification email", err)
	}
	return nil
}

// ConfirmEmailVerification marks the token's address as verified.
func (s *AccountService) ConfirmEmailVerification(ctx context.Context, token string) (*entity.User, error) {
	token = strings.TrimSpace(token)
	if len(token) < minTokenLen {
		return nil, errs.BadRequest("token is missing or too short")
	}
	claims, err := s.Tokens.Verify(helpers.TokenEmailVerification, token)
	if err != nil {
		return nil, tokenError(err)
	}
	return s.Identity.SetEmailVerified(ctx, claims.Email)
}

// StartPasswordReset mails a reset link. Only verified addresses may reset.
func (s *AccountService) StartPasswordReset(ctx context.Context, email string) error {
	u, err := s.Identity.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return lookup(err, "no user with that email")
	}
	if !u.EmailVerified {
		return errs.BadRequest("email is not verified")
	}
	token, exp, err := s.Tokens.Issue(helpers.TokenPasswordReset, u.Email)
	if err != nil {
		return tokenError(err)
	}
	link := withQuery(s.ResetPasswordURL, "resetToken", token)
	if err := s.Notifier.SendPasswordResetEmail(ctx, u.Email, displayName(u), link, exp); err != nil {
		return errs.Internal("unable to send password reset email", err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("password reset requested")
	}
	return nil
}

// CheckResetToken validates a reset token without side effects and returns
// the address it was issued for.
func (s *AccountService) CheckResetToken(ctx context.Context, token string) (string, error) {
	if len(strings.TrimSpace(token)) < minTokenLen {
		return "", errs.BadRequest("token is missing or too short")
	}
	claims, err := s.Tokens.Verify(helpers.TokenPasswordReset, token)
	if err != nil {
		return "", tokenError(err)
	}
	if _, err := s.Identity.Users.GetByEmail(ctx, claims.Email); err != nil {
		return "", lookup(err, "user not found")
	}
	return claims.Email, nil
}

// CompletePasswordReset sets a new password for the token's address.
func (s *AccountService) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return errs.BadRequest("password must be at least 6 characters long")
	}
	if len(strings.TrimSpace(token)) < minTokenLen {
		return errs.BadRequest("token is missing or too short")
	}
	claims, err := s.Tokens.Verify(helpers.TokenPasswordReset, token)
	if err != nil {
		return tokenError(err)
	}
	return s.Identity.SetPassword(ctx, claims.Email, newPassword)
}

// SendContactMessage forwards a contact form submission to the team inbox.
func (s *AccountService) SendContactMessage(ctx context.Context, msg entity.ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = normalizeEmail(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return errs.BadRequest("name, email and message are required")
	}
	if err := s.Notifier.SendContactMessage(ctx, msg); err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			return e
		}
		return errs.Internal("unable to send message", err)
	}
	return nil
}
