package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/VaishnavKrishnanP/EchoSpace/internal/domain"
)

// OTPStore is the persistence surface the service needs for passcode records.
type OTPStore interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, email string) error
	// IncrementAttempts atomically bumps the counter and returns the new value.
	IncrementAttempts(ctx context.Context, email string) (int, error)
	MarkVerified(ctx context.Context, email string, at time.Time) error
}

// Mailer delivers the passcode email.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

// TokenSigner mints a verification token after a successful verify.
type TokenSigner interface {
	Sign(email string, verifiedAt time.Time) (string, error)
}

// VerifyResult is returned on successful verification. Token is empty when
// no signer is configured.
type VerifyResult struct {
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

type Service interface {
	Generate(ctx context.Context, req domain.GenerateOTPRequest) error
	Verify(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error)
}

// ServiceDeps bundles the service's collaborators and policy knobs.
type ServiceDeps struct {
	OTPRepo     OTPStore
	Mailer      Mailer
	TokenSigner TokenSigner // optional
	CodeLength  int
	TTL         time.Duration
	MaxAttempts int
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	return &service{deps: deps}
}

// Generate issues a fresh passcode for the email, overwriting any prior
// record for the same address, and sends it. The record is written before the
// send; a delivery failure leaves the record behind and surfaces as internal.
func (s *service) Generate(ctx context.Context, req domain.GenerateOTPRequest) error {
	email := normalizeEmail(req.Email)
	if email == "" {
		return fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}

	code, err := randomCode(s.deps.CodeLength)
	if err != nil {
		slog.Error("failed to draw passcode", "err", err)
		return fmt.Errorf("failed to generate OTP: %w", domain.ErrInternal)
	}

	now := time.Now().UTC()
	rec := &domain.OTPRecord{
		Email:     email,
		Code:      code,
		Attempts:  0,
		CreatedAt: now,
		ExpiresAt: now.Add(s.deps.TTL).Unix(),
	}
	if err := s.deps.OTPRepo.Put(ctx, rec); err != nil {
		slog.Error("failed to store OTP record", "email", email, "err", err)
		return fmt.Errorf("failed to generate OTP: %w", domain.ErrInternal)
	}

	subject := "Your EchoSpace Verification Code"
	if err := s.deps.Mailer.SendEmail(email, subject, s.emailBody(code)); err != nil {
		slog.Error("failed to send OTP email", "email", email, "err", err)
		return fmt.Errorf("failed to generate OTP: %w", domain.ErrInternal)
	}
	return nil
}

// Verify checks the submitted code against the stored record. Expiry is
// checked before the match so an expired record can never be accepted.
func (s *service) Verify(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error) {
	email := normalizeEmail(req.Email)
	code := strings.TrimSpace(req.Code)
	if email == "" || code == "" {
		return nil, fmt.Errorf("email and code are required: %w", domain.ErrBadRequest)
	}

	rec, err := s.deps.OTPRepo.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("OTP not found, request a new one: %w", domain.ErrNotFound)
		}
		slog.Error("failed to load OTP record", "email", email, "err", err)
		return nil, fmt.Errorf("failed to verify OTP: %w", domain.ErrInternal)
	}

	now := time.Now().UTC()
	if rec.ExpiresAt < now.Unix() {
		if err := s.deps.OTPRepo.Delete(ctx, email); err != nil {
			slog.Warn("failed to delete expired OTP record", "email", email, "err", err)
		}
		return nil, fmt.Errorf("OTP expired, request a new one: %w", domain.ErrExpired)
	}

	if rec.Code != code {
		attempts, err := s.deps.OTPRepo.IncrementAttempts(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("OTP not found, request a new one: %w", domain.ErrNotFound)
			}
			slog.Error("failed to increment OTP attempts", "email", email, "err", err)
			return nil, fmt.Errorf("failed to verify OTP: %w", domain.ErrInternal)
		}
		if attempts >= s.deps.MaxAttempts {
			if err := s.deps.OTPRepo.Delete(ctx, email); err != nil {
				slog.Warn("failed to delete exhausted OTP record", "email", email, "err", err)
			}
			return nil, fmt.Errorf("too many failed attempts, request a new OTP: %w", domain.ErrForbidden)
		}
		return nil, fmt.Errorf("invalid OTP code: %w", domain.ErrBadRequest)
	}

	if err := s.deps.OTPRepo.MarkVerified(ctx, email, now); err != nil {
		slog.Error("failed to mark OTP verified", "email", email, "err", err)
		return nil, fmt.Errorf("failed to verify OTP: %w", domain.ErrInternal)
	}

	result := &VerifyResult{Email: email}
	if s.deps.TokenSigner != nil {
		token, err := s.deps.TokenSigner.Sign(email, now)
		if err != nil {
			slog.Error("failed to sign verification token", "email", email, "err", err)
			return nil, fmt.Errorf("failed to verify OTP: %w", domain.ErrInternal)
		}
		result.Token = token
	}
	return result, nil
}

func (s *service) emailBody(code string) string {
	minutes := int(s.deps.TTL.Minutes())
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #4f46e5;">EchoSpace Verification</h2>
  <p>Your verification code is:</p>
  <h1 style="font-size: 2.5rem; letter-spacing: 0.5rem; color: #4f46e5;">%s</h1>
  <p>This code will expire in %d minutes.</p>
  <p style="color: #6b7280; font-size: 0.875rem;">
    If you didn't request this code, you can safely ignore this email.
  </p>
</div>`, code, minutes)
}

// normalizeEmail is the canonical storage-key form: lowercase, trimmed.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// randomCode draws a uniformly random n-digit numeric code. For n=6 the range
// is [100000, 999999]: the first digit is never zero.
func randomCode(n int) (string, error) {
	min := int64(1)
	for i := 1; i < n; i++ {
		min *= 10
	}
	span := min*10 - min
	v, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", v.Int64()+min), nil
}
