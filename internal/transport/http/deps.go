package http

import (
	"github.com/VaishnavKrishnanP/EchoSpace/internal/application/otp"
	"github.com/VaishnavKrishnanP/EchoSpace/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OTPRepo     otp.OTPStore
	Mailer      smtp.Mailer
	TokenSigner otp.TokenSigner // nil when JWT keys are not configured
}
