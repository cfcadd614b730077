package domain

import "time"

// OTPRecord is a one-time passcode challenge, keyed by normalized email
// (lowercase, trimmed). At most one live record exists per email; a new
// issuance unconditionally replaces the previous record.
// ExpiresAt is a Unix timestamp also used as the DynamoDB TTL attribute.
type OTPRecord struct {
	Email      string     `json:"email" dynamodbav:"email"`
	Code       string     `json:"-" dynamodbav:"code"`
	Attempts   int        `json:"attempts" dynamodbav:"attempts"`
	Verified   bool       `json:"verified" dynamodbav:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" dynamodbav:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt  int64      `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

type GenerateOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}
