package domain

import "time"

// SpaceRecord is an ephemeral shared space. Spaces are created by the client
// app; this service only reclaims them once ExpiresAt has passed.
// CreatedBy is a non-owning back-reference to an AccountRecord and may be
// empty or dangling.
type SpaceRecord struct {
	SpaceID   string    `json:"id" dynamodbav:"space_id"`
	CreatedBy string    `json:"created_by,omitempty" dynamodbav:"created_by,omitempty"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // Unix seconds
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
