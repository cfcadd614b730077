package domain

// AccountRecord is an app user account. Accounts are created externally;
// the only field this service mutates is HasSpace, and only during sweep
// reconciliation.
type AccountRecord struct {
	UserID   string `json:"id" dynamodbav:"user_id"`
	Email    string `json:"email,omitempty" dynamodbav:"email,omitempty"`
	HasSpace bool   `json:"has_space" dynamodbav:"has_space"`
}
