package domain

import "time"

// OTPRecord is a one-time passcode issued to a mobile number.
// PK: otp_id, a ULID. ULIDs sort lexicographically by creation time, so the
// mobile-index GSI returns records newest-first when scanned backwards.
// PurgeAt is a Unix timestamp used as DynamoDB TTL to garbage-collect
// consumed and expired records; it plays no part in verification.
type OTPRecord struct {
	OTPID     string    `json:"id" dynamodbav:"otp_id"`
	Mobile    string    `json:"mobile" dynamodbav:"mobile"`
	Code      string    `json:"-" dynamodbav:"code"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	Used      bool      `json:"used" dynamodbav:"used"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	PurgeAt   int64     `json:"-" dynamodbav:"purge_at"`
}
