package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/suqapp/backend/internal/domain"
	"github.com/suqapp/backend/internal/infrastructure/sns"
	"github.com/suqapp/backend/internal/pkg/id"
)

const codeDigits = 5

// Store is the minimal persistence interface the manager requires.
type Store interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Newest(ctx context.Context, mobile, code string, now time.Time) (*domain.OTPRecord, error)
	MarkUsed(ctx context.Context, otpID string) error
	CountIssuedSince(ctx context.Context, mobile string, since time.Time) (int, error)
}

// Manager issues, delivers and single-use-verifies one-time passcodes.
type Manager interface {
	Issue(ctx context.Context, mobile string) (string, error)
	Verify(ctx context.Context, mobile, code string) error
	Deliver(ctx context.Context, mobile, code string)
}

type manager struct {
	store       Store
	sender      sns.SMSSender
	ttl         time.Duration
	issueWindow time.Duration
	issueMax    int
}

func NewManager(store Store, sender sns.SMSSender, ttl, issueWindow time.Duration, issueMax int) Manager {
	return &manager{
		store:       store,
		sender:      sender,
		ttl:         ttl,
		issueWindow: issueWindow,
		issueMax:    issueMax,
	}
}

// Issue generates a fresh code and persists it with the configured TTL.
// Previously issued codes stay valid until they expire or are consumed;
// issuance itself is capped per mobile per window to bound abuse.
func (m *manager) Issue(ctx context.Context, mobile string) (string, error) {
	n, err := m.store.CountIssuedSince(ctx, mobile, time.Now().Add(-m.issueWindow))
	if err != nil {
		return "", err
	}
	if n >= m.issueMax {
		return "", fmt.Errorf("otp issuance cap reached for mobile: %w", domain.ErrTooManyRequests)
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(m.ttl)
	rec := &domain.OTPRecord{
		OTPID:     id.New(),
		Mobile:    mobile,
		Code:      code,
		ExpiresAt: expiresAt.Unix(),
		Used:      false,
		CreatedAt: now,
		PurgeAt:   expiresAt.Add(24 * time.Hour).Unix(),
	}
	if err := m.store.Put(ctx, rec); err != nil {
		return "", err
	}
	return code, nil
}

// Verify consumes the newest unused, unexpired matching record. Every failure
// mode (no record, wrong code, expired, already used, lost consume race)
// collapses into ErrInvalidOTP so callers cannot tell which check failed.
func (m *manager) Verify(ctx context.Context, mobile, code string) error {
	rec, err := m.store.Newest(ctx, mobile, code, time.Now())
	if err != nil {
		return fmt.Errorf("otp lookup: %w", domain.ErrInvalidOTP)
	}
	if err := m.store.MarkUsed(ctx, rec.OTPID); err != nil {
		return fmt.Errorf("otp consume: %w", domain.ErrInvalidOTP)
	}
	return nil
}

// Deliver hands the code to the SMS channel. Fire-and-forget: a delivery
// failure is logged but never surfaced, and the record stays valid.
func (m *manager) Deliver(ctx context.Context, mobile, code string) {
	msg := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(m.ttl.Minutes()))
	if err := m.sender.SendSMS(ctx, mobile, msg); err != nil {
		slog.Warn("failed to deliver OTP", "mobile", mobile, "err", err)
	}
}

// generateCode draws a uniformly random fixed-width numeric code from
// crypto/rand.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
