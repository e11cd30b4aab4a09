package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suqapp/backend/internal/application/otp"
	"github.com/suqapp/backend/internal/domain"
	jwtinfra "github.com/suqapp/backend/internal/infrastructure/jwt"
	"github.com/suqapp/backend/internal/pkg/id"
	"github.com/suqapp/backend/internal/pkg/phone"
	"github.com/suqapp/backend/internal/pkg/pin"
)

// UserStore is the minimal persistence interface the service requires.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByMobile(ctx context.Context, mobile string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	MarkVerified(ctx context.Context, mobile string) error
	TouchLastLogin(ctx context.Context, mobile string, at time.Time) error
}

// TokenIssuer mints and verifies token pairs.
type TokenIssuer interface {
	IssuePair(userID, mobile string) (*jwtinfra.Pair, error)
	VerifyRefresh(token string) (*jwtinfra.Claims, error)
}

type LoginResult struct {
	User   *domain.User   `json:"user"`
	Tokens *jwtinfra.Pair `json:"tokens"`
}

// Service is the server-side authentication state machine:
// Unregistered → PendingVerification → Verified, orthogonally Active/Deactivated.
type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) error
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*jwtinfra.Pair, error)
	ResendOTP(ctx context.Context, mobile string) error
}

type ServiceDeps struct {
	Users       UserStore
	OTPs        otp.Manager
	Issuer      TokenIssuer
	CountryCode string
}

type service struct {
	users       UserStore
	otps        otp.Manager
	issuer      TokenIssuer
	countryCode string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:       deps.Users,
		otps:        deps.OTPs,
		issuer:      deps.Issuer,
		countryCode: deps.CountryCode,
	}
}

// Signup creates the user in PendingVerification and sends the first OTP.
// The conditional create makes duplicate mobiles a Conflict whether the
// existing account is active or deactivated, and leaves no partial record
// behind on failure.
func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	mobile, err := phone.Canonicalize(req.Mobile, s.countryCode)
	if err != nil {
		return nil, err
	}
	hash, err := pin.Hash(req.PIN)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:     id.New(),
		Mobile:     mobile,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		PINHash:    hash,
		Verified:   false,
		Enable:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	code, err := s.otps.Issue(ctx, mobile)
	if err != nil {
		return nil, err
	}
	s.otps.Deliver(ctx, mobile, code)
	return u, nil
}

// VerifyOTP consumes the code and transitions the user to Verified. An
// unregistered mobile fails the same way as a wrong code so the endpoint
// cannot be used to probe which numbers have accounts.
func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) error {
	mobile, err := phone.Canonicalize(req.Mobile, s.countryCode)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByMobile(ctx, mobile); err != nil {
		return fmt.Errorf("verify otp: %w", domain.ErrInvalidOTP)
	}
	if err := s.otps.Verify(ctx, mobile, req.OTP); err != nil {
		return err
	}
	return s.users.MarkVerified(ctx, mobile)
}

// Login checks verification state before credentials: an unverified account
// gets a fresh OTP and RequiresVerification without the PIN ever being
// examined, forcing re-verification first.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	mobile, err := phone.Canonicalize(req.Mobile, s.countryCode)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if !u.Enable {
		return nil, fmt.Errorf("login: %w", domain.ErrDeactivated)
	}
	if !u.Verified {
		code, err := s.otps.Issue(ctx, mobile)
		if err != nil {
			return nil, err
		}
		s.otps.Deliver(ctx, mobile, code)
		return nil, fmt.Errorf("login: %w", domain.ErrRequiresVerification)
	}
	if !pin.Verify(req.PIN, u.PINHash) {
		return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}
	pair, err := s.issuer.IssuePair(u.UserID, u.Mobile)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, mobile, now); err != nil {
		slog.Warn("failed to touch last_login_at", "mobile", mobile, "err", err)
	}
	u.LastLoginAt = &now
	return &LoginResult{User: u, Tokens: pair}, nil
}

// Refresh rotates the token pair. Any verification failure, including a user
// that no longer resolves or is deactivated, collapses into
// ErrInvalidRefreshToken. The previous refresh token stays valid until its
// natural expiry (stateless tokens, no revocation list).
func (s *service) Refresh(ctx context.Context, refreshToken string) (*jwtinfra.Pair, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", domain.ErrInvalidRefreshToken)
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", domain.ErrInvalidRefreshToken)
	}
	if !u.Enable {
		return nil, fmt.Errorf("refresh: %w", domain.ErrInvalidRefreshToken)
	}
	return s.issuer.IssuePair(u.UserID, u.Mobile)
}

// ResendOTP issues and delivers a new code. Prior codes stay valid; the
// per-mobile issuance cap in the OTP manager bounds how often this can fire.
func (s *service) ResendOTP(ctx context.Context, rawMobile string) error {
	mobile, err := phone.Canonicalize(rawMobile, s.countryCode)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByMobile(ctx, mobile); err != nil {
		return err
	}
	code, err := s.otps.Issue(ctx, mobile)
	if err != nil {
		return err
	}
	s.otps.Deliver(ctx, mobile, code)
	return nil
}
