package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/suqapp/backend/internal/config"
	"github.com/suqapp/backend/internal/domain"
)

const (
	typAccess  = "access"
	typRefresh = "refresh"
)

// Claims holds the JWT payload fields shared by both token classes. The Typ
// discriminator keeps a refresh token from ever verifying as an access token
// even if the signing secrets were (mis)configured identically.
type Claims struct {
	UserID string `json:"user_id"`
	Mobile string `json:"mobile"`
	Typ    string `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is a freshly minted access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer signs and verifies HS256 token pairs. Access and refresh tokens use
// distinct secrets so compromise of one class cannot forge the other.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(cfg *config.Config) (*Issuer, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, errors.New("access and refresh token secrets are required")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	return &Issuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
	}, nil
}

// IssuePair mints an access/refresh pair carrying the same identity claims.
func (i *Issuer) IssuePair(userID, mobile string) (*Pair, error) {
	access, err := i.sign(userID, mobile, typAccess, i.accessSecret, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(userID, mobile, typRefresh, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess validates an access token. Expiry is surfaced as
// domain.ErrTokenExpired so the guard can report it distinctly; every other
// failure collapses into domain.ErrUnauthorized.
func (i *Issuer) VerifyAccess(token string) (*Claims, error) {
	return i.verify(token, typAccess, i.accessSecret)
}

// VerifyRefresh validates a refresh token.
func (i *Issuer) VerifyRefresh(token string) (*Claims, error) {
	return i.verify(token, typRefresh, i.refreshSecret)
}

func (i *Issuer) sign(userID, mobile, typ string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Mobile: mobile,
		Typ:    typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (i *Issuer) verify(tokenStr, wantTyp string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s token expired: %w", wantTyp, domain.ErrTokenExpired)
		}
		return nil, fmt.Errorf("parse %s token: %w", wantTyp, domain.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Typ != wantTyp {
		return nil, fmt.Errorf("invalid %s token claims: %w", wantTyp, domain.ErrUnauthorized)
	}
	return claims, nil
}
