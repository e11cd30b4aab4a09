package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/suqapp/backend/internal/application/auth"
	"github.com/suqapp/backend/internal/domain"
	jwtinfra "github.com/suqapp/backend/internal/infrastructure/jwt"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthService) Login(ctx context.Context, req domain.LoginRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*auth.LoginResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*jwtinfra.Pair, error) {
	args := m.Called(ctx, refreshToken)
	if p, _ := args.Get(0).(*jwtinfra.Pair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) ResendOTP(ctx context.Context, mobile string) error {
	return m.Called(ctx, mobile).Error(0)
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) MessageEnvelope {
	t.Helper()
	var env MessageEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

// --- Signup ---

func TestSignupHandler_Created(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, mock.AnythingOfType("domain.SignupRequest")).
		Return(&domain.User{UserID: "u1", Mobile: "+251911223344", FirstName: "Abel", LastName: "Tesfaye"}, nil)

	rec := postJSON(t, NewAuthHandler(svc).Signup, "/v1/auth/signup", map[string]string{
		"firstname": "Abel",
		"lastname":  "Tesfaye",
		"mobile":    "911223344",
		"pin":       "246810",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var env UserEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NotNil(t, env.User)
	assert.Equal(t, "u1", env.User.UserID)
	assert.Equal(t, "+251911223344", env.User.Mobile)
}

func TestSignupHandler_ValidationRejects(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc).Signup

	for name, body := range map[string]map[string]string{
		"missing firstname": {"lastname": "Tesfaye", "mobile": "911223344", "pin": "246810"},
		"bad mobile":        {"firstname": "Abel", "lastname": "Tesfaye", "mobile": "12345", "pin": "246810"},
		"short pin":         {"firstname": "Abel", "lastname": "Tesfaye", "mobile": "911223344", "pin": "123"},
		"alpha pin":         {"firstname": "Abel", "lastname": "Tesfaye", "mobile": "911223344", "pin": "abcdef"},
	} {
		rec := postJSON(t, h, "/v1/auth/signup", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestSignupHandler_Conflict(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Signup", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	rec := postJSON(t, NewAuthHandler(svc).Signup, "/v1/auth/signup", map[string]string{
		"firstname": "Abel",
		"lastname":  "Tesfaye",
		"mobile":    "911223344",
		"pin":       "246810",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict", decodeEnvelope(t, rec).Code)
}

// --- VerifyOTP ---

func TestVerifyOTPHandler_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, mock.AnythingOfType("domain.VerifyOTPRequest")).Return(nil)

	rec := postJSON(t, NewAuthHandler(svc).VerifyOTP, "/v1/auth/verify-otp", map[string]string{
		"mobile": "911223344",
		"otp":    "12345",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "account verified", decodeEnvelope(t, rec).Message)
}

func TestVerifyOTPHandler_InvalidCode(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(domain.ErrInvalidOTP)

	rec := postJSON(t, NewAuthHandler(svc).VerifyOTP, "/v1/auth/verify-otp", map[string]string{
		"mobile": "911223344",
		"otp":    "00000",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidOrExpiredOtp", decodeEnvelope(t, rec).Code)
}

func TestVerifyOTPHandler_BadOTPShape(t *testing.T) {
	svc := &mockAuthService{}
	rec := postJSON(t, NewAuthHandler(svc).VerifyOTP, "/v1/auth/verify-otp", map[string]string{
		"mobile": "911223344",
		"otp":    "1234", // must be 5 digits
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything)
}

// --- Login ---

func TestLoginHandler_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Login", mock.Anything, mock.AnythingOfType("domain.LoginRequest")).Return(&auth.LoginResult{
		User:   &domain.User{UserID: "u1", Mobile: "+251911223344"},
		Tokens: &jwtinfra.Pair{AccessToken: "at", RefreshToken: "rt"},
	}, nil)

	rec := postJSON(t, NewAuthHandler(svc).Login, "/v1/auth/login", map[string]string{
		"mobile": "911223344",
		"pin":    "246810",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var env AuthEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "at", env.AccessToken)
	assert.Equal(t, "rt", env.RefreshToken)
	require.NotNil(t, env.User)
	assert.Equal(t, "u1", env.User.UserID)
}

func TestLoginHandler_ErrorMapping(t *testing.T) {
	for _, tc := range []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NotFound"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "InvalidCredentials"},
		{domain.ErrRequiresVerification, http.StatusForbidden, "RequiresVerification"},
		{domain.ErrDeactivated, http.StatusForbidden, "AccountDeactivated"},
		{domain.ErrTooManyRequests, http.StatusTooManyRequests, "TooManyRequests"},
	} {
		svc := &mockAuthService{}
		svc.On("Login", mock.Anything, mock.Anything).Return(nil, tc.err)

		rec := postJSON(t, NewAuthHandler(svc).Login, "/v1/auth/login", map[string]string{
			"mobile": "911223344",
			"pin":    "246810",
		})

		assert.Equal(t, tc.status, rec.Code, tc.code)
		assert.Equal(t, tc.code, decodeEnvelope(t, rec).Code, tc.code)
	}
}

// --- Refresh ---

func TestRefreshHandler_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Refresh", mock.Anything, "old-rt").Return(&jwtinfra.Pair{AccessToken: "new-at", RefreshToken: "new-rt"}, nil)

	rec := postJSON(t, NewAuthHandler(svc).Refresh, "/v1/auth/refresh-token", map[string]string{
		"refreshToken": "old-rt",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var env AuthEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "new-at", env.AccessToken)
	assert.Equal(t, "new-rt", env.RefreshToken)
	assert.Nil(t, env.User)
}

func TestRefreshHandler_MissingToken(t *testing.T) {
	svc := &mockAuthService{}
	rec := postJSON(t, NewAuthHandler(svc).Refresh, "/v1/auth/refresh-token", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestRefreshHandler_Invalid(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("Refresh", mock.Anything, "bad").Return(nil, domain.ErrInvalidRefreshToken)

	rec := postJSON(t, NewAuthHandler(svc).Refresh, "/v1/auth/refresh-token", map[string]string{
		"refreshToken": "bad",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidRefreshToken", decodeEnvelope(t, rec).Code)
}

// --- ResendOTP ---

func TestResendOTPHandler_OK(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("ResendOTP", mock.Anything, "911223344").Return(nil)

	rec := postJSON(t, NewAuthHandler(svc).ResendOTP, "/v1/auth/resend-otp", map[string]string{
		"mobile": "911223344",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "otp sent", decodeEnvelope(t, rec).Message)
}

func TestResendOTPHandler_CapReached(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("ResendOTP", mock.Anything, "911223344").Return(domain.ErrTooManyRequests)

	rec := postJSON(t, NewAuthHandler(svc).ResendOTP, "/v1/auth/resend-otp", map[string]string{
		"mobile": "911223344",
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TooManyRequests", decodeEnvelope(t, rec).Code)
}

// --- body decoding ---

func TestHandlers_RejectMalformedJSON(t *testing.T) {
	svc := &mockAuthService{}
	h := NewAuthHandler(svc)

	for name, fn := range map[string]http.HandlerFunc{
		"signup":     h.Signup,
		"verify-otp": h.VerifyOTP,
		"login":      h.Login,
		"refresh":    h.Refresh,
		"resend-otp": h.ResendOTP,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		fn(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}
