package http

import (
	"github.com/suqapp/backend/internal/infrastructure/dynamo"
	jwtinfra "github.com/suqapp/backend/internal/infrastructure/jwt"
	"github.com/suqapp/backend/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo  *dynamo.UserRepo
	OTPRepo   *dynamo.OTPRepo
	SMSSender sns.SMSSender
	Issuer    *jwtinfra.Issuer
}
