package domain

import "time"

type User struct {
	UserID      string     `json:"id" dynamodbav:"user_id"`
	Mobile      string     `json:"mobile" dynamodbav:"mobile"`
	FirstName   string     `json:"first_name" dynamodbav:"first_name"`
	MiddleName  *string    `json:"middle_name,omitempty" dynamodbav:"middle_name"`
	LastName    string     `json:"last_name" dynamodbav:"last_name"`
	PINHash     string     `json:"-" dynamodbav:"pin_hash"`
	Verified    bool       `json:"verified" dynamodbav:"verified"`
	Enable      bool       `json:"enable" dynamodbav:"enable"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" dynamodbav:"last_login_at"`
	CreatedAt   time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type SignupRequest struct {
	FirstName  string  `json:"firstname" validate:"required"`
	MiddleName *string `json:"middlename"`
	LastName   string  `json:"lastname" validate:"required"`
	Mobile     string  `json:"mobile" validate:"required,localmobile"`
	PIN        string  `json:"pin" validate:"required,numeric,min=4,max=8"`
}

type VerifyOTPRequest struct {
	Mobile string `json:"mobile" validate:"required,localmobile"`
	OTP    string `json:"otp" validate:"required,numeric,len=5"`
}

type LoginRequest struct {
	Mobile string `json:"mobile" validate:"required,localmobile"`
	PIN    string `json:"pin" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ResendOTPRequest struct {
	Mobile string `json:"mobile" validate:"required,localmobile"`
}
