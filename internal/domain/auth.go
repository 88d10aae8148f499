package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrCannotRegister     = errors.New("can't register right now")
	ErrDuplicateUser      = errors.New("user with this email, phone number or CIN already exists")
	ErrRoleNotFound       = errors.New("role not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid OTP code")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrResetTokenMismatch = errors.New("reset token does not belong to this user")
	ErrTokenRequired      = errors.New("token is required")
	ErrInvalidAgentStatus = errors.New("invalid agent status")
)

// DefaultRoleName is the role every self-registered account starts with.
const DefaultRoleName = "User"

type User struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Password    string // bcrypt hash
	PhoneNumber string
	City        string
	CINNumber   string
	RoleID      string
	VerifiedAt  *time.Time // nil until the email link is followed
	Agents      []Agent
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (u *User) IsVerified() bool {
	return u.VerifiedAt != nil
}

type Role struct {
	ID          string
	Name        string
	Permissions []string
}

// ResetPasswordIdentifier is embedded in reset tokens and checked on completion.
func ResetPasswordIdentifier(userID string) string {
	return "password-reset-" + userID
}
