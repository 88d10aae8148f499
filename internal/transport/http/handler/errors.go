package handler

import (
	"errors"
	"net/http"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errInvalidBody        = "Invalid request body"
	errValidationFailed   = "Validation failed"
	errUserExists         = "User already exists"
	errCannotRegister     = "Can't register right now"
	errUserNotFound       = "User Not Found"
	errUserDoesNotExist   = "User doesn't exist"
	errInvalidCredentials = "Invalid credentials"
	errInvalidOTP         = "Invalid OTP code"
	errTokenRequired      = "Token is required"
	errTokenExpired       = "Token has expired"
	errInvalidToken       = "Invalid token"
	errInvalidAgentStatus = "Invalid agent status"
)

// statusFor maps a usecase error to a response. notFound is the message used
// for ErrUserNotFound, which differs between flows; flows that never look a
// user up pass "" and get a 500 instead. ok is false for errors that should be
// logged and answered with a 500.
func statusFor(err error, notFound string) (status int, message string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errUserExists, true
	case errors.Is(err, domain.ErrCannotRegister):
		return http.StatusConflict, errCannotRegister, true
	case errors.Is(err, domain.ErrUserNotFound) && notFound != "":
		return http.StatusNotFound, notFound, true
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, errInvalidCredentials, true
	case errors.Is(err, domain.ErrInvalidOTP):
		return http.StatusBadRequest, errInvalidOTP, true
	case errors.Is(err, domain.ErrTokenRequired):
		return http.StatusBadRequest, errTokenRequired, true
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, errTokenExpired, true
	case errors.Is(err, domain.ErrTokenInvalid):
		return http.StatusUnauthorized, errInvalidToken, true
	case errors.Is(err, domain.ErrResetTokenMismatch):
		return http.StatusBadRequest, errInvalidToken, true
	case errors.Is(err, domain.ErrInvalidAgentStatus):
		return http.StatusInternalServerError, errInvalidAgentStatus, false
	default:
		return http.StatusInternalServerError, errInternalServer, false
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"statusCode": status, "message": message})
}
