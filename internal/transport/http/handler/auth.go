package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/pharmacy-auth/internal/transport/http/middleware"
	"github.com/ErlanBelekov/pharmacy-auth/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput) (string, error)
	VerifyAccount(ctx context.Context, rawToken string) (string, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
	VerifyDevice(ctx context.Context, in usecase.VerifyDeviceInput) (*usecase.LoginResult, error)
	ResendOTP(ctx context.Context, userID, deviceIdentity string) (*usecase.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, in usecase.ResetPasswordInput) (string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler wires the auth endpoints. When frontendURL is set, a
// successful account verification redirects to its login page.
func NewAuthHandler(authUsecase authUsecaser, frontendURL string, logger *slog.Logger) *AuthHandler {
	registerValidators()
	return &AuthHandler{
		authUsecase: authUsecase,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger.With("component", "auth_handler"),
	}
}

type registerRequest struct {
	FirstName   string `json:"first_name"   binding:"required,min=3"`
	LastName    string `json:"last_name"    binding:"required,min=3"`
	Email       string `json:"email"        binding:"required,email"`
	Password    string `json:"password"     binding:"required,min=8"`
	PhoneNumber string `json:"phone_number" binding:"required,min=10,max=15,phone_ma"`
	City        string `json:"city"         binding:"required"`
	CINNumber   string `json:"cin_number"   binding:"required,cin"`
}

type loginRequest struct {
	Email      string `json:"email"       binding:"required,email"`
	Password   string `json:"password"    binding:"required,min=8"`
	RememberMe bool   `json:"remember_me"`
}

type verifyDeviceRequest struct {
	OTPCode    string `json:"otp_code"   binding:"required,len=6,numeric"`
	RememberMe *bool  `json:"rememberMe" binding:"required"`
}

// resendOTPRequest is optional; the user comes from the challenge token.
type resendOTPRequest struct {
	UserID string `json:"user_id" binding:"omitempty,uuid"`
}

type askResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password        string `json:"password"        binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type loginResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Token      string `json:"token"`
	WithOTP    bool   `json:"withOTP"`
	UserID     string `json:"user_id,omitempty"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
		CINNumber:   req.CINNumber,
	})
	if err != nil {
		h.fail(c, err, "register", "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"statusCode": http.StatusCreated, "message": msg})
}

// GET /auth/verify-account?token=<raw>
func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	msg, err := h.authUsecase.VerifyAccount(c.Request.Context(), c.Query("token"))
	if err != nil {
		h.fail(c, err, "verify account", errUserNotFound)
		return
	}

	if h.frontendURL != "" {
		c.Redirect(http.StatusFound, h.frontendURL+"/auth/login")
		return
	}
	c.JSON(http.StatusOK, gin.H{"statusCode": http.StatusOK, "message": msg})
}

// POST /auth/login
// 201 when an OTP challenge was issued, 202 otherwise.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authUsecase.Login(c.Request.Context(), usecase.LoginInput{
		Email:          req.Email,
		Password:       req.Password,
		RememberMe:     req.RememberMe,
		DeviceIdentity: c.Request.UserAgent(),
	})
	if err != nil {
		h.fail(c, err, "login", errUserDoesNotExist)
		return
	}

	status := http.StatusAccepted
	if res.WithOTP {
		status = http.StatusCreated
	}
	c.JSON(status, loginResponse{
		StatusCode: status,
		Message:    res.Message,
		Token:      res.Token,
		WithOTP:    res.WithOTP,
		UserID:     res.UserID,
	})
}

// POST /auth/verify-device (Bearer OTP challenge token)
func (h *AuthHandler) VerifyDevice(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, errInvalidToken)
		return
	}

	var req verifyDeviceRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authUsecase.VerifyDevice(c.Request.Context(), usecase.VerifyDeviceInput{
		UserID:         claims.UserID,
		ExpectedOTP:    claims.OTPCode,
		SubmittedOTP:   req.OTPCode,
		RememberMe:     *req.RememberMe,
		DeviceIdentity: c.Request.UserAgent(),
	})
	if err != nil {
		h.fail(c, err, "verify device", errUserNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statusCode": http.StatusOK, "message": res.Message, "token": res.Token})
}

// POST /auth/resend/otp (Bearer OTP challenge token)
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, errInvalidToken)
		return
	}

	var req resendOTPRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	if req.UserID != "" && req.UserID != claims.UserID {
		respondError(c, http.StatusUnauthorized, errInvalidToken)
		return
	}

	res, err := h.authUsecase.ResendOTP(c.Request.Context(), claims.UserID, c.Request.UserAgent())
	if err != nil {
		h.fail(c, err, "resend otp", errUserDoesNotExist)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statusCode": http.StatusOK, "message": res.Message, "token": res.Token})
}

// POST /auth/ask/reset/password
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req askResetRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.authUsecase.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err, "request password reset", errUserDoesNotExist)
		return
	}

	c.JSON(http.StatusOK, gin.H{"statusCode": http.StatusOK, "message": msg})
}

// POST /auth/reset/password (Bearer reset token)
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, errInvalidToken)
		return
	}

	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.authUsecase.ResetPassword(c.Request.Context(), usecase.ResetPasswordInput{
		UserID:     claims.UserID,
		Identifier: claims.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		h.fail(c, err, "reset password", errUserDoesNotExist)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"statusCode": http.StatusAccepted, "message": msg})
}

func (h *AuthHandler) fail(c *gin.Context, err error, op, notFound string) {
	status, msg, ok := statusFor(err, notFound)
	if !ok {
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
	}
	respondError(c, status, msg)
}
