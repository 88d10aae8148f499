package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
	"github.com/ErlanBelekov/pharmacy-auth/internal/metrics"
	"github.com/ErlanBelekov/pharmacy-auth/internal/repository"
	"github.com/ErlanBelekov/pharmacy-auth/internal/token"
)

const (
	msgRegistered       = "Register Success and Verification sent"
	msgAccountVerified  = "Account Verified Successfully"
	msgAccountNotVerify = "Account not verified, we send an email to verify you email"
	msgNewDevice        = "OTP sent to your email. Please verify your new device."
	msgUnverifiedDevice = "OTP sent to your email. Please verify your device."
	msgLoginSuccessful  = "Login successful"
	msgOTPResent        = "OTP code sent"
	msgResetRequested   = "Reset password email sent"
	msgPasswordReset    = "Password reset successfully"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) (bool, error)
}

type OTPGenerator interface {
	Generate() (string, error)
}

type TokenIssuer interface {
	Issue(claims token.Claims, ttl time.Duration) (string, error)
	VerifyKind(raw string, kind token.Kind) (*token.Claims, error)
}

// Notifier delivers the account emails. A delivery error aborts the calling flow.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendOTPEmail(ctx context.Context, to, name, code, deviceIdentity string) error
	SendResetPasswordEmail(ctx context.Context, to, name, token string) error
}

type AuthUsecase struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	hasher   PasswordHasher
	otp      OTPGenerator
	tokens   TokenIssuer
	notifier Notifier
	now      func() time.Time
}

func NewAuthUsecase(
	users repository.UserRepository,
	roles repository.RoleRepository,
	hasher PasswordHasher,
	otp OTPGenerator,
	tokens TokenIssuer,
	notifier Notifier,
) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		otp:      otp,
		tokens:   tokens,
		notifier: notifier,
		now:      time.Now,
	}
}

type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
	City        string
	CINNumber   string
}

// LoginResult is returned by Login and VerifyDevice. UserID is only set while an
// OTP challenge is pending.
type LoginResult struct {
	Message string
	Token   string
	WithOTP bool
	UserID  string
}

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	// DeviceIdentity is the client's User-Agent, taken as-is from the transport.
	DeviceIdentity string
}

type VerifyDeviceInput struct {
	// UserID and ExpectedOTP come from the signed OTP challenge token.
	UserID      string
	ExpectedOTP string

	SubmittedOTP   string
	RememberMe     bool
	DeviceIdentity string
}

type ResetPasswordInput struct {
	// UserID and Identifier come from the signed reset token.
	UserID     string
	Identifier string
	Password   string
}

// Register creates an unverified account and mails the verification link.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (string, error) {
	_, err := u.users.FindByEmailOrPhoneOrCIN(ctx, in.Email, in.PhoneNumber, in.CINNumber)
	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return "", domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}

	role, err := u.roles.FindByName(ctx, domain.DefaultRoleName)
	if err != nil {
		return "", fmt.Errorf("find default role: %w", err)
	}

	user, err := u.users.Create(ctx, &domain.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Password:    hashed,
		PhoneNumber: in.PhoneNumber,
		City:        in.City,
		CINNumber:   in.CINNumber,
		RoleID:      role.ID,
		Agents:      []domain.Agent{},
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			// lost a race against a concurrent registration
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return "", domain.ErrCannotRegister
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	if err := u.sendVerification(ctx, user); err != nil {
		return "", err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return msgRegistered, nil
}

// VerifyAccount confirms the email address carried by a verification token.
// Verifying an already verified account just moves verified_at forward.
func (u *AuthUsecase) VerifyAccount(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", domain.ErrTokenRequired
	}

	claims, err := u.verifyToken(rawToken, token.KindVerification)
	if err != nil {
		return "", err
	}

	user, err := u.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	now := u.now()
	user.VerifiedAt = &now
	if err := u.users.Save(ctx, user); err != nil {
		return "", fmt.Errorf("save user: %w", err)
	}
	return msgAccountVerified, nil
}

// Login checks the password, then either re-sends the verification email,
// challenges the device with an OTP, or issues a session token.
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := u.hasher.Compare(in.Password, user.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsVerified() {
		metrics.LoginsTotal.WithLabelValues("unverified").Inc()
		tok, err := u.tokens.Issue(token.Claims{UserID: user.ID, Kind: token.KindVerification}, token.VerificationTTL)
		if err != nil {
			return nil, fmt.Errorf("issue verification token: %w", err)
		}
		if err := u.notifier.SendVerificationEmail(ctx, user.Email, user.FirstName, tok); err != nil {
			return nil, err
		}
		return &LoginResult{Message: msgAccountNotVerify, Token: tok}, nil
	}

	status := domain.ClassifyAgent(user.Agents, in.DeviceIdentity)
	switch status {
	case domain.AgentNew:
		metrics.LoginsTotal.WithLabelValues("new_agent").Inc()
		// Trust is only granted once the OTP is proven, so remember_me is not applied here.
		user.Agents = append(user.Agents, domain.Agent{
			Name:      in.DeviceIdentity,
			IsCurrent: false,
			AddedAt:   u.now(),
		})
		if err := u.users.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("save new agent: %w", err)
		}
		return u.challengeDevice(ctx, user, in.DeviceIdentity, msgNewDevice, "new_agent")
	case domain.AgentNotVerified:
		metrics.LoginsTotal.WithLabelValues("not_verified_agent").Inc()
		return u.challengeDevice(ctx, user, in.DeviceIdentity, msgUnverifiedDevice, "not_verified_agent")
	case domain.AgentVerified:
		metrics.LoginsTotal.WithLabelValues("verified_agent").Inc()
		return u.issueSession(user.ID)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAgentStatus, status)
	}
}

// VerifyDevice completes an OTP challenge and issues a session token. With
// RememberMe the presenting device becomes trusted for future logins.
func (u *AuthUsecase) VerifyDevice(ctx context.Context, in VerifyDeviceInput) (*LoginResult, error) {
	if in.ExpectedOTP != in.SubmittedOTP {
		metrics.DeviceVerificationsTotal.WithLabelValues("invalid_otp").Inc()
		return nil, domain.ErrInvalidOTP
	}

	user, err := u.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if in.RememberMe {
		if i := domain.FindAgent(user.Agents, in.DeviceIdentity); i >= 0 {
			user.Agents[i].IsCurrent = true
		} else {
			user.Agents = append(user.Agents, domain.Agent{
				Name:      in.DeviceIdentity,
				IsCurrent: true,
				AddedAt:   u.now(),
			})
		}
		if err := u.users.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("trust agent: %w", err)
		}
		metrics.DeviceVerificationsTotal.WithLabelValues("trusted").Inc()
	} else {
		metrics.DeviceVerificationsTotal.WithLabelValues("verified").Inc()
	}

	return u.issueSession(user.ID)
}

// ResendOTP mails a fresh code for a pending challenge. Device trust is not re-evaluated.
func (u *AuthUsecase) ResendOTP(ctx context.Context, userID, deviceIdentity string) (*LoginResult, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	res, err := u.challengeDevice(ctx, user, deviceIdentity, msgOTPResent, "resend")
	if err != nil {
		return nil, err
	}
	return &LoginResult{Message: res.Message, Token: res.Token}, nil
}

// RequestPasswordReset mails a reset link bound to the user's id.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, emailAddr string) (string, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	tok, err := u.tokens.Issue(token.Claims{
		UserID:     user.ID,
		Kind:       token.KindReset,
		Identifier: domain.ResetPasswordIdentifier(user.ID),
	}, token.ResetTTL)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}

	if err := u.notifier.SendResetPasswordEmail(ctx, user.Email, user.FirstName, tok); err != nil {
		return "", err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	return msgResetRequested, nil
}

// ResetPassword replaces the password once the reset identifier matches the user.
func (u *AuthUsecase) ResetPassword(ctx context.Context, in ResetPasswordInput) (string, error) {
	user, err := u.users.FindByID(ctx, in.UserID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	if in.Identifier != domain.ResetPasswordIdentifier(user.ID) {
		metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
		return "", domain.ErrResetTokenMismatch
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return "", err
	}
	user.Password = hashed
	if err := u.users.Save(ctx, user); err != nil {
		return "", fmt.Errorf("save password: %w", err)
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return msgPasswordReset, nil
}

func (u *AuthUsecase) sendVerification(ctx context.Context, user *domain.User) error {
	tok, err := u.tokens.Issue(token.Claims{UserID: user.ID, Kind: token.KindVerification}, token.VerificationTTL)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}
	return u.notifier.SendVerificationEmail(ctx, user.Email, user.FirstName, tok)
}

func (u *AuthUsecase) challengeDevice(ctx context.Context, user *domain.User, deviceIdentity, message, reason string) (*LoginResult, error) {
	code, err := u.otp.Generate()
	if err != nil {
		return nil, err
	}

	tok, err := u.tokens.Issue(token.Claims{UserID: user.ID, Kind: token.KindOTP, OTPCode: code}, token.OTPTTL)
	if err != nil {
		return nil, fmt.Errorf("issue otp token: %w", err)
	}

	if err := u.notifier.SendOTPEmail(ctx, user.Email, user.FirstName, code, deviceIdentity); err != nil {
		return nil, err
	}

	metrics.OTPIssuedTotal.WithLabelValues(reason).Inc()
	return &LoginResult{Message: message, Token: tok, WithOTP: true, UserID: user.ID}, nil
}

func (u *AuthUsecase) issueSession(userID string) (*LoginResult, error) {
	tok, err := u.tokens.Issue(token.Claims{UserID: userID, Kind: token.KindSession}, token.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	metrics.SessionsIssuedTotal.Inc()
	return &LoginResult{Message: msgLoginSuccessful, Token: tok}, nil
}

func (u *AuthUsecase) verifyToken(raw string, kind token.Kind) (*token.Claims, error) {
	claims, err := u.tokens.VerifyKind(raw, kind)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if claims.UserID == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
