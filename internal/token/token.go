// Package token signs and verifies the stateless HS256 tokens handed out by the
// auth flows. Nothing is stored server-side: a token is valid exactly when its
// signature checks out and it has not expired.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetimes of the tokens issued by the auth flows.
const (
	VerificationTTL = 300 * time.Second
	OTPTTL          = 300 * time.Second
	ResetTTL        = 300 * time.Second
	SessionTTL      = 3 * 24 * time.Hour
)

var (
	ErrMissingKey = errors.New("token signing key is not configured")
	ErrExpired    = errors.New("token has expired")
	ErrInvalid    = errors.New("invalid token")
	ErrWrongKind  = errors.New("token issued for another flow")
)

// Kind tells the flows apart. Each guard accepts exactly one kind, so a token
// minted for one step cannot be replayed against another.
type Kind string

const (
	KindVerification Kind = "verification"
	KindOTP          Kind = "otp"
	KindReset        Kind = "reset"
	KindSession      Kind = "session"
)

// Claims is the payload carried by every token. Which optional fields are set
// depends on the flow: OTPCode for device challenges, Identifier for password resets.
type Claims struct {
	UserID     string `json:"user_id"`
	Kind       Kind   `json:"typ"`
	OTPCode    string `json:"otp_code,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	key []byte
	now func() time.Time
}

func NewIssuer(key []byte) *Issuer {
	return &Issuer{key: key, now: time.Now}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	return &Issuer{key: i.key, now: now}
}

// Issue signs claims with an expiry ttl from now. Registered claims set by the
// caller are replaced.
func (i *Issuer) Issue(claims Claims, ttl time.Duration) (string, error) {
	if len(i.key) == 0 {
		return "", ErrMissingKey
	}

	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the decoded claims.
// Kind is not checked here; the HTTP guards and flows use VerifyKind.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	if len(i.key) == 0 {
		return nil, ErrMissingKey
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return claims, nil
}

// VerifyKind is Verify plus a check that the token was issued for kind.
func (i *Issuer) VerifyKind(raw string, kind Kind) (*Claims, error) {
	claims, err := i.Verify(raw)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: %w: issued for %q, want %q", ErrInvalid, ErrWrongKind, claims.Kind, kind)
	}
	return claims, nil
}
