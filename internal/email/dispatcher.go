package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/mssola/user_agent"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	subjectVerify = "Verify Your Email"
	subjectOTP    = "Verify Your Device"
	subjectReset  = "Reset Password Email"

	otpExpiryMinutes = 5
)

// Dispatcher renders the account emails and hands them to a Sender.
type Dispatcher struct {
	sender      Sender
	backendURL  string
	frontendURL string
}

// NewDispatcher builds links against backendURL (account verification) and
// frontendURL (password reset page).
func NewDispatcher(sender Sender, backendURL, frontendURL string) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		backendURL:  strings.TrimRight(backendURL, "/"),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (d *Dispatcher) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := d.backendURL + "/auth/verify-account?token=" + url.QueryEscape(token)
	return d.send(ctx, to, subjectVerify, "verification.html", map[string]any{
		"Name":            name,
		"VerificationURL": link,
	})
}

// SendOTPEmail mails the device code. deviceIdentity is the raw user agent the
// login came from; it is rendered as a short device description.
func (d *Dispatcher) SendOTPEmail(ctx context.Context, to, name, code, deviceIdentity string) error {
	return d.send(ctx, to, subjectOTP, "otp.html", map[string]any{
		"Name":          name,
		"OTPCode":       code,
		"ExpiryMinutes": otpExpiryMinutes,
		"Device":        DescribeDevice(deviceIdentity),
	})
}

func (d *Dispatcher) SendResetPasswordEmail(ctx context.Context, to, name, token string) error {
	link := d.frontendURL + "/auth/reset-password/" + url.PathEscape(token)
	return d.send(ctx, to, subjectReset, "reset_password.html", map[string]any{
		"Name":     name,
		"ResetURL": link,
	})
}

func (d *Dispatcher) send(ctx context.Context, to, subject, tmpl string, data map[string]any) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}
	if err := d.sender.Send(ctx, to, subject, body.String()); err != nil {
		return fmt.Errorf("send %q email: %w", subject, err)
	}
	return nil
}

// DescribeDevice turns a user-agent string into "Chrome 120.0 on Linux x86_64".
func DescribeDevice(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown device"
	}

	ua := user_agent.New(userAgent)
	browser, version := ua.Browser()

	desc := browser
	if desc != "" && version != "" {
		desc += " " + version
	}
	if osName := ua.OS(); osName != "" {
		if desc != "" {
			desc += " on "
		}
		desc += osName
	}
	if ua.Mobile() {
		desc += " (mobile)"
	}
	if desc == "" {
		return "Unknown device"
	}
	return desc
}
