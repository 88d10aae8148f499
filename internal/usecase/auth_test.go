package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
	"github.com/ErlanBelekov/pharmacy-auth/internal/token"
	"github.com/ErlanBelekov/pharmacy-auth/internal/usecase"
)

// ---- helpers ----

const (
	testJWTKey  = "test-jwt-secret-at-least-32-chars!!"
	testOTP     = "482913"
	testPass    = "correct-pass"
	chromeAgent = "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0.0.0 Safari/537.36"
	phoneAgent  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148"
)

var testIssuer = token.NewIssuer([]byte(testJWTKey))

type env struct {
	uc       *usecase.AuthUsecase
	repo     *memUserRepo
	notifier *recordingNotifier
}

func newEnv(users ...*domain.User) *env {
	repo := newMemUserRepo(users...)
	notifier := &recordingNotifier{}
	uc := usecase.NewAuthUsecase(repo, &fakeRoleRepo{}, plainHasher{}, &fixedOTP{code: testOTP}, testIssuer, notifier)
	return &env{uc: uc, repo: repo, notifier: notifier}
}

func verifiedUser(agents ...domain.Agent) *domain.User {
	verifiedAt := time.Now().Add(-24 * time.Hour)
	return &domain.User{
		ID:          "user-v",
		FirstName:   "Amina",
		LastName:    "Alaoui",
		Email:       "amina@example.ma",
		Password:    "hashed:" + testPass,
		PhoneNumber: "0612345678",
		City:        "Rabat",
		CINNumber:   "AB123456",
		RoleID:      "role-user",
		VerifiedAt:  &verifiedAt,
		Agents:      agents,
	}
}

func registerInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		FirstName:   "Youssef",
		LastName:    "Benali",
		Email:       "youssef@example.ma",
		Password:    testPass,
		PhoneNumber: "0698765432",
		City:        "Fes",
		CINNumber:   "CD654321",
	}
}

func mustVerify(t *testing.T, raw string, kind token.Kind) *token.Claims {
	t.Helper()
	claims, err := testIssuer.VerifyKind(raw, kind)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	return claims
}

// ---- Register ----

func TestRegister_NewUser_CreatesUnverifiedUserAndMailsLink(t *testing.T) {
	e := newEnv()

	msg, err := e.uc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "Register Success and Verification sent" {
		t.Errorf("message = %q", msg)
	}
	if e.repo.count() != 1 {
		t.Fatalf("users = %d, want 1", e.repo.count())
	}

	created := e.repo.get("user-1")
	if created.VerifiedAt != nil {
		t.Error("new user must not be verified")
	}
	if created.Password != "hashed:"+testPass {
		t.Errorf("stored password %q is not the hash", created.Password)
	}
	if created.RoleID != "role-user" {
		t.Errorf("role = %q, want role-user", created.RoleID)
	}

	mail, ok := e.notifier.last("verify")
	if !ok {
		t.Fatal("no verification email sent")
	}
	if mail.to != "youssef@example.ma" || mail.name != "Youssef" {
		t.Errorf("mail sent to %q (%q)", mail.to, mail.name)
	}
	if claims := mustVerify(t, mail.value, token.KindVerification); claims.UserID != "user-1" {
		t.Errorf("token user_id = %q, want user-1", claims.UserID)
	}
}

func TestRegister_ThenLogin_ReachesNotVerifiedBranch(t *testing.T) {
	e := newEnv()
	in := registerInput()
	if _, err := e.uc.Register(context.Background(), in); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: in.Email, Password: in.Password, DeviceIdentity: chromeAgent,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.WithOTP || res.UserID != "" {
		t.Errorf("got withOTP=%v user_id=%q, want false and empty", res.WithOTP, res.UserID)
	}
	if res.Message != "Account not verified, we send an email to verify you email" {
		t.Errorf("message = %q", res.Message)
	}
	if mustVerify(t, res.Token, token.KindVerification).UserID != "user-1" {
		t.Error("returned token is not a verification token for the user")
	}
	if got := e.notifier.countKind("verify"); got != 2 {
		t.Errorf("verification emails = %d, want 2", got)
	}
	if len(e.repo.get("user-1").Agents) != 0 {
		t.Error("unverified login must not record agents")
	}
}

func TestRegister_CollidingIdentity_ReturnsErrUserExists(t *testing.T) {
	existing := verifiedUser()

	cases := map[string]func(in *usecase.RegisterInput){
		"email": func(in *usecase.RegisterInput) { in.Email = existing.Email },
		"phone": func(in *usecase.RegisterInput) { in.PhoneNumber = existing.PhoneNumber },
		"cin":   func(in *usecase.RegisterInput) { in.CINNumber = existing.CINNumber },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEnv(existing)
			in := registerInput()
			mutate(&in)

			_, err := e.uc.Register(context.Background(), in)
			if !errors.Is(err, domain.ErrUserExists) {
				t.Fatalf("want ErrUserExists, got %v", err)
			}
			if e.repo.count() != 1 {
				t.Errorf("users = %d, want 1 (no new record)", e.repo.count())
			}
			if len(e.notifier.sent) != 0 {
				t.Error("no email should be sent")
			}
		})
	}
}

func TestRegister_CreateLosesRace_ReturnsErrCannotRegister(t *testing.T) {
	e := newEnv()
	e.repo.createErr = domain.ErrDuplicateUser

	_, err := e.uc.Register(context.Background(), registerInput())
	if !errors.Is(err, domain.ErrCannotRegister) {
		t.Errorf("want ErrCannotRegister, got %v", err)
	}
}

func TestRegister_RoleLookupError_Propagates(t *testing.T) {
	repo := newMemUserRepo()
	roles := &fakeRoleRepo{findByName: func(_ context.Context, _ string) (*domain.Role, error) {
		return nil, domain.ErrRoleNotFound
	}}
	uc := usecase.NewAuthUsecase(repo, roles, plainHasher{}, &fixedOTP{code: testOTP}, testIssuer, &recordingNotifier{})

	_, err := uc.Register(context.Background(), registerInput())
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Errorf("want wrapped ErrRoleNotFound, got %v", err)
	}
	if repo.count() != 0 {
		t.Error("user must not be created without a role")
	}
}

func TestRegister_EmailError_PropagatesAndKeepsUser(t *testing.T) {
	e := newEnv()
	sendErr := errors.New("smtp unavailable")
	e.notifier.err = sendErr

	_, err := e.uc.Register(context.Background(), registerInput())
	if !errors.Is(err, sendErr) {
		t.Fatalf("want wrapped sendErr, got %v", err)
	}
	if e.repo.count() != 1 {
		t.Error("created user is not rolled back on mail failure")
	}
}

// ---- VerifyAccount ----

func TestVerifyAccount_EmptyToken_ReturnsErrTokenRequired(t *testing.T) {
	_, err := newEnv().uc.VerifyAccount(context.Background(), "")
	if !errors.Is(err, domain.ErrTokenRequired) {
		t.Errorf("want ErrTokenRequired, got %v", err)
	}
}

func TestVerifyAccount_BadToken_ReturnsErrTokenInvalid(t *testing.T) {
	_, err := newEnv().uc.VerifyAccount(context.Background(), "not.a.jwt")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyAccount_ExpiredToken_ReturnsErrTokenExpired(t *testing.T) {
	past := testIssuer.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	raw, err := past.Issue(token.Claims{UserID: "user-v", Kind: token.KindVerification}, token.VerificationTTL)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = newEnv(verifiedUser()).uc.VerifyAccount(context.Background(), raw)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("want ErrTokenExpired, got %v", err)
	}
}

func TestVerifyAccount_NonVerificationToken_ReturnsErrTokenInvalid(t *testing.T) {
	for _, kind := range []token.Kind{token.KindOTP, token.KindReset, token.KindSession} {
		t.Run(string(kind), func(t *testing.T) {
			e := newEnv(&domain.User{ID: "user-1", Email: "youssef@example.ma"})
			raw, err := testIssuer.Issue(token.Claims{UserID: "user-1", Kind: kind}, token.VerificationTTL)
			if err != nil {
				t.Fatalf("issue: %v", err)
			}

			_, err = e.uc.VerifyAccount(context.Background(), raw)
			if !errors.Is(err, domain.ErrTokenInvalid) {
				t.Errorf("want ErrTokenInvalid, got %v", err)
			}
			if e.repo.get("user-1").IsVerified() {
				t.Error("account verified with a token from another flow")
			}
		})
	}
}

func TestVerifyAccount_UnknownUser_ReturnsErrUserNotFound(t *testing.T) {
	raw, _ := testIssuer.Issue(token.Claims{UserID: "ghost", Kind: token.KindVerification}, token.VerificationTTL)

	_, err := newEnv().uc.VerifyAccount(context.Background(), raw)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestVerifyAccount_ThenLogin_AdvancesToDeviceCheck(t *testing.T) {
	e := newEnv()
	in := registerInput()
	if _, err := e.uc.Register(context.Background(), in); err != nil {
		t.Fatalf("register: %v", err)
	}
	mail, _ := e.notifier.last("verify")

	msg, err := e.uc.VerifyAccount(context.Background(), mail.value)
	if err != nil {
		t.Fatalf("verify account: %v", err)
	}
	if msg != "Account Verified Successfully" {
		t.Errorf("message = %q", msg)
	}
	if e.repo.get("user-1").VerifiedAt == nil {
		t.Fatal("verified_at not set")
	}

	res, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: in.Email, Password: in.Password, DeviceIdentity: chromeAgent,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.WithOTP {
		t.Error("first login from a device after verification must require OTP")
	}
}

// ---- Login ----

func TestLogin_WrongPasswordAndUnknownEmail_ShareError(t *testing.T) {
	e := newEnv(verifiedUser())

	_, errWrongPass := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "amina@example.ma", Password: "wrong-pass", DeviceIdentity: chromeAgent,
	})
	_, errNoUser := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "nobody@example.ma", Password: testPass, DeviceIdentity: chromeAgent,
	})

	if !errors.Is(errWrongPass, domain.ErrInvalidCredentials) || !errors.Is(errNoUser, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials for both, got %v / %v", errWrongPass, errNoUser)
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Errorf("messages differ: %q vs %q", errWrongPass, errNoUser)
	}
	if len(e.notifier.sent) != 0 {
		t.Error("failed logins must not send mail")
	}
}

func TestLogin_NewDevice_AppendsOneAgentAndChallenges(t *testing.T) {
	e := newEnv(verifiedUser())
	in := usecase.LoginInput{Email: "amina@example.ma", Password: testPass, DeviceIdentity: chromeAgent}

	res, err := e.uc.Login(context.Background(), in)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.WithOTP || res.UserID != "user-v" {
		t.Errorf("got withOTP=%v user_id=%q", res.WithOTP, res.UserID)
	}
	if res.Message != "OTP sent to your email. Please verify your new device." {
		t.Errorf("message = %q", res.Message)
	}

	claims := mustVerify(t, res.Token, token.KindOTP)
	if claims.UserID != "user-v" || claims.OTPCode != testOTP {
		t.Errorf("challenge claims = %+v", claims)
	}
	mail, ok := e.notifier.last("otp")
	if !ok || mail.value != testOTP || mail.device != chromeAgent {
		t.Errorf("otp mail = %+v", mail)
	}

	agents := e.repo.get("user-v").Agents
	if len(agents) != 1 || agents[0].Name != chromeAgent || agents[0].IsCurrent {
		t.Fatalf("agents after first login = %+v", agents)
	}

	// second attempt from the same device without completing the challenge
	res, err = e.uc.Login(context.Background(), in)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if !res.WithOTP || res.Message != "OTP sent to your email. Please verify your device." {
		t.Errorf("second login = %+v", res)
	}
	if got := len(e.repo.get("user-v").Agents); got != 1 {
		t.Errorf("agents after second login = %d, want 1", got)
	}
}

func TestLogin_RememberMeAtLogin_DoesNotGrantTrust(t *testing.T) {
	e := newEnv(verifiedUser())

	_, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "amina@example.ma", Password: testPass, RememberMe: true, DeviceIdentity: chromeAgent,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if e.repo.get("user-v").Agents[0].IsCurrent {
		t.Error("agent trusted before the OTP was proven")
	}
}

func TestLogin_VerifiedDevice_IssuesSessionWithoutOTP(t *testing.T) {
	e := newEnv(verifiedUser(domain.Agent{Name: chromeAgent, IsCurrent: true, AddedAt: time.Now()}))
	before := time.Now()

	res, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "amina@example.ma", Password: testPass, DeviceIdentity: chromeAgent,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.WithOTP || res.UserID != "" || res.Message != "Login successful" {
		t.Errorf("result = %+v", res)
	}

	claims := mustVerify(t, res.Token, token.KindSession)
	if claims.UserID != "user-v" || claims.OTPCode != "" {
		t.Errorf("session claims = %+v", claims)
	}
	if ttl := claims.ExpiresAt.Sub(before); ttl < 72*time.Hour-time.Minute || ttl > 72*time.Hour+time.Minute {
		t.Errorf("session lifetime = %v, want ~72h", ttl)
	}
	if len(e.notifier.sent) != 0 {
		t.Error("trusted login must not send mail")
	}
}

func TestLogin_OtherDeviceStillChallenged(t *testing.T) {
	e := newEnv(verifiedUser(domain.Agent{Name: chromeAgent, IsCurrent: true}))

	res, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "amina@example.ma", Password: testPass, DeviceIdentity: phoneAgent,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !res.WithOTP {
		t.Error("an unseen device must be challenged even if another is trusted")
	}
	if got := len(e.repo.get("user-v").Agents); got != 2 {
		t.Errorf("agents = %d, want 2", got)
	}
}

func TestLogin_SaveError_Propagates(t *testing.T) {
	e := newEnv(verifiedUser())
	saveErr := errors.New("write conflict")
	e.repo.saveErr = saveErr

	_, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "amina@example.ma", Password: testPass, DeviceIdentity: chromeAgent,
	})
	if !errors.Is(err, saveErr) {
		t.Errorf("want wrapped saveErr, got %v", err)
	}
	if len(e.notifier.sent) != 0 {
		t.Error("no OTP should be sent when the agent could not be stored")
	}
}

func TestLogin_OTPGeneratorError_Propagates(t *testing.T) {
	repo := newMemUserRepo(verifiedUser())
	genErr := errors.New("entropy exhausted")
	uc := usecase.NewAuthUsecase(repo, &fakeRoleRepo{}, plainHasher{}, &fixedOTP{err: genErr}, testIssuer, &recordingNotifier{})

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email: "amina@example.ma", Password: testPass, DeviceIdentity: chromeAgent,
	})
	if !errors.Is(err, genErr) {
		t.Errorf("want wrapped genErr, got %v", err)
	}
}

// ---- VerifyDevice ----

func TestVerifyDevice_WrongOTP_ReturnsErrInvalidOTPWithoutMutation(t *testing.T) {
	e := newEnv(verifiedUser(domain.Agent{Name: chromeAgent}))

	_, err := e.uc.VerifyDevice(context.Background(), usecase.VerifyDeviceInput{
		UserID: "user-v", ExpectedOTP: testOTP, SubmittedOTP: "000000",
		RememberMe: true, DeviceIdentity: chromeAgent,
	})
	if !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("want ErrInvalidOTP, got %v", err)
	}
	if e.repo.saves != 0 {
		t.Errorf("saves = %d, want 0", e.repo.saves)
	}
	if e.repo.get("user-v").Agents[0].IsCurrent {
		t.Error("agent must stay untrusted")
	}
}

func TestVerifyDevice_RememberMe_TrustsDeviceForNextLogin(t *testing.T) {
	e := newEnv(verifiedUser())
	login := usecase.LoginInput{Email: "amina@example.ma", Password: testPass, DeviceIdentity: chromeAgent}

	challenge, err := e.uc.Login(context.Background(), login)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims := mustVerify(t, challenge.Token, token.KindOTP)

	res, err := e.uc.VerifyDevice(context.Background(), usecase.VerifyDeviceInput{
		UserID: claims.UserID, ExpectedOTP: claims.OTPCode, SubmittedOTP: testOTP,
		RememberMe: true, DeviceIdentity: chromeAgent,
	})
	if err != nil {
		t.Fatalf("verify device: %v", err)
	}
	if res.Message != "Login successful" || mustVerify(t, res.Token, token.KindSession).UserID != "user-v" {
		t.Errorf("result = %+v", res)
	}
	if !e.repo.get("user-v").Agents[0].IsCurrent {
		t.Fatal("agent not trusted after remember-me verification")
	}

	next, err := e.uc.Login(context.Background(), login)
	if err != nil {
		t.Fatalf("next login: %v", err)
	}
	if next.WithOTP {
		t.Error("trusted device must not be challenged again")
	}
	if e.notifier.countKind("otp") != 1 {
		t.Errorf("otp emails = %d, want 1", e.notifier.countKind("otp"))
	}
}

func TestVerifyDevice_WithoutRememberMe_IssuesSessionButKeepsDeviceUntrusted(t *testing.T) {
	e := newEnv(verifiedUser(domain.Agent{Name: chromeAgent}))

	res, err := e.uc.VerifyDevice(context.Background(), usecase.VerifyDeviceInput{
		UserID: "user-v", ExpectedOTP: testOTP, SubmittedOTP: testOTP, DeviceIdentity: chromeAgent,
	})
	if err != nil {
		t.Fatalf("verify device: %v", err)
	}
	if res.Token == "" {
		t.Error("session token missing")
	}
	if e.repo.saves != 0 || e.repo.get("user-v").Agents[0].IsCurrent {
		t.Error("device must stay untrusted without remember-me")
	}
}

func TestVerifyDevice_RememberMeFromUnseenDevice_AppendsTrustedAgent(t *testing.T) {
	e := newEnv(verifiedUser(domain.Agent{Name: chromeAgent}))

	_, err := e.uc.VerifyDevice(context.Background(), usecase.VerifyDeviceInput{
		UserID: "user-v", ExpectedOTP: testOTP, SubmittedOTP: testOTP,
		RememberMe: true, DeviceIdentity: phoneAgent,
	})
	if err != nil {
		t.Fatalf("verify device: %v", err)
	}

	agents := e.repo.get("user-v").Agents
	if len(agents) != 2 || agents[1].Name != phoneAgent || !agents[1].IsCurrent || agents[0].IsCurrent {
		t.Errorf("agents = %+v", agents)
	}
}

func TestVerifyDevice_UnknownUser_ReturnsErrUserNotFound(t *testing.T) {
	_, err := newEnv().uc.VerifyDevice(context.Background(), usecase.VerifyDeviceInput{
		UserID: "ghost", ExpectedOTP: testOTP, SubmittedOTP: testOTP,
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

// ---- ResendOTP ----

func TestResendOTP_UnknownUser_ReturnsErrUserNotFound(t *testing.T) {
	_, err := newEnv().uc.ResendOTP(context.Background(), "ghost", chromeAgent)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestResendOTP_IssuesFreshChallengeWithoutTouchingAgents(t *testing.T) {
	e := newEnv(verifiedUser(domain.Agent{Name: chromeAgent}))

	res, err := e.uc.ResendOTP(context.Background(), "user-v", chromeAgent)
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if res.Message != "OTP code sent" {
		t.Errorf("message = %q", res.Message)
	}
	claims := mustVerify(t, res.Token, token.KindOTP)
	if claims.UserID != "user-v" || claims.OTPCode != testOTP {
		t.Errorf("claims = %+v", claims)
	}
	if e.notifier.countKind("otp") != 1 {
		t.Error("otp email not sent")
	}
	if e.repo.saves != 0 {
		t.Error("resend must not mutate the user")
	}
}

// ---- Password reset ----

func TestRequestPasswordReset_UnknownEmail_ReturnsErrUserNotFound(t *testing.T) {
	_, err := newEnv().uc.RequestPasswordReset(context.Background(), "nobody@example.ma")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestRequestPasswordReset_MailsTokenBoundToUser(t *testing.T) {
	e := newEnv(verifiedUser())

	msg, err := e.uc.RequestPasswordReset(context.Background(), "amina@example.ma")
	if err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if msg != "Reset password email sent" {
		t.Errorf("message = %q", msg)
	}

	mail, ok := e.notifier.last("reset")
	if !ok {
		t.Fatal("reset email not sent")
	}
	claims := mustVerify(t, mail.value, token.KindReset)
	if claims.UserID != "user-v" || claims.Identifier != "password-reset-user-v" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestResetPassword_WrongIdentifier_KeepsPassword(t *testing.T) {
	e := newEnv(verifiedUser())

	_, err := e.uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		UserID: "user-v", Identifier: "password-reset-someone-else", Password: "brand-new-pass",
	})
	if !errors.Is(err, domain.ErrResetTokenMismatch) {
		t.Fatalf("want ErrResetTokenMismatch, got %v", err)
	}
	if got := e.repo.get("user-v").Password; got != "hashed:"+testPass {
		t.Errorf("password changed to %q", got)
	}
}

func TestResetPassword_UnknownUser_ReturnsErrUserNotFound(t *testing.T) {
	_, err := newEnv().uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		UserID: "ghost", Identifier: "password-reset-ghost", Password: "brand-new-pass",
	})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestResetPassword_ValidIdentifier_ReplacesPassword(t *testing.T) {
	e := newEnv(verifiedUser(domain.Agent{Name: chromeAgent, IsCurrent: true}))

	msg, err := e.uc.ResetPassword(context.Background(), usecase.ResetPasswordInput{
		UserID: "user-v", Identifier: "password-reset-user-v", Password: "brand-new-pass",
	})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if msg != "Password reset successfully" {
		t.Errorf("message = %q", msg)
	}

	if _, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "amina@example.ma", Password: testPass, DeviceIdentity: chromeAgent,
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("old password still accepted: %v", err)
	}
	if _, err := e.uc.Login(context.Background(), usecase.LoginInput{
		Email: "amina@example.ma", Password: "brand-new-pass", DeviceIdentity: chromeAgent,
	}); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}
