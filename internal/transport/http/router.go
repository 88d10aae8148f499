package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/pharmacy-auth/internal/repository"
	"github.com/ErlanBelekov/pharmacy-auth/internal/token"
	"github.com/ErlanBelekov/pharmacy-auth/internal/transport/http/handler"
	"github.com/ErlanBelekov/pharmacy-auth/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	Logger      *slog.Logger
	AuthHandler *handler.AuthHandler
	UserHandler *handler.UserHandler
	Users       repository.UserRepository
	Tokens      middleware.TokenVerifier
	FrontendURL string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(sloggin.NewWithConfig(cfg.Logger, sloggin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithUserAgent:    true,
		WithRequestID:    false, // request_id comes from the context via the log handler
		Filters:          []sloggin.Filter{sloggin.IgnoreMethod(http.MethodOptions)},
	}))
	r.Use(middleware.Metrics())

	challenge := middleware.Auth(cfg.Tokens, token.KindOTP)
	reset := middleware.Auth(cfg.Tokens, token.KindReset)
	session := middleware.Auth(cfg.Tokens, token.KindSession)
	ensureUser := middleware.EnsureUser(cfg.Users, cfg.Logger)

	auth := r.Group("/auth")
	auth.POST("/register", cfg.AuthHandler.Register)
	auth.GET("/verify-account", cfg.AuthHandler.VerifyAccount)
	auth.POST("/login", cfg.AuthHandler.Login)
	auth.POST("/verify-device", challenge, cfg.AuthHandler.VerifyDevice)
	auth.POST("/resend/otp", challenge, cfg.AuthHandler.ResendOTP)
	auth.POST("/ask/reset/password", cfg.AuthHandler.RequestPasswordReset)
	auth.POST("/reset/password", reset, cfg.AuthHandler.ResetPassword)

	users := r.Group("/users", session, ensureUser)
	users.GET("/me", cfg.UserHandler.Me)

	return r
}
