package handler

import (
	"net/http"
	"time"

	"github.com/ErlanBelekov/pharmacy-auth/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

type deviceResponse struct {
	Name    string    `json:"name"`
	Trusted bool      `json:"trusted"`
	AddedAt time.Time `json:"added_at"`
}

type profileResponse struct {
	ID          string           `json:"id"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email"`
	PhoneNumber string           `json:"phone_number"`
	City        string           `json:"city"`
	RoleID      string           `json:"role_id"`
	VerifiedAt  *time.Time       `json:"verified_at"`
	Devices     []deviceResponse `json:"devices"`
}

// GET /users/me
// Requires Auth and EnsureUser; the password hash and CIN never leave the service.
func (h *UserHandler) Me(c *gin.Context) {
	u := middleware.UserFrom(c)
	if u == nil {
		respondError(c, http.StatusUnauthorized, errInvalidToken)
		return
	}

	devices := make([]deviceResponse, 0, len(u.Agents))
	for _, a := range u.Agents {
		devices = append(devices, deviceResponse{Name: a.Name, Trusted: a.IsCurrent, AddedAt: a.AddedAt})
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		City:        u.City,
		RoleID:      u.RoleID,
		VerifiedAt:  u.VerifiedAt,
		Devices:     devices,
	})
}
