package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ermekov/club-table-reservation/internal/config"
	"github.com/ermekov/club-table-reservation/internal/utils"
)

// AuthHandler issues access tokens for the staff API. There is a
// single shared staff credential; venue staff are not individually
// provisioned, which matches how the notification channel itself is a
// single shared chat.
type AuthHandler struct {
	Cfg config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(cfg config.Config) *AuthHandler { return &AuthHandler{Cfg: cfg} }

// Login handles POST /v1/auth/login. The request body carries the
// staff password; a bcrypt match yields a short-lived HS256 token.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}
	if !utils.VerifyPassword(h.Cfg.StaffPassHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, "staff", "STAFF", h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": tok.Token,
		"expires_at":   tok.Exp.Format(time.RFC3339),
	})
}
