package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/service"
)

// refreshCookie is the httpOnly cookie that carries the raw refresh token.
const refreshCookie = "refresh_token"

// AuthHandler serves registration, login and token rotation.
type AuthHandler struct {
	Auth         *service.AuthService
	SecureCookie bool
}

func NewAuthHandler(auth *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{Auth: auth, SecureCookie: secureCookie}
}

type registerReq struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	PersonType  string `json:"person_type"`
	CompanyName string `json:"company_name"`
}

func (r registerReq) profile() service.ProfileInput {
	return service.ProfileInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		Password:    r.Password,
		PersonType:  r.PersonType,
		CompanyName: r.CompanyName,
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResp struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Message     string    `json:"message"`
}

// Register creates a user account. It does not log the user in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.profile())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"message":    "Registration successful",
	})
}

// Login returns an access token in the body and sets the refresh cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.writeSession(c, sess, "Login successful")
}

// Refresh rotates the refresh token taken from the cookie or, for
// non-browser clients, from the JSON body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	sess, err := h.Auth.Refresh(ctx, refreshFrom(c))
	if err != nil {
		h.clearCookie(c)
		return err
	}
	return h.writeSession(c, sess, "Token refreshed")
}

// Logout revokes the presented refresh token. Without one, a valid bearer
// token revokes every session of its user.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	raw := refreshFrom(c)
	if raw == "" {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(auth, "Bearer ") {
			return badRequest("refresh_token or bearer token required")
		}
		caller, err := h.Auth.Authenticate(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
		if err != nil {
			return err
		}
		if err := h.Auth.LogoutAll(ctx, caller); err != nil {
			return err
		}
	} else if err := h.Auth.Logout(ctx, raw); err != nil {
		return err
	}
	h.clearCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (h *AuthHandler) writeSession(c echo.Context, sess *service.Session, msg string) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    sess.Refresh.Raw,
		Path:     "/",
		Expires:  sess.Refresh.Exp,
		MaxAge:   int(time.Until(sess.Refresh.Exp).Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, sessionResp{
		ID:          sess.User.ID,
		FirstName:   sess.User.FirstName,
		LastName:    sess.User.LastName,
		Email:       sess.User.Email,
		Role:        string(sess.User.Role),
		AccessToken: sess.Access.Token,
		ExpiresAt:   sess.Access.Exp,
		Message:     msg,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func refreshFrom(c echo.Context) string {
	if ck, err := c.Cookie(refreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var req refreshReq
	if c.Request().ContentLength != 0 {
		_ = c.Bind(&req)
	}
	return strings.TrimSpace(req.RefreshToken)
}
