package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sparta/authcore/internal/api/cookie"
	"github.com/sparta/authcore/internal/api/metrics"
	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookieOpts  cookie.Options
}

func NewAuthHandler(authService ports.AuthService, cookieOpts cookie.Options) *AuthHandler {
	return &AuthHandler{authService: authService, cookieOpts: cookieOpts}
}

type signupRequest struct {
	Username   string `json:"username" form:"username" validate:"notblank,max=64"`
	Password   string `json:"password" form:"password" validate:"required,max=72"`
	Email      string `json:"email" form:"email" validate:"notblank,email"`
	Admin      bool   `json:"admin" form:"admin"`
	AdminToken string `json:"adminToken" form:"adminToken"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"notblank"`
	Password string `json:"password" form:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// Signup registers a new account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/user/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid_input").Inc()
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Username:   req.Username,
		Password:   req.Password,
		Email:      req.Email,
		Admin:      req.Admin,
		AdminToken: req.AdminToken,
	})
	metrics.SignupsTotal.WithLabelValues(signupResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user, sets the Authorization cookie and returns the
// token in the body as well.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/user/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.LoginDuration.Observe(time.Since(start).Seconds()) }()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tok, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		// Unknown user and wrong password are indistinguishable to the client.
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		return err
	}

	c.SetCookie(cookie.New(tok, h.cookieOpts))
	return c.JSON(http.StatusOK, authResponse{Token: tok, User: user})
}

// Logout clears the Authorization cookie. Tokens already issued stay valid
// until they expire.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /api/user/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(cookie.Expired(h.cookieOpts))
	return c.NoContent(http.StatusNoContent)
}

func signupResult(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "duplicate_username"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrInvalidAdminToken):
		return "invalid_admin_token"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}
