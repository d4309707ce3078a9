package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sparta/authcore/internal/api/middleware"
	"github.com/sparta/authcore/internal/core/domain"
	"github.com/sparta/authcore/internal/core/ports"
)

// UserHandler serves the routes that consume the authenticated principal.
type UserHandler struct {
	store ports.CredentialStore
}

func NewUserHandler(store ports.CredentialStore) *UserHandler {
	return &UserHandler{store: store}
}

type homeResponse struct {
	Message   string            `json:"message"`
	Principal *domain.Principal `json:"principal,omitempty"`
}

type product struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type productsResponse struct {
	Owner    string    `json:"owner"`
	Products []product `json:"products"`
}

// Home greets the caller. Anonymous callers get a generic greeting.
//
// @Summary  Home
// @Tags     user
// @Produce  json
// @Success  200  {object}  homeResponse
// @Router   / [get]
func (h *UserHandler) Home(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusOK, homeResponse{Message: "welcome, please log in"})
	}
	return c.JSON(http.StatusOK, homeResponse{Message: "welcome, " + p.Subject, Principal: &p})
}

// Products lists the caller's products.
//
// @Summary  List products
// @Tags     user
// @Produce  json
// @Success  200  {object}  productsResponse
// @Failure  401  {object}  map[string]string
// @Router   /api/products [get]
func (h *UserHandler) Products(c echo.Context, p domain.Principal) error {
	return c.JSON(http.StatusOK, productsResponse{
		Owner:    p.Subject,
		Products: []product{},
	})
}

// LookupUser returns a stored account. ADMIN only.
//
// @Summary  Look up a user
// @Tags     admin
// @Produce  json
// @Param    username  path      string  true  "Username"
// @Success  200       {object}  domain.User
// @Failure  401       {object}  map[string]string
// @Failure  403       {object}  map[string]string
// @Failure  404       {object}  map[string]string
// @Router   /api/admin/users/{username} [get]
func (h *UserHandler) LookupUser(c echo.Context, _ domain.Principal) error {
	user, err := h.store.FindByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
