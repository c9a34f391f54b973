package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/ports"
)

// AccountHandler exposes the account operations over HTTP. Domain errors are
// returned unchanged and rendered by the central error handler.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Login authenticates an account and returns a fresh token.
//
// @Summary      Login
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope{data=loginResponse}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Router       /accounts/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "account authenticated", toLoginResponse(result))
}

// Register creates a new account with its phones.
//
// @Summary      Register an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  envelope{data=accountResponse}
// @Failure      400   {object}  envelope
// @Failure      409   {object}  envelope
// @Router       /accounts/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.service.Register(c.Request().Context(), toRegisterInput(req))
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "account created", toAccountResponse(view))
}

// List handles GET /accounts.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=[]accountResponse}
// @Failure      401  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	views, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "accounts retrieved", toAccountResponses(views))
}

// Get handles GET /accounts/:id.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  envelope{data=accountResponse}
// @Failure      401  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	view, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "account retrieved", toAccountResponse(view))
}

// Delete handles DELETE /accounts/:id and returns the deleted account.
//
// @Summary      Delete an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  envelope{data=accountResponse}
// @Failure      401  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /accounts/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	view, err := h.service.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "account deleted", toAccountResponse(view))
}

// Patch handles PATCH /accounts/:id. Absent fields are left untouched.
//
// @Summary      Partially update an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Account id"
// @Param        body  body      patchRequest  true  "Fields to change"
// @Success      200   {object}  envelope{data=accountResponse}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      404   {object}  envelope
// @Failure      409   {object}  envelope
// @Router       /accounts/{id} [patch]
func (h *AccountHandler) Patch(c echo.Context) error {
	var req patchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.service.Patch(c.Request().Context(), c.Param("id"), toPatchInput(req))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "account updated", toAccountResponse(view))
}
