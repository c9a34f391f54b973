package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// respond writes data wrapped in the standard envelope.
func respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, envelope{Code: code, Message: message, Data: data})
}

// bindAndValidate decodes the request body into req and runs the registered
// validator. Both failures are reported as 400 with a readable message.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
