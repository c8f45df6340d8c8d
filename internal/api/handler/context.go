package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// reviewerFrom returns the account id the Auth middleware stored on c.
func reviewerFrom(c echo.Context) (string, error) {
	id, _ := c.Get("account_id").(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
