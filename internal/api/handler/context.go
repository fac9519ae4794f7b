package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the identity injected by the Auth middleware. An empty
// user id means the middleware did not run or the token carried no identity;
// either way the request cannot be served.
func ctxIdentity(c echo.Context) (userID, username string, err error) {
	userID, _ = c.Get("user_id").(string)
	username, _ = c.Get("username").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, username, nil
}
