package handler

import (
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/scoresync/account-service/internal/core/domain"
)

// TokenContextKey is where the auth middleware stores the raw bearer token.
const TokenContextKey = "token"

// bearerToken returns the token placed in the context by the auth middleware.
// Its absence means the route was mounted without the middleware.
func bearerToken(c echo.Context) (string, error) {
	token, _ := c.Get(TokenContextKey).(string)
	if token == "" {
		return "", domain.ErrMissingToken
	}
	return token, nil
}

// jsonFieldName reports struct fields by their JSON name in validation errors.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
