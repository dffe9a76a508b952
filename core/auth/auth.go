package auth

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pos.GO/config"
)

// Middleware returns the auth middleware for the local API based on the
// AUTH_TYPE env var. With no credentials configured the API is open;
// this is a single-operator desktop client bound to localhost.
func Middleware() echo.MiddlewareFunc {
	skipper := buildSkipper()
	switch os.Getenv("AUTH_TYPE") {
	case "key":
		return keyAuth(skipper)
	case "basic":
		return basicAuth(skipper)
	default:
		if os.Getenv("API_KEY") != "" {
			return keyAuth(skipper)
		}
		if os.Getenv("API_USER") != "" {
			return basicAuth(skipper)
		}
		return passthrough()
	}
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

func passthrough() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return next
	}
}

func basicAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: func(username, password string, c echo.Context) (bool, error) {
			return username == os.Getenv("API_USER") && password == os.Getenv("API_PASS"), nil
		},
		Skipper: skipper,
	})
}

func keyAuth(skipper middleware.Skipper) echo.MiddlewareFunc {
	apiKey := os.Getenv("API_KEY")
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Validator: func(key string, c echo.Context) (bool, error) {
			return key == apiKey, nil
		},
		Skipper: skipper,
	})
}
