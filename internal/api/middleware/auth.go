package middleware

import (
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/api/service"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

type authOptions struct {
	queryParam string
}

// AuthOption customizes RequireAuth.
type AuthOption func(*authOptions)

// WithQueryToken also accepts the token from the named query parameter when
// no Authorization header is present. Browsers cannot set headers on websocket
// upgrades, so the live feed needs this.
func WithQueryToken(name string) AuthOption {
	return func(o *authOptions) {
		o.queryParam = name
	}
}

// RequireAuth resolves the bearer token of every request into a user and
// rejects the request with 401 when that fails.
func RequireAuth(authService service.AuthService, opts ...AuthOption) gin.HandlerFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && o.queryParam != "" {
			token = c.Query(o.queryParam)
			ok = token != ""
		}
		if !ok {
			response.Unauthorized(c, "not authenticated")
			return
		}

		user, err := authService.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				response.Unauthorized(c, service.ErrUnauthorized.Error())
				return
			}
			response.ServiceError(c, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
