package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/session"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

const (
	sessionKey     = "session"
	credentialsKey = "credentials"

	msgSessionExpired = "Sesión expirada, inicia sesión de nuevo"
)

// RequestCredentials reads the staff session from the browser request. The
// token may come from the Authorization header or, for websocket and SSE
// clients that cannot set headers, from the token query parameter.
func RequestCredentials(c *gin.Context) client.Credentials {
	var creds client.Credentials
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie != "" {
		creds.Cookie = session.CookieName + "=" + cookie
	}

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	}
	creds.Token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	return creds
}

// AuthMiddleware lets through only requests with a live backend session.
func AuthMiddleware(registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := RequestCredentials(c)
		gate, ok := registry.Authorize(c.Request.Context(), creds)
		if !ok {
			utils.Info().WithField("path", c.Request.URL.Path).Info("rejected request without session")
			utils.RespondRedirect(c, http.StatusUnauthorized, msgSessionExpired, session.LoginPath)
			return
		}

		c.Set(sessionKey, gate)
		c.Set(credentialsKey, gate.Credentials())
		if u := gate.User(); u != nil {
			c.Set("userID", u.ID)
			c.Set("role", u.Rol)
		}
		c.Next()
	}
}

// Session returns the gate attached by AuthMiddleware, nil outside of it.
func Session(c *gin.Context) *session.Gate {
	if v, ok := c.Get(sessionKey); ok {
		if g, ok := v.(*session.Gate); ok {
			return g
		}
	}
	return nil
}

// Credentials returns the backend credentials of the current request.
func Credentials(c *gin.Context) client.Credentials {
	if v, ok := c.Get(credentialsKey); ok {
		if creds, ok := v.(client.Credentials); ok {
			return creds
		}
	}
	return RequestCredentials(c)
}

// SessionExpired answers a request whose backend call came back 401/403 and
// marks the session expired.
func SessionExpired(c *gin.Context, registry *session.Registry) {
	if g := Session(c); g != nil {
		g.Expire()
	}
	if registry != nil {
		registry.Forget(Credentials(c))
	}
	utils.RespondRedirect(c, http.StatusUnauthorized, msgSessionExpired, session.LoginPath)
}
