package api

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/config"
)

// BasicAuth returns middleware enforcing cfg's basic auth credentials. When
// no credentials are configured it allows every request through.
func BasicAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.HasAuth() {
			c.Next()
			return
		}

		username, password, ok := parseBasicAuth(c.GetHeader("Authorization"))
		if ok &&
			subtle.ConstantTimeCompare([]byte(username), []byte(cfg.BasicAuthUsername)) == 1 &&
			subtle.ConstantTimeCompare([]byte(password), []byte(cfg.BasicAuthPassword)) == 1 {
			c.Next()
			return
		}

		c.Header("WWW-Authenticate", `Basic realm="vtgridd"`)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		c.Abort()
	}
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
