package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Options configures the CORS middleware.
type Options struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// New returns a CORS middleware. An empty origin list allows every origin.
func New(opts Options) gin.HandlerFunc {
	allowAll := len(opts.AllowedOrigins) == 0
	originSet := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		originSet[strings.TrimRight(origin, "/")] = struct{}{}
	}
	maxAge := int(opts.MaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = 600
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, known := originSet[strings.TrimRight(origin, "/")]
		switch {
		case origin != "" && (allowAll || known):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		case origin == "" && allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(maxAge))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
