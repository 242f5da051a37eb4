package middleware

import (
	"strings"

	"github.com/Montinou/stratixV2-sub007/config"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware applies a strict origin allow-list: the configured frontend
// URL, localhost in non-production, and Vercel preview deployments of the
// frontend project. Disallowed origins get no CORS headers at all.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	isProduction := cfg.Environment == "production"

	allowed := map[string]bool{}
	if cfg.FrontendURL != "" {
		allowed[strings.TrimSuffix(cfg.FrontendURL, "/")] = true
	}
	devOrigins := map[string]bool{
		"http://localhost:3000": true,
		"http://127.0.0.1:3000": true,
		"http://localhost:3001": true,
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		isAllowed := allowed[origin]
		if !isProduction && devOrigins[origin] {
			isAllowed = true
		}

		// Vercel previews of the frontend project only; the prefix check
		// blocks lookalike subdomains
		if !isAllowed && strings.HasSuffix(origin, ".vercel.app") {
			subdomain := strings.TrimPrefix(origin, "https://")
			subdomain = strings.TrimSuffix(subdomain, ".vercel.app")
			if strings.HasPrefix(subdomain, "stratix") || strings.Contains(subdomain, "-stratix-") {
				isAllowed = true
			}
		}

		// Same-origin requests carry no Origin header
		if origin == "" {
			isAllowed = true
		}

		if isAllowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			c.Header("Access-Control-Max-Age", "86400")
		}

		c.Header("Vary", "Origin")

		if c.Request.Method == "OPTIONS" {
			if isAllowed {
				c.AbortWithStatus(204)
			} else {
				c.AbortWithStatus(403)
			}
			return
		}

		c.Next()
	}
}
