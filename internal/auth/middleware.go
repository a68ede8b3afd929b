package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextStaffID is the gin context key holding the authenticated staff UUID.
const ContextStaffID = "staff_id"

// SessionMiddleware denies requests that do not carry a valid session cookie.
func SessionMiddleware(sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authentication required",
			})
			return
		}

		s, ok := sessions.Get(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Session expired or invalid",
			})
			return
		}

		c.Set(ContextStaffID, s.StaffID)
		c.Next()
	}
}
