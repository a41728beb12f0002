package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/stemsi/exstem-enroll/internal/response"
)

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).LoggedIn() {
			response.AbortRedirect(c, "/login")
			return
		}
		c.Next()
	}
}
