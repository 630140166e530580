package middleware

import (
	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-gonic/gin"
)

// RequireCashier loads the logged-in cashier from the session and puts the
// user model into the request context.
func RequireCashier() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := utils.SessionUserID(c)
		if userID == 0 {
			utils.LogError("No cashier session for %s %s", c.Request.Method, c.Request.URL.Path)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		var user models.User
		if err := config.DB.Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
			utils.LogError("Session user ID %d not found or inactive: %v", userID, err)
			utils.Unauthorized(c, "Please login for access")
			c.Abort()
			return
		}

		if user.Role != "cashier" && user.Role != "admin" {
			utils.LogError("User ID %d has role %s, cashier required", user.ID, user.Role)
			utils.Forbidden(c, "Cashier access required")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// CSRF rejects mutating requests whose token does not match the session
// token. Runs before any business logic; reads the token from the
// X-CSRF-Token header or the csrf_token form field.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			c.Next()
			return
		}

		token := c.GetHeader("X-CSRF-Token")
		if token == "" {
			token = c.PostForm("csrf_token")
		}

		if !utils.ValidateCSRFToken(c, token) {
			utils.LogError("CSRF token mismatch for %s %s", c.Request.Method, c.Request.URL.Path)
			utils.Forbidden(c, "Invalid security token. Please try again.")
			c.Abort()
			return
		}

		c.Next()
	}
}
