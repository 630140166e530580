package controllers

import (
	"errors"
	"time"

	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Login authenticates a cashier and establishes the session used by every
// till operation.
func Login(c *gin.Context) {
	utils.LogInfo("Login called")

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email and password are required", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
		utils.LogError("Login failed for %s: %v", req.Email, err)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.LogError("Invalid password for %s", req.Email)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if err := config.DB.Model(&user).Update("last_login", time.Now()).Error; err != nil {
		utils.LogError("Failed to update last login for user ID %d: %v", user.ID, err)
	}

	session := sessions.Default(c)
	session.Set(utils.SessionKeyUserID, user.ID)
	session.Set(utils.SessionKeyUserEmail, user.Email)
	session.Set(utils.SessionKeyUserName, user.FirstName+" "+user.LastName)
	session.Set(utils.SessionKeyRole, user.Role)
	if err := session.Save(); err != nil {
		utils.LogError("Failed to save session for user ID %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to establish session", nil)
		return
	}

	csrfToken, err := utils.EnsureCSRFToken(c)
	if err != nil {
		utils.LogError("Failed to mint CSRF token for user ID %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to establish session", nil)
		return
	}

	utils.LogInfo("User ID %d logged in", user.ID)
	utils.Success(c, "Login successful", gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
		},
		"csrf_token": csrfToken,
	})
}

// Logout tears down the session, discarding the cart with it.
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		utils.LogError("Failed to clear session: %v", err)
		utils.InternalServerError(c, "Failed to log out", nil)
		return
	}
	utils.Success(c, "Logged out successfully", nil)
}

// SessionInfo returns the logged-in cashier and the CSRF token the client
// must send on mutating calls.
func SessionInfo(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	csrfToken, err := utils.EnsureCSRFToken(c)
	if err != nil {
		utils.InternalServerError(c, "Failed to mint CSRF token", nil)
		return
	}

	utils.Success(c, "Session info", gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
		},
		"csrf_token": csrfToken,
	})
}

// ForgotPassword issues a time-boxed reset token and mails it to the staff
// account. The response does not reveal whether the email exists.
func ForgotPassword(c *gin.Context) {
	utils.LogInfo("ForgotPassword called")

	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Email is required", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Success(c, "If that email exists, a reset link has been sent", nil)
			return
		}
		utils.InternalServerError(c, "Failed to process reset request", nil)
		return
	}

	token, err := utils.GenerateResetToken(user.ID, user.Email)
	if err != nil {
		utils.LogError("Failed to generate reset token for user ID %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to process reset request", nil)
		return
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := config.DB.Create(&reset).Error; err != nil {
		utils.LogError("Failed to store reset token for user ID %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to process reset request", nil)
		return
	}

	if err := utils.SendPasswordResetEmail(user.Email, token); err != nil {
		utils.LogError("Failed to send reset email to %s: %v", user.Email, err)
		utils.InternalServerError(c, "Failed to send reset email", nil)
		return
	}

	utils.Success(c, "If that email exists, a reset link has been sent", nil)
}

// ResetPassword consumes a reset token and replaces the account password.
func ResetPassword(c *gin.Context) {
	utils.LogInfo("ResetPassword called")

	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Token and new password (min 8 chars) are required", err.Error())
		return
	}

	userID, err := utils.ValidateResetToken(req.Token)
	if err != nil {
		utils.LogError("Invalid reset token: %v", err)
		utils.BadRequest(c, "Invalid or expired reset token", nil)
		return
	}

	var reset models.PasswordReset
	if err := config.DB.Where("user_id = ? AND token = ? AND used_at IS NULL AND expires_at > ?",
		userID, req.Token, time.Now()).First(&reset).Error; err != nil {
		utils.BadRequest(c, "Invalid or expired reset token", nil)
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.InternalServerError(c, "Failed to update password", nil)
		return
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("password", hash).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used_at", &now).Error
	})
	if err != nil {
		utils.LogError("Failed to reset password for user ID %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to update password", nil)
		return
	}

	utils.Success(c, "Password updated successfully", nil)
}

// CreateSampleCashier seeds a cashier account on first boot so the till is
// usable out of the box.
func CreateSampleCashier() error {
	var count int64
	if err := config.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("Cashier123!")
	if err != nil {
		return err
	}

	cashier := models.User{
		Email:     "cashier@eddahpos.local",
		Password:  hash,
		FirstName: "Default",
		LastName:  "Cashier",
		Role:      "cashier",
		IsActive:  true,
	}
	return config.DB.Create(&cashier).Error
}
