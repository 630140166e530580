package controllers

import (
	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/models"
	"github.com/chisomo-dev/eddahpos/utils"
)

// RecordActivity writes one audit row for a cashier action. Failures are
// logged and swallowed; auditing never blocks the till.
func RecordActivity(userID uint, action, category string) {
	entry := models.ActivityLog{
		UserID:   userID,
		Action:   action,
		Category: category,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		utils.LogError("Failed to record activity %q for user ID %d: %v", action, userID, err)
	}
}
