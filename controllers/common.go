package controllers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-service/middlewares"
	"restaurant-service/models"
	"restaurant-service/utils"
)

// ownerRestaurant loads the restaurant owned by the acting user. Everything
// behind the authenticated routes is scoped through this lookup, so a user
// without a restaurant gets a uniform not_found.
func ownerRestaurant(db *gorm.DB, c *gin.Context) (*models.Restaurant, error) {
	ownerID := middlewares.UserID(c)
	if ownerID == "" {
		return nil, utils.NotFoundError("Restaurant not found")
	}

	var restaurant models.Restaurant
	if err := db.Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Restaurant not found")
		}
		return nil, err
	}
	return &restaurant, nil
}

// isUniqueViolation matches the unique-constraint messages of both supported
// backends. The database index is the canonical duplicate guard; pre-checks
// in the controllers only exist for friendlier messages.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
