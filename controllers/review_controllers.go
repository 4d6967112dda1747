package controllers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-service/middlewares"
	"restaurant-service/models"
	"restaurant-service/utils"
)

type ReviewController struct {
	DB *gorm.DB
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{DB: db}
}

type CreateReviewRequest struct {
	Rating  *int              `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string            `json:"comment" binding:"max=1000"`
	Images  models.StringList `json:"images"`
	OrderID string            `json:"orderId"`
}

// Create stores a customer review and refreshes the restaurant's cached
// rating and review count in the same transaction.
func (rc *ReviewController) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	customerID := middlewares.UserID(c)

	var review models.Review
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		err := tx.Where("uuid = ? AND is_active = ?", c.Param("restaurantUuid"), true).
			First(&restaurant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Restaurant not found")
			}
			return err
		}

		review = models.Review{
			RestaurantID: restaurant.ID,
			CustomerID:   customerID,
			OrderID:      req.OrderID,
			Rating:       *req.Rating,
			Comment:      strings.TrimSpace(req.Comment),
			Images:       req.Images,
			IsVisible:    true,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		// Recompute from visible reviews so hidden ones never count.
		var result struct {
			Avg   float64
			Count int64
		}
		err = tx.Model(&models.Review{}).
			Select("AVG(rating) as avg, COUNT(*) as count").
			Where("restaurant_id = ? AND is_visible = ?", restaurant.ID, true).
			Scan(&result).Error
		if err != nil {
			return err
		}

		return tx.Model(&restaurant).Updates(map[string]interface{}{
			"rating":       math.Round(result.Avg*100) / 100,
			"review_count": result.Count,
		}).Error
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Review created successfully", review)
}

// List returns a restaurant's visible reviews, newest first.
func (rc *ReviewController) List(c *gin.Context) {
	var restaurant models.Restaurant
	err := rc.DB.Where("uuid = ? AND is_active = ?", c.Param("restaurantUuid"), true).
		First(&restaurant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFoundError("Restaurant not found"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	page, limit := utils.ParsePagination(c, 20, 50)

	query := rc.DB.Model(&models.Review{}).
		Where("restaurant_id = ? AND is_visible = ?", restaurant.ID, true)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var reviews []models.Review
	err = query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant reviews", gin.H{
		"reviews":    reviews,
		"pagination": utils.NewPagination(page, limit, count),
	})
}

type RespondReviewRequest struct {
	Response string `json:"response" binding:"required,min=1,max=1000"`
}

// Respond records the owner's reply on one of their reviews.
func (rc *ReviewController) Respond(c *gin.Context) {
	var req RespondReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(rc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var review models.Review
	err = rc.DB.Where("uuid = ? AND restaurant_id = ?", c.Param("reviewUuid"), restaurant.ID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFoundError("Review not found"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	now := time.Now()
	review.Response = strings.TrimSpace(req.Response)
	review.RespondedAt = &now

	if err := rc.DB.Model(&review).Updates(map[string]interface{}{
		"response":     review.Response,
		"responded_at": review.RespondedAt,
	}).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Response saved successfully", review)
}

// ToggleVisibility hides or shows a review and refreshes the restaurant's
// cached rating accordingly.
func (rc *ReviewController) ToggleVisibility(c *gin.Context) {
	restaurant, err := ownerRestaurant(rc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var review models.Review
	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("uuid = ? AND restaurant_id = ?", c.Param("reviewUuid"), restaurant.ID).
			First(&review).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Review not found")
			}
			return err
		}

		review.IsVisible = !review.IsVisible
		if err := tx.Model(&review).Update("is_visible", review.IsVisible).Error; err != nil {
			return err
		}

		var result struct {
			Avg   float64
			Count int64
		}
		err = tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
			Where("restaurant_id = ? AND is_visible = ?", restaurant.ID, true).
			Scan(&result).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.Restaurant{}).
			Where("id = ?", restaurant.ID).
			Updates(map[string]interface{}{
				"rating":       math.Round(result.Avg*100) / 100,
				"review_count": result.Count,
			}).Error
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Review hidden"
	if review.IsVisible {
		message = "Review made visible"
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"uuid":      review.UUID,
		"isVisible": review.IsVisible,
	})
}
