package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"restaurant-service/models"
)

func setupReviewRouter(db *gorm.DB) *gin.Engine {
	ctrl := NewReviewController(db)
	return newTestRouter(func(r *gin.Engine) {
		r.POST("/reviews/restaurant/:restaurantUuid", ctrl.Create)
		r.GET("/reviews/restaurant/:restaurantUuid", ctrl.List)
		r.POST("/reviews/:reviewUuid/response", ctrl.Respond)
		r.PATCH("/reviews/:reviewUuid/visibility", ctrl.ToggleVisibility)
	})
}

func seedReview(t *testing.T, db *gorm.DB, restaurantID uint, rating int, visible bool) models.Review {
	review := models.Review{
		RestaurantID: restaurantID,
		CustomerID:   "customer-1",
		Rating:       rating,
		IsVisible:    visible,
	}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("failed to seed review: %v", err)
	}
	return review
}

func TestCreateReviewUpdatesRestaurantRating(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	seedReview(t, db, restaurant.ID, 5, true)
	r := setupReviewRouter(db)

	w := doJSON(r, http.MethodPost, "/reviews/restaurant/"+restaurant.UUID, "customer-2", map[string]interface{}{
		"rating":  4,
		"comment": "Tres bon accueil",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var reloaded models.Restaurant
	db.First(&reloaded, restaurant.ID)
	assert.Equal(t, 4.5, reloaded.Rating)
	assert.Equal(t, 2, reloaded.ReviewCount)
}

func TestCreateReviewOnInactiveRestaurant(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	assert.NoError(t, db.Model(&restaurant).Update("is_active", false).Error)
	r := setupReviewRouter(db)

	w := doJSON(r, http.MethodPost, "/reviews/restaurant/"+restaurant.UUID, "customer-1", map[string]interface{}{
		"rating": 5,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReviewsSkipsHiddenOnes(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	seedReview(t, db, restaurant.ID, 5, true)
	seedReview(t, db, restaurant.ID, 1, false)
	r := setupReviewRouter(db)

	w := doJSON(r, http.MethodGet, "/reviews/restaurant/"+restaurant.UUID, "customer-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	reviews := data["reviews"].([]interface{})
	assert.Len(t, reviews, 1)
}

func TestRespondToReview(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	review := seedReview(t, db, restaurant.ID, 3, true)
	r := setupReviewRouter(db)

	w := doJSON(r, http.MethodPost, "/reviews/"+review.UUID+"/response", testOwnerID, map[string]interface{}{
		"response": "Merci pour votre retour",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Review
	db.First(&reloaded, review.ID)
	assert.Equal(t, "Merci pour votre retour", reloaded.Response)
	assert.NotNil(t, reloaded.RespondedAt)
}

func TestRespondToForeignReviewIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, testOwnerID)
	other := seedRestaurant(t, db, "owner-2")
	review := seedReview(t, db, other.ID, 2, true)
	r := setupReviewRouter(db)

	w := doJSON(r, http.MethodPost, "/reviews/"+review.UUID+"/response", testOwnerID, map[string]interface{}{
		"response": "Pas chez moi",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleVisibilityRecomputesRating(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	seedReview(t, db, restaurant.ID, 5, true)
	bad := seedReview(t, db, restaurant.ID, 1, true)
	assert.NoError(t, db.Model(&restaurant).Updates(map[string]interface{}{
		"rating":       3.0,
		"review_count": 2,
	}).Error)
	r := setupReviewRouter(db)

	w := doJSON(r, http.MethodPatch, "/reviews/"+bad.UUID+"/visibility", testOwnerID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Restaurant
	db.First(&reloaded, restaurant.ID)
	assert.Equal(t, 5.0, reloaded.Rating)
	assert.Equal(t, 1, reloaded.ReviewCount)

	// Showing it again restores the full average.
	w = doJSON(r, http.MethodPatch, "/reviews/"+bad.UUID+"/visibility", testOwnerID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&reloaded, restaurant.ID)
	assert.Equal(t, 3.0, reloaded.Rating)
	assert.Equal(t, 2, reloaded.ReviewCount)
}
