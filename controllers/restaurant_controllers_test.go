package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"restaurant-service/models"
)

func setupRestaurantRouter(db *gorm.DB) *gin.Engine {
	ctrl := NewRestaurantController(db)
	return newTestRouter(func(r *gin.Engine) {
		r.GET("/restaurants/search", ctrl.Search)
		r.GET("/restaurants/nearby", ctrl.Nearby)
		r.GET("/restaurants/:uuid", ctrl.Get)
		r.POST("/restaurants", ctrl.Create)
		r.PATCH("/restaurants/owner/status", ctrl.ToggleStatus)
	})
}

func seedGeoRestaurant(t *testing.T, db *gorm.DB, owner, name string, lat, lng float64) models.Restaurant {
	restaurant := models.Restaurant{
		OwnerID:    owner,
		Name:       name,
		Address:    "Somewhere",
		City:       "Paris",
		PostalCode: "75001",
		IsActive:   true,
		Latitude:   &lat,
		Longitude:  &lng,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("failed to seed restaurant: %v", err)
	}
	return restaurant
}

func TestCreateRestaurant(t *testing.T) {
	db := setupTestDB(t)
	r := setupRestaurantRouter(db)

	w := doJSON(r, http.MethodPost, "/restaurants", testOwnerID, map[string]interface{}{
		"name":       "La Bonne Table",
		"address":    "5 Rue des Halles",
		"city":       "Lyon",
		"postalCode": "69001",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var restaurant models.Restaurant
	assert.NoError(t, db.Where("owner_id = ?", testOwnerID).First(&restaurant).Error)
	assert.Equal(t, "France", restaurant.Country)
	assert.Equal(t, 30, restaurant.AverageDeliveryTime)
}

func TestCreateSecondRestaurantConflicts(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, testOwnerID)
	r := setupRestaurantRouter(db)

	w := doJSON(r, http.MethodPost, "/restaurants", testOwnerID, map[string]interface{}{
		"name":       "La Deuxieme",
		"address":    "9 Rue du Four",
		"city":       "Paris",
		"postalCode": "75006",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "duplicate_entity", body["error"])
}

func TestGetInactiveRestaurantIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	assert.NoError(t, db.Model(&restaurant).Update("is_active", false).Error)
	r := setupRestaurantRouter(db)

	w := doJSON(r, http.MethodGet, "/restaurants/"+restaurant.UUID, "visitor", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleStatusWithEmptyBodyFlips(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	r := setupRestaurantRouter(db)

	w := doJSON(r, http.MethodPatch, "/restaurants/owner/status", testOwnerID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Restaurant
	db.First(&reloaded, restaurant.ID)
	assert.True(t, reloaded.IsOpen)

	w = doJSON(r, http.MethodPatch, "/restaurants/owner/status", testOwnerID, map[string]interface{}{
		"isOpen": false,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	db.First(&reloaded, restaurant.ID)
	assert.False(t, reloaded.IsOpen)
}

func TestSearchRestaurantsByText(t *testing.T) {
	db := setupTestDB(t)
	seedGeoRestaurant(t, db, "owner-1", "Pizzeria Napoli", 48.85, 2.35)
	seedGeoRestaurant(t, db, "owner-2", "Sushi Bar", 48.86, 2.36)
	r := setupRestaurantRouter(db)

	w := doJSON(r, http.MethodGet, "/restaurants/search?q=Pizzeria", "visitor", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	restaurants := data["restaurants"].([]interface{})
	assert.Len(t, restaurants, 1)

	found := restaurants[0].(map[string]interface{})
	assert.Equal(t, "Pizzeria Napoli", found["name"])
}

func TestNearbyFiltersByRadiusAndSortsByDistance(t *testing.T) {
	db := setupTestDB(t)
	// Paris city centre, a close one, a farther one and Lyon.
	near := seedGeoRestaurant(t, db, "owner-1", "Proche", 48.8570, 2.3530)
	farther := seedGeoRestaurant(t, db, "owner-2", "Un Peu Loin", 48.8800, 2.3200)
	seedGeoRestaurant(t, db, "owner-3", "Lyonnais", 45.7640, 4.8357)
	r := setupRestaurantRouter(db)

	w := doJSON(r, http.MethodGet, "/restaurants/nearby?lat=48.8566&lng=2.3522&radius=10", "visitor", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	restaurants := data["restaurants"].([]interface{})
	assert.Len(t, restaurants, 2)

	first := restaurants[0].(map[string]interface{})
	second := restaurants[1].(map[string]interface{})
	assert.Equal(t, near.Name, first["name"])
	assert.Equal(t, farther.Name, second["name"])
	assert.Less(t, first["distance"].(float64), second["distance"].(float64))
}

func TestNearbyRequiresCoordinates(t *testing.T) {
	db := setupTestDB(t)
	r := setupRestaurantRouter(db)

	w := doJSON(r, http.MethodGet, "/restaurants/nearby", "visitor", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
