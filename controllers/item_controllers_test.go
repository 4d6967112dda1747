package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"restaurant-service/models"
)

func setupItemRouter(db *gorm.DB) *gin.Engine {
	ctrl := NewItemController(db)
	return newTestRouter(func(r *gin.Engine) {
		r.POST("/items", ctrl.Create)
		r.PUT("/items/:itemUuid", ctrl.Update)
		r.DELETE("/items/:itemUuid", ctrl.Delete)
		r.PATCH("/items/:itemUuid/availability", ctrl.ToggleAvailability)
		r.PATCH("/items/bulk/update", ctrl.BulkUpdate)
	})
}

func TestCreateItem(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, testOwnerID)
	r := setupItemRouter(db)

	w := doJSON(r, http.MethodPost, "/items", testOwnerID, map[string]interface{}{
		"name":          "Croque Monsieur",
		"price":         9.5,
		"originalPrice": 12.0,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var item models.Item
	assert.NoError(t, db.Where("name = ?", "Croque Monsieur").First(&item).Error)
	assert.True(t, item.IsAvailable)
	assert.Equal(t, 15, item.PreparationTime)
}

func TestCreateItemRejectsOriginalPriceBelowPrice(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, testOwnerID)
	r := setupItemRouter(db)

	w := doJSON(r, http.MethodPost, "/items", testOwnerID, map[string]interface{}{
		"name":          "Burger",
		"price":         12.0,
		"originalPrice": 12.0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "validation_error", body["error"])

	fieldErrors := body["fieldErrors"].(map[string]interface{})
	assert.Contains(t, fieldErrors, "originalPrice")
}

func TestCreateItemDuplicateNameConflicts(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	seedItem(t, db, restaurant.ID, "Ratatouille", 13.0, true)
	r := setupItemRouter(db)

	w := doJSON(r, http.MethodPost, "/items", testOwnerID, map[string]interface{}{
		"name":  "Ratatouille",
		"price": 14.0,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "duplicate_entity", body["error"])
}

func TestCreateItemUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, testOwnerID)
	r := setupItemRouter(db)

	w := doJSON(r, http.MethodPost, "/items", testOwnerID, map[string]interface{}{
		"name":       "Gnocchi",
		"price":      10.0,
		"categoryId": 999,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "invalid_reference", body["error"])
}

func TestUpdateItemPriceCheckedAgainstStoredOriginal(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	original := 15.0
	item := models.Item{
		RestaurantID:  restaurant.ID,
		Name:          "Cassoulet",
		Price:         12.0,
		OriginalPrice: &original,
		IsAvailable:   true,
	}
	assert.NoError(t, db.Create(&item).Error)
	r := setupItemRouter(db)

	// Raising the price above the stored original must fail even though the
	// request itself carries no originalPrice.
	w := doJSON(r, http.MethodPut, "/items/"+item.UUID, testOwnerID, map[string]interface{}{
		"price": 16.0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/items/"+item.UUID, testOwnerID, map[string]interface{}{
		"price": 13.5,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Item
	db.First(&updated, item.ID)
	assert.Equal(t, 13.5, updated.Price)
}

func TestUpdateItemCrossTenantIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, testOwnerID)
	other := seedRestaurant(t, db, "owner-2")
	theirs := seedItem(t, db, other.ID, "Sushi", 18.0, true)
	r := setupItemRouter(db)

	w := doJSON(r, http.MethodPut, "/items/"+theirs.UUID, testOwnerID, map[string]interface{}{
		"name": "Maki",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)

	var untouched models.Item
	db.First(&untouched, theirs.ID)
	assert.Equal(t, "Sushi", untouched.Name)
}

func TestToggleItemAvailabilityWithEmptyBodyFlips(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	item := seedItem(t, db, restaurant.ID, "Crepe", 6.0, true)
	r := setupItemRouter(db)

	w := doJSON(r, http.MethodPatch, "/items/"+item.UUID+"/availability", testOwnerID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Item
	db.First(&reloaded, item.ID)
	assert.False(t, reloaded.IsAvailable)
}

func TestDeleteItemReturnsDeletedSummary(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	item := seedItem(t, db, restaurant.ID, "Flan", 4.5, true)
	r := setupItemRouter(db)

	w := doJSON(r, http.MethodDelete, "/items/"+item.UUID, testOwnerID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	deleted := data["deletedItem"].(map[string]interface{})
	assert.Equal(t, "Flan", deleted["name"])

	var count int64
	db.Model(&models.Item{}).Where("id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestBulkUpdateSkipsForeignItems(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	other := seedRestaurant(t, db, "owner-2")
	mine := seedItem(t, db, restaurant.ID, "Omelette", 7.5, true)
	theirs := seedItem(t, db, other.ID, "Paella", 16.0, true)
	r := setupItemRouter(db)

	w := doJSON(r, http.MethodPatch, "/items/bulk/update", testOwnerID, map[string]interface{}{
		"items": []map[string]interface{}{
			{"uuid": mine.UUID, "isAvailable": false},
			{"uuid": theirs.UUID, "isAvailable": false},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["updatedCount"])

	var untouched models.Item
	db.First(&untouched, theirs.ID)
	assert.True(t, untouched.IsAvailable)
}
