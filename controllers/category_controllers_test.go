package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"restaurant-service/models"
	"restaurant-service/utils"
)

func setupCategoryRouter(db *gorm.DB) *gin.Engine {
	ctrl := NewCategoryController(db)
	return newTestRouter(func(r *gin.Engine) {
		r.POST("/categories", ctrl.Create)
		r.PUT("/categories/:uuid", ctrl.Update)
		r.DELETE("/categories/:uuid", ctrl.Delete)
		r.POST("/categories/reorder", ctrl.Reorder)
		r.POST("/categories/restaurant/:restaurantUuid/:categoryUuid", ctrl.Attach)
		r.DELETE("/categories/restaurant/:restaurantUuid/:categoryUuid", ctrl.Detach)
	})
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	category := models.Category{
		Name:     name,
		Slug:     utils.Slugify(name),
		IsActive: true,
	}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return category
}

func TestCreateCategory(t *testing.T) {
	db := setupTestDB(t)
	seedRestaurant(t, db, testOwnerID)
	r := setupCategoryRouter(db)

	w := doJSON(r, http.MethodPost, "/categories", testOwnerID, map[string]interface{}{
		"name":  "Plats Chauds",
		"color": "#FF5733",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var category models.Category
	assert.NoError(t, db.Where("name = ?", "Plats Chauds").First(&category).Error)
	assert.Equal(t, "plats-chauds", category.Slug)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	seedCategory(t, db, "Desserts")
	r := setupCategoryRouter(db)

	w := doJSON(r, http.MethodPost, "/categories", testOwnerID, map[string]interface{}{
		"name": "Desserts",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "duplicate_entity", body["error"])
}

func TestUpdateCategoryRejectsParentCycle(t *testing.T) {
	db := setupTestDB(t)
	parent := seedCategory(t, db, "Boissons")
	child := models.Category{
		Name:     "Boissons Chaudes",
		Slug:     "boissons-chaudes",
		IsActive: true,
		ParentID: &parent.ID,
	}
	assert.NoError(t, db.Create(&child).Error)
	r := setupCategoryRouter(db)

	// Making the parent a child of its own child closes a loop.
	w := doJSON(r, http.MethodPut, "/categories/"+parent.UUID, testOwnerID, map[string]interface{}{
		"parentId": child.UUID,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttachCategoryTwiceConflicts(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	category := seedCategory(t, db, "Entrees")
	r := setupCategoryRouter(db)
	url := "/categories/restaurant/" + restaurant.UUID + "/" + category.UUID

	first := doJSON(r, http.MethodPost, url, testOwnerID, nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(r, http.MethodPost, url, testOwnerID, nil)
	assert.Equal(t, http.StatusConflict, second.Code)
	body := decodeBody(t, second)
	assert.Equal(t, "duplicate_entity", body["error"])

	var count int64
	db.Model(&models.RestaurantCategory{}).
		Where("restaurant_id = ? AND category_id = ?", restaurant.ID, category.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDetachMissingAssociationIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	category := seedCategory(t, db, "Salades")
	r := setupCategoryRouter(db)

	w := doJSON(r, http.MethodDelete, "/categories/restaurant/"+restaurant.UUID+"/"+category.UUID, testOwnerID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCategoryWithItemsIsBlocked(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db, testOwnerID)
	category := seedCategory(t, db, "Pizzas")
	item := models.Item{
		RestaurantID: restaurant.ID,
		CategoryID:   &category.ID,
		Name:         "Margherita",
		Price:        11.0,
		IsAvailable:  true,
	}
	assert.NoError(t, db.Create(&item).Error)
	r := setupCategoryRouter(db)

	w := doJSON(r, http.MethodDelete, "/categories/"+category.UUID, testOwnerID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "has_dependent_items", body["error"])

	// Reassign the item, then deletion goes through and cleans associations.
	assert.NoError(t, db.Model(&models.Item{}).Where("id = ?", item.ID).Update("category_id", nil).Error)
	assert.NoError(t, db.Create(&models.RestaurantCategory{
		RestaurantID: restaurant.ID,
		CategoryID:   category.ID,
		IsActive:     true,
	}).Error)

	w = doJSON(r, http.MethodDelete, "/categories/"+category.UUID, testOwnerID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var associations int64
	db.Model(&models.RestaurantCategory{}).Where("category_id = ?", category.ID).Count(&associations)
	assert.Equal(t, int64(0), associations)
}

func TestReorderCategories(t *testing.T) {
	db := setupTestDB(t)
	first := seedCategory(t, db, "Premier")
	second := seedCategory(t, db, "Deuxieme")
	r := setupCategoryRouter(db)

	w := doJSON(r, http.MethodPost, "/categories/reorder", testOwnerID, map[string]interface{}{
		"categories": []map[string]string{
			{"uuid": second.UUID},
			{"uuid": first.UUID},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var reloadedFirst, reloadedSecond models.Category
	db.First(&reloadedFirst, first.ID)
	db.First(&reloadedSecond, second.ID)
	assert.Equal(t, 2, reloadedFirst.SortOrder)
	assert.Equal(t, 1, reloadedSecond.SortOrder)
}

func TestReorderUnknownCategoryRollsBack(t *testing.T) {
	db := setupTestDB(t)
	known := seedCategory(t, db, "Connu")
	r := setupCategoryRouter(db)

	w := doJSON(r, http.MethodPost, "/categories/reorder", testOwnerID, map[string]interface{}{
		"categories": []map[string]string{
			{"uuid": known.UUID},
			{"uuid": "does-not-exist"},
		},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)

	var reloaded models.Category
	db.First(&reloaded, known.ID)
	assert.Equal(t, 0, reloaded.SortOrder)
}
