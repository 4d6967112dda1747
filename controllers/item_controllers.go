package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-service/models"
	"restaurant-service/utils"
)

type ItemController struct {
	DB *gorm.DB
}

func NewItemController(db *gorm.DB) *ItemController {
	return &ItemController{DB: db}
}

type CreateItemRequest struct {
	Name            string                 `json:"name" binding:"required,min=2,max=100"`
	Description     string                 `json:"description" binding:"max=500"`
	Price           *float64               `json:"price" binding:"required,gt=0,lte=999.99"`
	OriginalPrice   *float64               `json:"originalPrice" binding:"omitempty,gt=0,lte=999.99"`
	CategoryID      *uint                  `json:"categoryId"`
	IsAvailable     *bool                  `json:"isAvailable"`
	PreparationTime *int                   `json:"preparationTime" binding:"omitempty,gte=0,lte=180"`
	Calories        int                    `json:"calories" binding:"gte=0,lte=5000"`
	Allergens       models.StringList      `json:"allergens"`
	NutritionalInfo models.NutritionalInfo `json:"nutritionalInfo"`
	Ingredients     models.StringList      `json:"ingredients"`
	Images          models.StringList      `json:"images"`
	Tags            models.StringList      `json:"tags"`
	IsVegetarian    bool                   `json:"isVegetarian"`
	IsVegan         bool                   `json:"isVegan"`
	IsGlutenFree    bool                   `json:"isGlutenFree"`
	IsSpicy         bool                   `json:"isSpicy"`
	SpicyLevel      int                    `json:"spicyLevel" binding:"gte=0,lte=5"`
	SortOrder       int                    `json:"sortOrder"`
}

type UpdateItemRequest struct {
	Name            *string                 `json:"name" binding:"omitempty,min=2,max=100"`
	Description     *string                 `json:"description" binding:"omitempty,max=500"`
	Price           *float64                `json:"price" binding:"omitempty,gt=0,lte=999.99"`
	OriginalPrice   *float64                `json:"originalPrice" binding:"omitempty,gt=0,lte=999.99"`
	CategoryID      *uint                   `json:"categoryId"`
	IsAvailable     *bool                   `json:"isAvailable"`
	PreparationTime *int                    `json:"preparationTime" binding:"omitempty,gte=0,lte=180"`
	Calories        *int                    `json:"calories" binding:"omitempty,gte=0,lte=5000"`
	Allergens       *models.StringList      `json:"allergens"`
	NutritionalInfo *models.NutritionalInfo `json:"nutritionalInfo"`
	Ingredients     *models.StringList      `json:"ingredients"`
	Images          *models.StringList      `json:"images"`
	Tags            *models.StringList      `json:"tags"`
	IsVegetarian    *bool                   `json:"isVegetarian"`
	IsVegan         *bool                   `json:"isVegan"`
	IsGlutenFree    *bool                   `json:"isGlutenFree"`
	IsSpicy         *bool                   `json:"isSpicy"`
	SpicyLevel      *int                    `json:"spicyLevel" binding:"omitempty,gte=0,lte=5"`
	IsPopular       *bool                   `json:"isPopular"`
	IsFeatured      *bool                   `json:"isFeatured"`
	SortOrder       *int                    `json:"sortOrder"`
}

// ownedItem resolves an item by UUID scoped to the owner's restaurant. An
// item belonging to someone else looks exactly like a missing one.
func (ic *ItemController) ownedItem(tx *gorm.DB, restaurantID uint, uuid string) (*models.Item, error) {
	var item models.Item
	err := tx.Where("uuid = ? AND restaurant_id = ?", uuid, restaurantID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("The item does not exist or does not belong to your restaurant")
		}
		return nil, err
	}
	return &item, nil
}

// Create adds an item to the owner's restaurant. A discount is only valid
// when the original price strictly exceeds the current price, and item names
// are unique within a restaurant.
func (ic *ItemController) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(ic.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if req.OriginalPrice != nil && *req.OriginalPrice <= *req.Price {
		utils.RespondAppError(c, utils.ValidationError(
			"Original price must be higher than the current price",
			map[string]string{"originalPrice": "Original price must be higher than current price"}))
		return
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := ic.DB.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondAppError(c, utils.InvalidReferenceError(
					"The selected category does not exist",
					map[string]string{"categoryId": "Please select a valid category"}))
				return
			}
			utils.RespondAppError(c, err)
			return
		}
	}

	name := strings.TrimSpace(req.Name)
	var existing models.Item
	if err := ic.DB.Where("restaurant_id = ? AND name = ?", restaurant.ID, name).First(&existing).Error; err == nil {
		utils.RespondAppError(c, utils.DuplicateError(
			"An item with this name already exists in your restaurant",
			map[string]string{"name": "This item name is already taken"}))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondAppError(c, err)
		return
	}

	item := models.Item{
		RestaurantID:    restaurant.ID,
		CategoryID:      req.CategoryID,
		Name:            name,
		Description:     req.Description,
		Price:           *req.Price,
		OriginalPrice:   req.OriginalPrice,
		IsAvailable:     true,
		PreparationTime: 15,
		Calories:        req.Calories,
		Allergens:       req.Allergens,
		NutritionalInfo: req.NutritionalInfo,
		Ingredients:     req.Ingredients,
		Images:          req.Images,
		Tags:            req.Tags,
		IsVegetarian:    req.IsVegetarian,
		IsVegan:         req.IsVegan,
		IsGlutenFree:    req.IsGlutenFree,
		IsSpicy:         req.IsSpicy,
		SpicyLevel:      req.SpicyLevel,
		SortOrder:       req.SortOrder,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.PreparationTime != nil {
		item.PreparationTime = *req.PreparationTime
	}

	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	ic.DB.Preload("Category").First(&item, item.ID)
	utils.RespondJSON(c, http.StatusCreated, "Item created successfully", item)
}

// List returns the owner's items with category, availability, search, price
// range and allergen filters.
func (ic *ItemController) List(c *gin.Context) {
	restaurant, err := ownerRestaurant(ic.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	page, limit := utils.ParsePagination(c, 50, 100)

	query := ic.DB.Model(&models.Item{}).Where("restaurant_id = ?", restaurant.ID)

	if categoryID := c.Query("categoryId"); categoryID != "" {
		if id, err := strconv.Atoi(categoryID); err == nil {
			query = query.Where("category_id = ?", id)
		}
	}
	if isAvailable := c.Query("isAvailable"); isAvailable != "" {
		query = query.Where("is_available = ?", isAvailable == "true")
	}
	searchTerm := strings.TrimSpace(c.Query("search"))
	if searchTerm == "" {
		searchTerm = strings.TrimSpace(c.Query("q"))
	}
	if searchTerm != "" {
		like := "%" + searchTerm + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if minPrice := c.Query("minPrice"); minPrice != "" {
		if v, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", v)
		}
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		if v, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", v)
		}
	}
	if allergens := c.Query("allergens"); allergens != "" {
		// Allergen lists are stored serialized, so match each token as text.
		for _, allergen := range strings.Split(allergens, ",") {
			allergen = strings.TrimSpace(allergen)
			if allergen != "" {
				query = query.Where("allergens LIKE ?", "%"+allergen+"%")
			}
		}
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var items []models.Item
	err = query.
		Preload("Category").
		Order("sort_order ASC, is_popular DESC, created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of items", gin.H{
		"items":      items,
		"pagination": utils.NewPagination(page, limit, count),
	})
}

// Update modifies an owned item. The discount rule is re-checked against the
// stored value when only one of the two prices is supplied.
func (ic *ItemController) Update(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(ic.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	item, err := ic.ownedItem(ic.DB, restaurant.ID, c.Param("itemUuid"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	newPrice := item.Price
	if req.Price != nil {
		newPrice = *req.Price
	}
	newOriginal := item.OriginalPrice
	if req.OriginalPrice != nil {
		newOriginal = req.OriginalPrice
	}
	if newOriginal != nil && *newOriginal <= newPrice {
		utils.RespondAppError(c, utils.ValidationError(
			"Original price must be higher than the current price",
			map[string]string{"originalPrice": "Original price must be higher than current price"}))
		return
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := ic.DB.First(&category, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondAppError(c, utils.InvalidReferenceError(
					"The selected category does not exist",
					map[string]string{"categoryId": "Please select a valid category"}))
				return
			}
			utils.RespondAppError(c, err)
			return
		}
		item.CategoryID = req.CategoryID
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != item.Name {
			var existing models.Item
			err := ic.DB.Where("restaurant_id = ? AND name = ? AND id <> ?", restaurant.ID, name, item.ID).
				First(&existing).Error
			if err == nil {
				utils.RespondAppError(c, utils.DuplicateError(
					"An item with this name already exists in your restaurant",
					map[string]string{"name": "This item name is already taken"}))
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondAppError(c, err)
				return
			}
			item.Name = name
		}
	}

	item.Price = newPrice
	item.OriginalPrice = newOriginal
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.PreparationTime != nil {
		item.PreparationTime = *req.PreparationTime
	}
	if req.Calories != nil {
		item.Calories = *req.Calories
	}
	if req.Allergens != nil {
		item.Allergens = *req.Allergens
	}
	if req.NutritionalInfo != nil {
		item.NutritionalInfo = *req.NutritionalInfo
	}
	if req.Ingredients != nil {
		item.Ingredients = *req.Ingredients
	}
	if req.Images != nil {
		item.Images = *req.Images
	}
	if req.Tags != nil {
		item.Tags = *req.Tags
	}
	if req.IsVegetarian != nil {
		item.IsVegetarian = *req.IsVegetarian
	}
	if req.IsVegan != nil {
		item.IsVegan = *req.IsVegan
	}
	if req.IsGlutenFree != nil {
		item.IsGlutenFree = *req.IsGlutenFree
	}
	if req.IsSpicy != nil {
		item.IsSpicy = *req.IsSpicy
	}
	if req.SpicyLevel != nil {
		item.SpicyLevel = *req.SpicyLevel
	}
	if req.IsPopular != nil {
		item.IsPopular = *req.IsPopular
	}
	if req.IsFeatured != nil {
		item.IsFeatured = *req.IsFeatured
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	if err := ic.DB.Save(item).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	ic.DB.Preload("Category").First(item, item.ID)
	utils.RespondJSON(c, http.StatusOK, "Item updated successfully", item)
}

func (ic *ItemController) Delete(c *gin.Context) {
	restaurant, err := ownerRestaurant(ic.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	item, err := ic.ownedItem(ic.DB, restaurant.ID, c.Param("itemUuid"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if err := ic.DB.Delete(item).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Item deleted successfully", gin.H{
		"deletedItem": gin.H{
			"id":   item.ID,
			"uuid": item.UUID,
			"name": item.Name,
		},
	})
}

func (ic *ItemController) ToggleAvailability(c *gin.Context) {
	restaurant, err := ownerRestaurant(ic.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	item, err := ic.ownedItem(ic.DB, restaurant.ID, c.Param("itemUuid"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	item.IsAvailable = !item.IsAvailable
	if err := ic.DB.Model(item).Update("is_available", item.IsAvailable).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Item made unavailable"
	if item.IsAvailable {
		message = "Item made available"
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"id":          item.ID,
		"uuid":        item.UUID,
		"name":        item.Name,
		"isAvailable": item.IsAvailable,
	})
}

// Popular lists popular, available items, optionally scoped to one active
// restaurant. Public endpoint.
func (ic *ItemController) Popular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	query := ic.DB.Where("is_available = ? AND is_popular = ?", true, true)

	if restaurantUUID := c.Query("restaurantUuid"); restaurantUUID != "" {
		var restaurant models.Restaurant
		if err := ic.DB.Where("uuid = ? AND is_active = ?", restaurantUUID, true).First(&restaurant).Error; err == nil {
			query = query.Where("restaurant_id = ?", restaurant.ID)
		}
	}

	var items []models.Item
	err := query.
		Preload("Category").
		Preload("Restaurant").
		Order("order_count DESC, rating DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Popular items", gin.H{
		"items": items,
		"count": len(items),
	})
}

// Search finds available items in open restaurants. The query must be at
// least two characters.
func (ic *ItemController) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		utils.RespondAppError(c, utils.ValidationError("Search query must be at least 2 characters long", nil))
		return
	}

	page, limit := utils.ParsePagination(c, 20, 50)

	like := "%" + q + "%"
	query := ic.DB.Model(&models.Item{}).
		Joins("JOIN restaurants ON restaurants.id = items.restaurant_id").
		Where("items.is_available = ?", true).
		Where("items.name LIKE ? OR items.description LIKE ?", like, like).
		Where("restaurants.is_active = ? AND restaurants.is_open = ?", true, true)

	if city := c.Query("city"); city != "" {
		query = query.Where("restaurants.city = ?", city)
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		if id, err := strconv.Atoi(categoryID); err == nil {
			query = query.Where("items.category_id = ?", id)
		}
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var items []models.Item
	err := query.
		Preload("Category").
		Preload("Restaurant").
		Order("items.rating DESC, items.order_count DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Items found", gin.H{
		"items":       items,
		"pagination":  utils.NewPagination(page, limit, count),
		"searchQuery": q,
	})
}

type BulkUpdateItemsRequest struct {
	Items []struct {
		UUID        string   `json:"uuid" binding:"required"`
		IsAvailable *bool    `json:"isAvailable"`
		Price       *float64 `json:"price" binding:"omitempty,gt=0,lte=999.99"`
		SortOrder   *int     `json:"sortOrder"`
	} `json:"items" binding:"required,min=1,max=50"`
}

// BulkUpdate applies availability, price and sort order changes to up to 50
// owned items in one transaction.
func (ic *ItemController) BulkUpdate(c *gin.Context) {
	var req BulkUpdateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(ic.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var updated int64
	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		for _, entry := range req.Items {
			changes := map[string]interface{}{}
			if entry.IsAvailable != nil {
				changes["is_available"] = *entry.IsAvailable
			}
			if entry.Price != nil {
				changes["price"] = *entry.Price
			}
			if entry.SortOrder != nil {
				changes["sort_order"] = *entry.SortOrder
			}
			if len(changes) == 0 {
				continue
			}

			result := tx.Model(&models.Item{}).
				Where("uuid = ? AND restaurant_id = ?", entry.UUID, restaurant.ID).
				Updates(changes)
			if result.Error != nil {
				return result.Error
			}
			updated += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Items updated successfully", gin.H{
		"updatedCount": updated,
	})
}
