package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-service/middlewares"
	"restaurant-service/models"
	"restaurant-service/utils"
)

type CategoryController struct {
	DB *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{DB: db}
}

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type CreateCategoryRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon"`
	Image         string   `json:"image"`
	Color         string   `json:"color"`
	IsActive      *bool    `json:"isActive"`
	SortOrder     int      `json:"sortOrder"`
	ParentID      *string  `json:"parentId"`
	RestaurantIDs []string `json:"restaurantIds"`
}

type UpdateCategoryRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Icon          *string   `json:"icon"`
	Image         *string   `json:"image"`
	Color         *string   `json:"color"`
	IsActive      *bool     `json:"isActive"`
	SortOrder     *int      `json:"sortOrder"`
	ParentID      *string   `json:"parentId"`
	RestaurantIDs *[]string `json:"restaurantIds"`
}

// categoryView optionally carries the restaurants joined through the
// association table.
type categoryView struct {
	models.Category
	Restaurants []models.Restaurant `json:"restaurants,omitempty"`
}

// List returns categories with optional search, activity and restaurant
// filters. Ordering follows the listing convention: sortOrder then name.
func (cc *CategoryController) List(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 50, 100)

	query := cc.DB.Model(&models.Category{})

	if isActive := c.Query("isActive"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if restaurantUUID := strings.TrimSpace(c.Query("restaurantId")); restaurantUUID != "" {
		var restaurant models.Restaurant
		if err := cc.DB.Where("uuid = ?", restaurantUUID).First(&restaurant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondAppError(c, utils.NotFoundError("Restaurant not found"))
				return
			}
			utils.RespondAppError(c, err)
			return
		}
		query = query.Where("id IN (?)", cc.DB.
			Model(&models.RestaurantCategory{}).
			Select("category_id").
			Where("restaurant_id = ?", restaurant.ID))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if c.Query("includeItems") == "true" {
		query = query.Preload("Items")
	}

	var categories []models.Category
	err := query.
		Order("sort_order ASC, name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&categories).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, cat := range categories {
		views = append(views, categoryView{Category: cat})
	}

	if c.Query("includeRestaurants") == "true" {
		for i := range views {
			restaurants, err := cc.categoryRestaurants(cc.DB, views[i].ID)
			if err != nil {
				utils.RespondAppError(c, err)
				return
			}
			views[i].Restaurants = restaurants
		}
	}

	utils.RespondJSON(c, http.StatusOK, "List of categories", gin.H{
		"categories": views,
		"pagination": utils.NewPagination(page, limit, count),
	})
}

func (cc *CategoryController) categoryRestaurants(db *gorm.DB, categoryID uint) ([]models.Restaurant, error) {
	restaurants := []models.Restaurant{}
	err := db.
		Joins("JOIN restaurant_categories rc ON rc.restaurant_id = restaurants.id").
		Where("rc.category_id = ?", categoryID).
		Find(&restaurants).Error
	return restaurants, err
}

func (cc *CategoryController) Get(c *gin.Context) {
	uuid := c.Param("uuid")

	query := cc.DB.Preload("Parent").Preload("Subcategories")
	if c.Query("includeItems") == "true" {
		query = query.Preload("Items", "is_available = ?", true)
	}

	var category models.Category
	if err := query.Where("uuid = ?", uuid).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFoundError("Category not found"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	view := categoryView{Category: category}
	if c.Query("includeRestaurants") == "true" {
		restaurants, err := cc.categoryRestaurants(cc.DB, category.ID)
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		view.Restaurants = restaurants
	}

	utils.RespondJSON(c, http.StatusOK, "Category detail", view)
}

// Create inserts a category and its optional restaurant associations in one
// transaction. Name and slug are globally unique.
func (cc *CategoryController) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.RespondAppError(c, utils.ValidationError("Category name is required", nil))
		return
	}
	if req.Color != "" && !hexColorPattern.MatchString(req.Color) {
		utils.RespondAppError(c, utils.ValidationError("Invalid color format. Use hex format (#RRGGBB)", nil))
		return
	}

	category := models.Category{
		Name:        name,
		Slug:        utils.Slugify(name),
		Description: strings.TrimSpace(req.Description),
		Icon:        req.Icon,
		Image:       req.Image,
		Color:       req.Color,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Category
		if err := tx.Where("name = ? OR slug = ?", category.Name, category.Slug).First(&existing).Error; err == nil {
			return utils.DuplicateError("Category with this name already exists", nil)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if req.ParentID != nil && *req.ParentID != "" {
			var parent models.Category
			if err := tx.Where("uuid = ?", *req.ParentID).First(&parent).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.InvalidReferenceError("Parent category not found", nil)
				}
				return err
			}
			category.ParentID = &parent.ID
		}

		if err := tx.Create(&category).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.DuplicateError("Category with this name already exists", nil)
			}
			return err
		}

		return cc.replaceAssociations(tx, &category, req.RestaurantIDs, middlewares.UserID(c))
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Category created successfully", category)
}

// replaceAssociations resolves restaurant UUIDs and rewrites the category's
// association rows. All UUIDs must resolve or nothing is written.
func (cc *CategoryController) replaceAssociations(tx *gorm.DB, category *models.Category, restaurantUUIDs []string, actorID string) error {
	if restaurantUUIDs == nil {
		return nil
	}

	if err := tx.Where("category_id = ?", category.ID).Delete(&models.RestaurantCategory{}).Error; err != nil {
		return err
	}
	if len(restaurantUUIDs) == 0 {
		return nil
	}

	var restaurants []models.Restaurant
	if err := tx.Where("uuid IN ?", restaurantUUIDs).Find(&restaurants).Error; err != nil {
		return err
	}
	if len(restaurants) != len(restaurantUUIDs) {
		return utils.InvalidReferenceError("One or more restaurant IDs are invalid", nil)
	}

	associations := make([]models.RestaurantCategory, 0, len(restaurants))
	for _, r := range restaurants {
		associations = append(associations, models.RestaurantCategory{
			RestaurantID: r.ID,
			CategoryID:   category.ID,
			IsActive:     true,
			AddedBy:      actorID,
		})
	}
	return tx.Create(&associations).Error
}

// Update modifies category fields, optionally rewrites its restaurant
// associations, and rejects a parent change that would close a cycle.
func (cc *CategoryController) Update(c *gin.Context) {
	uuid := c.Param("uuid")

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}
	if req.Color != nil && *req.Color != "" && !hexColorPattern.MatchString(*req.Color) {
		utils.RespondAppError(c, utils.ValidationError("Invalid color format. Use hex format (#RRGGBB)", nil))
		return
	}

	var category models.Category
	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uuid = ?", uuid).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Category not found")
			}
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return utils.ValidationError("Category name is required", nil)
			}
			if name != category.Name {
				var existing models.Category
				if err := tx.Where("name = ? AND id <> ?", name, category.ID).First(&existing).Error; err == nil {
					return utils.DuplicateError("Category with this name already exists", nil)
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				category.Name = name
				category.Slug = utils.Slugify(name)
			}
		}
		if req.Description != nil {
			category.Description = strings.TrimSpace(*req.Description)
		}
		if req.Icon != nil {
			category.Icon = *req.Icon
		}
		if req.Image != nil {
			category.Image = *req.Image
		}
		if req.Color != nil {
			category.Color = *req.Color
		}
		if req.IsActive != nil {
			category.IsActive = *req.IsActive
		}
		if req.SortOrder != nil {
			category.SortOrder = *req.SortOrder
		}

		if req.ParentID != nil {
			if *req.ParentID == "" {
				category.ParentID = nil
			} else {
				var parent models.Category
				if err := tx.Where("uuid = ?", *req.ParentID).First(&parent).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return utils.InvalidReferenceError("Parent category not found", nil)
					}
					return err
				}
				if err := ensureNoCycle(tx, category.ID, parent.ID); err != nil {
					return err
				}
				category.ParentID = &parent.ID
			}
		}

		if err := tx.Save(&category).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.DuplicateError("Category with this name already exists", nil)
			}
			return err
		}

		if req.RestaurantIDs != nil {
			return cc.replaceAssociations(tx, &category, *req.RestaurantIDs, middlewares.UserID(c))
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category updated successfully", category)
}

// ensureNoCycle walks the parent chain from the proposed parent upward and
// rejects the change when it reaches the category being updated.
func ensureNoCycle(tx *gorm.DB, categoryID, parentID uint) error {
	if categoryID == parentID {
		return utils.ValidationError("Category cannot be its own parent", nil)
	}

	current := parentID
	for {
		var node models.Category
		if err := tx.Select("id", "parent_id").First(&node, current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if node.ParentID == nil {
			return nil
		}
		if *node.ParentID == categoryID {
			return utils.ValidationError("Category parent would create a cycle", nil)
		}
		current = *node.ParentID
	}
}

// Delete removes a category and its restaurant associations. A category that
// still has items attached cannot be deleted.
func (cc *CategoryController) Delete(c *gin.Context) {
	uuid := c.Param("uuid")

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.Where("uuid = ?", uuid).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Category not found")
			}
			return err
		}

		var itemCount int64
		if err := tx.Model(&models.Item{}).Where("category_id = ?", category.ID).Count(&itemCount).Error; err != nil {
			return err
		}
		if itemCount > 0 {
			return utils.HasDependentsError("Cannot delete category that contains items. Please move or delete all items first.")
		}

		if err := tx.Where("category_id = ?", category.ID).Delete(&models.RestaurantCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category deleted successfully", nil)
}

// ListForRestaurant returns the categories attached to a restaurant.
func (cc *CategoryController) ListForRestaurant(c *gin.Context) {
	restaurantUUID := c.Param("restaurantUuid")

	var restaurant models.Restaurant
	if err := cc.DB.Where("uuid = ?", restaurantUUID).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFoundError("Restaurant not found"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	query := cc.DB.Model(&models.Category{}).
		Where("id IN (?)", cc.DB.
			Model(&models.RestaurantCategory{}).
			Select("category_id").
			Where("restaurant_id = ?", restaurant.ID))

	if c.DefaultQuery("activeOnly", "true") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if c.Query("includeItems") == "true" {
		query = query.Preload("Items", "is_available = ?", true)
	}

	var categories []models.Category
	if err := query.Order("sort_order ASC, name ASC").Find(&categories).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant categories", gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// Attach links a category to a restaurant. A second attach of the same pair
// is a conflict, never an upsert.
func (cc *CategoryController) Attach(c *gin.Context) {
	restaurantUUID := c.Param("restaurantUuid")
	categoryUUID := c.Param("categoryUuid")

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.Where("uuid = ?", restaurantUUID).First(&restaurant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Restaurant not found")
			}
			return err
		}
		var category models.Category
		if err := tx.Where("uuid = ?", categoryUUID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Category not found")
			}
			return err
		}

		var existing models.RestaurantCategory
		err := tx.Where("restaurant_id = ? AND category_id = ?", restaurant.ID, category.ID).
			First(&existing).Error
		if err == nil {
			return utils.DuplicateError("Category is already associated with this restaurant", nil)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		association := models.RestaurantCategory{
			RestaurantID: restaurant.ID,
			CategoryID:   category.ID,
			IsActive:     true,
			AddedBy:      middlewares.UserID(c),
		}
		if err := tx.Create(&association).Error; err != nil {
			if isUniqueViolation(err) {
				return utils.DuplicateError("Category is already associated with this restaurant", nil)
			}
			return err
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category added to restaurant successfully", nil)
}

// Detach removes a category-restaurant link. A missing association is
// reported as not found rather than silently succeeding.
func (cc *CategoryController) Detach(c *gin.Context) {
	restaurantUUID := c.Param("restaurantUuid")
	categoryUUID := c.Param("categoryUuid")

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		var restaurant models.Restaurant
		if err := tx.Where("uuid = ?", restaurantUUID).First(&restaurant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Restaurant not found")
			}
			return err
		}
		var category models.Category
		if err := tx.Where("uuid = ?", categoryUUID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Category not found")
			}
			return err
		}

		result := tx.Where("restaurant_id = ? AND category_id = ?", restaurant.ID, category.ID).
			Delete(&models.RestaurantCategory{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return utils.NotFoundError("Category is not associated with this restaurant")
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Category removed from restaurant successfully", nil)
}

type ReorderCategoriesRequest struct {
	Categories []struct {
		UUID string `json:"uuid" binding:"required"`
	} `json:"categories" binding:"required"`
}

// Reorder assigns sortOrder by list position, atomically. An unknown UUID
// rolls back the whole reorder.
func (cc *CategoryController) Reorder(c *gin.Context) {
	var req ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError("Categories must be an array", nil))
		return
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		for index, entry := range req.Categories {
			result := tx.Model(&models.Category{}).
				Where("uuid = ?", entry.UUID).
				Update("sort_order", index+1)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return utils.NotFoundError(fmt.Sprintf("Category with UUID %s not found", entry.UUID))
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Categories reordered successfully", nil)
}
