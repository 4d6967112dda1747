package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-service/models"
	"restaurant-service/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

type MenuItemInput struct {
	ItemID     uint    `json:"itemId" binding:"required"`
	Quantity   int     `json:"quantity" binding:"omitempty,gte=1"`
	IsOptional bool    `json:"isOptional"`
	ExtraPrice float64 `json:"extraPrice" binding:"gte=0"`
}

type CreateMenuRequest struct {
	Name            string            `json:"name" binding:"required,min=2,max=100"`
	Description     string            `json:"description" binding:"max=1000"`
	Price           *float64          `json:"price" binding:"required,gt=0"`
	OriginalPrice   *float64          `json:"originalPrice" binding:"omitempty,gt=0"`
	IsAvailable     *bool             `json:"isAvailable"`
	PreparationTime *int              `json:"preparationTime" binding:"omitempty,gte=0,lte=180"`
	Images          models.StringList `json:"images"`
	Tags            models.StringList `json:"tags"`
	IsPopular       bool              `json:"isPopular"`
	IsFeatured      bool              `json:"isFeatured"`
	ValidFrom       *time.Time        `json:"validFrom"`
	ValidUntil      *time.Time        `json:"validUntil"`
	SortOrder       int               `json:"sortOrder"`
	Items           []MenuItemInput   `json:"items"`
}

type UpdateMenuRequest struct {
	Name            *string            `json:"name" binding:"omitempty,min=2,max=100"`
	Description     *string            `json:"description" binding:"omitempty,max=1000"`
	Price           *float64           `json:"price" binding:"omitempty,gt=0"`
	OriginalPrice   *float64           `json:"originalPrice" binding:"omitempty,gt=0"`
	IsAvailable     *bool              `json:"isAvailable"`
	PreparationTime *int               `json:"preparationTime" binding:"omitempty,gte=0,lte=180"`
	Images          *models.StringList `json:"images"`
	Tags            *models.StringList `json:"tags"`
	IsPopular       *bool              `json:"isPopular"`
	IsFeatured      *bool              `json:"isFeatured"`
	ValidFrom       *time.Time         `json:"validFrom"`
	ValidUntil      *time.Time         `json:"validUntil"`
	SortOrder       *int               `json:"sortOrder"`
	Items           *[]MenuItemInput   `json:"items"`
}

// validateMenuItems checks that every referenced item exists, belongs to the
// restaurant and is available. A single bad reference fails the whole set.
func validateMenuItems(tx *gorm.DB, restaurantID uint, inputs []MenuItemInput) error {
	if len(inputs) == 0 {
		return nil
	}

	itemIDs := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		itemIDs = append(itemIDs, in.ItemID)
	}

	var count int64
	err := tx.Model(&models.Item{}).
		Where("id IN ? AND restaurant_id = ? AND is_available = ?", itemIDs, restaurantID, true).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count != int64(len(itemIDs)) {
		return utils.InvalidItemsError("Some items do not exist or are not available")
	}
	return nil
}

func menuLines(menuID uint, inputs []MenuItemInput) []models.MenuItem {
	lines := make([]models.MenuItem, 0, len(inputs))
	for _, in := range inputs {
		quantity := in.Quantity
		if quantity < 1 {
			quantity = 1
		}
		lines = append(lines, models.MenuItem{
			MenuID:     menuID,
			ItemID:     in.ItemID,
			Quantity:   quantity,
			IsOptional: in.IsOptional,
			ExtraPrice: in.ExtraPrice,
		})
	}
	return lines
}

func (mc *MenuController) ownedMenu(tx *gorm.DB, restaurantID uint, uuid string) (*models.Menu, error) {
	var menu models.Menu
	err := tx.Where("uuid = ? AND restaurant_id = ?", uuid, restaurantID).First(&menu).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Menu not found in your restaurant")
		}
		return nil, err
	}
	return &menu, nil
}

// Create builds a menu and its item associations in one transaction. Either
// the menu and every line commit together or nothing does.
func (mc *MenuController) Create(c *gin.Context) {
	var req CreateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	menu := models.Menu{
		RestaurantID:    restaurant.ID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           *req.Price,
		OriginalPrice:   req.OriginalPrice,
		IsAvailable:     true,
		PreparationTime: 20,
		Images:          req.Images,
		Tags:            req.Tags,
		IsPopular:       req.IsPopular,
		IsFeatured:      req.IsFeatured,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		SortOrder:       req.SortOrder,
	}
	if req.IsAvailable != nil {
		menu.IsAvailable = *req.IsAvailable
	}
	if req.PreparationTime != nil {
		menu.PreparationTime = *req.PreparationTime
	}

	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		if err := validateMenuItems(tx, restaurant.ID, req.Items); err != nil {
			return err
		}
		if err := tx.Create(&menu).Error; err != nil {
			return err
		}
		if len(req.Items) > 0 {
			return tx.Create(menuLines(menu.ID, req.Items)).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	mc.DB.Preload("Items.Item.Category").First(&menu, menu.ID)
	utils.RespondJSON(c, http.StatusCreated, "Menu created successfully", menu)
}

var menuSortFields = map[string]string{
	"name":       "name",
	"price":      "price",
	"sortOrder":  "sort_order",
	"isPopular":  "is_popular",
	"isFeatured": "is_featured",
}

// List returns the owner's menus with counts of available and featured menus
// alongside the page.
func (mc *MenuController) List(c *gin.Context) {
	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	page, limit := utils.ParsePagination(c, 20, 50)

	query := mc.DB.Model(&models.Menu{}).Where("restaurant_id = ?", restaurant.ID)

	if isAvailable := c.Query("isAvailable"); isAvailable != "" {
		query = query.Where("is_available = ?", isAvailable == "true")
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	orderColumn, ok := menuSortFields[c.DefaultQuery("sortBy", "sortOrder")]
	if !ok {
		orderColumn = "sort_order"
	}
	direction := "ASC"
	if strings.EqualFold(c.Query("sortOrder"), "desc") {
		direction = "DESC"
	}

	var menus []models.Menu
	err = query.
		Preload("Items.Item.Category").
		Order(orderColumn + " " + direction).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&menus).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var total, available, featured int64
	mc.DB.Model(&models.Menu{}).Where("restaurant_id = ?", restaurant.ID).Count(&total)
	mc.DB.Model(&models.Menu{}).Where("restaurant_id = ? AND is_available = ?", restaurant.ID, true).Count(&available)
	mc.DB.Model(&models.Menu{}).Where("restaurant_id = ? AND is_featured = ?", restaurant.ID, true).Count(&featured)

	utils.RespondJSON(c, http.StatusOK, "List of menus", gin.H{
		"menus": menus,
		"statistics": gin.H{
			"total":       total,
			"available":   available,
			"featured":    featured,
			"unavailable": total - available,
		},
		"pagination": utils.NewPagination(page, limit, count),
	})
}

// Get returns one owned menu with its nutritional summary.
func (mc *MenuController) Get(c *gin.Context) {
	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var menu models.Menu
	err = mc.DB.
		Preload("Items.Item.Category").
		Where("uuid = ? AND restaurant_id = ?", c.Param("menuUuid"), restaurant.ID).
		First(&menu).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFoundError("Menu not found in your restaurant"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu detail", gin.H{
		"menu":               menu,
		"nutritionalSummary": menu.NutritionalSummary(),
	})
}

// PublicList returns a restaurant's customer-visible menus: available and
// inside their validity window, with optional featured/popular/price filters.
func (mc *MenuController) PublicList(c *gin.Context) {
	var restaurant models.Restaurant
	err := mc.DB.Where("uuid = ? AND is_active = ?", c.Param("restaurantUuid"), true).
		First(&restaurant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFoundError("Restaurant not found or not active"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	now := time.Now()
	query := mc.DB.
		Where("restaurant_id = ? AND is_available = ?", restaurant.ID, true).
		Where("(valid_from IS NULL OR valid_from <= ?) AND (valid_until IS NULL OR valid_until >= ?)", now, now)

	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}
	if c.Query("popular") == "true" {
		query = query.Where("is_popular = ?", true)
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

	var menus []models.Menu
	err = query.
		Preload("Items.Item.Category").
		Order("is_featured DESC, is_popular DESC, sort_order ASC, price ASC").
		Find(&menus).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant menus", gin.H{
		"menus": menus,
		"restaurant": gin.H{
			"uuid":                restaurant.UUID,
			"name":                restaurant.Name,
			"isOpen":              restaurant.IsOpen,
			"isOpenNow":           restaurant.IsOpenNow(now),
			"deliveryFee":         restaurant.DeliveryFee,
			"minimumOrder":        restaurant.MinimumOrder,
			"averageDeliveryTime": restaurant.AverageDeliveryTime,
		},
	})
}

// Update modifies a menu. A present items key, even an empty list, replaces
// the entire association set; an absent key leaves it untouched.
func (mc *MenuController) Update(c *gin.Context) {
	var req UpdateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var menu *models.Menu
	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		menu, err = mc.ownedMenu(tx, restaurant.ID, c.Param("menuUuid"))
		if err != nil {
			return err
		}

		if req.Name != nil {
			menu.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			menu.Description = *req.Description
		}
		if req.Price != nil {
			menu.Price = *req.Price
		}
		if req.OriginalPrice != nil {
			menu.OriginalPrice = req.OriginalPrice
		}
		if req.IsAvailable != nil {
			menu.IsAvailable = *req.IsAvailable
		}
		if req.PreparationTime != nil {
			menu.PreparationTime = *req.PreparationTime
		}
		if req.Images != nil {
			menu.Images = *req.Images
		}
		if req.Tags != nil {
			menu.Tags = *req.Tags
		}
		if req.IsPopular != nil {
			menu.IsPopular = *req.IsPopular
		}
		if req.IsFeatured != nil {
			menu.IsFeatured = *req.IsFeatured
		}
		if req.ValidFrom != nil {
			menu.ValidFrom = req.ValidFrom
		}
		if req.ValidUntil != nil {
			menu.ValidUntil = req.ValidUntil
		}
		if req.SortOrder != nil {
			menu.SortOrder = *req.SortOrder
		}

		if err := tx.Save(menu).Error; err != nil {
			return err
		}

		if req.Items != nil {
			if err := tx.Where("menu_id = ?", menu.ID).Delete(&models.MenuItem{}).Error; err != nil {
				return err
			}
			if len(*req.Items) > 0 {
				if err := validateMenuItems(tx, restaurant.ID, *req.Items); err != nil {
					return err
				}
				if err := tx.Create(menuLines(menu.ID, *req.Items)).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	mc.DB.Preload("Items.Item.Category").First(menu, menu.ID)
	utils.RespondJSON(c, http.StatusOK, "Menu updated successfully", menu)
}

func (mc *MenuController) Delete(c *gin.Context) {
	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		menu, err := mc.ownedMenu(tx, restaurant.ID, c.Param("menuUuid"))
		if err != nil {
			return err
		}
		if err := tx.Where("menu_id = ?", menu.ID).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(menu).Error
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu deleted successfully", nil)
}

// ToggleAvailability sets or flips a menu's availability.
func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	var req struct {
		IsAvailable *bool `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	menu, err := mc.ownedMenu(mc.DB, restaurant.ID, c.Param("menuUuid"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if req.IsAvailable != nil {
		menu.IsAvailable = *req.IsAvailable
	} else {
		menu.IsAvailable = !menu.IsAvailable
	}

	if err := mc.DB.Model(menu).Update("is_available", menu.IsAvailable).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Menu made unavailable"
	if menu.IsAvailable {
		message = "Menu made available"
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"uuid":        menu.UUID,
		"name":        menu.Name,
		"isAvailable": menu.IsAvailable,
	})
}

type DuplicateMenuRequest struct {
	Name string `json:"name"`
}

// Duplicate copies a menu and its association rows under a new name. The
// copy always starts hidden: unavailable, not featured, not popular.
func (mc *MenuController) Duplicate(c *gin.Context) {
	var req DuplicateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}
	if len(strings.TrimSpace(req.Name)) < 2 {
		utils.RespondAppError(c, utils.ValidationError("New menu name is required", nil))
		return
	}

	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var copied models.Menu
	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		var original models.Menu
		err := tx.Preload("Items").
			Where("uuid = ? AND restaurant_id = ?", c.Param("menuUuid"), restaurant.ID).
			First(&original).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Menu not found in your restaurant")
			}
			return err
		}

		copied = models.Menu{
			RestaurantID:    original.RestaurantID,
			Name:            strings.TrimSpace(req.Name),
			Description:     original.Description,
			Price:           original.Price,
			OriginalPrice:   original.OriginalPrice,
			IsAvailable:     false,
			PreparationTime: original.PreparationTime,
			Images:          original.Images,
			Tags:            original.Tags,
			IsPopular:       false,
			IsFeatured:      false,
			ValidFrom:       original.ValidFrom,
			ValidUntil:      original.ValidUntil,
			SortOrder:       original.SortOrder,
		}
		if err := tx.Create(&copied).Error; err != nil {
			return err
		}

		if len(original.Items) > 0 {
			lines := make([]models.MenuItem, 0, len(original.Items))
			for _, line := range original.Items {
				lines = append(lines, models.MenuItem{
					MenuID:     copied.ID,
					ItemID:     line.ItemID,
					Quantity:   line.Quantity,
					IsOptional: line.IsOptional,
					ExtraPrice: line.ExtraPrice,
				})
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	mc.DB.Preload("Items.Item.Category").First(&copied, copied.ID)
	utils.RespondJSON(c, http.StatusCreated, "Menu duplicated successfully", copied)
}

type BulkSetAvailabilityRequest struct {
	MenuUUIDs   []string `json:"menuUuids" binding:"required,min=1"`
	IsAvailable *bool    `json:"isAvailable" binding:"required"`
}

// BulkSetAvailability flips availability on the caller's menus. UUIDs that
// don't belong to the caller are skipped silently; only the updated count
// tells the story.
func (mc *MenuController) BulkSetAvailability(c *gin.Context) {
	var req BulkSetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError("Menu UUIDs array and isAvailable are required", nil))
		return
	}

	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	result := mc.DB.Model(&models.Menu{}).
		Where("uuid IN ? AND restaurant_id = ?", req.MenuUUIDs, restaurant.ID).
		Update("is_available", *req.IsAvailable)
	if result.Error != nil {
		utils.RespondAppError(c, result.Error)
		return
	}

	message := "menu(s) made unavailable"
	if *req.IsAvailable {
		message = "menu(s) made available"
	}
	utils.RespondJSON(c, http.StatusOK, strconv.FormatInt(result.RowsAffected, 10)+" "+message, gin.H{
		"updatedCount":   result.RowsAffected,
		"totalRequested": len(req.MenuUUIDs),
	})
}

type menuAnalyticsRow struct {
	UUID             string  `json:"uuid"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	IsAvailable      bool    `json:"isAvailable"`
	IsFeatured       bool    `json:"isFeatured"`
	IsPopular        bool    `json:"isPopular"`
	TotalItems       int     `json:"totalItems"`
	AverageItemPrice float64 `json:"averageItemPrice"`
	MenuItemsCost    float64 `json:"menuItemsCost"`
	ProfitMargin     float64 `json:"profitMargin"`
}

// Analytics compares each menu's bundle price against the summed cost of its
// item lines.
func (mc *MenuController) Analytics(c *gin.Context) {
	restaurant, err := ownerRestaurant(mc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	query := mc.DB.Preload("Items.Item").Where("restaurant_id = ?", restaurant.ID)
	if menuUUID := c.Query("menuUuid"); menuUUID != "" {
		query = query.Where("uuid = ?", menuUUID)
	}

	var menus []models.Menu
	if err := query.Find(&menus).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	analytics := make([]menuAnalyticsRow, 0, len(menus))
	var priceSum, marginSum float64
	var available, featured, popular int

	for _, menu := range menus {
		var itemPriceSum, itemsCost float64
		for _, line := range menu.Items {
			itemPriceSum += line.Item.Price
			itemsCost += line.Item.Price * float64(line.Quantity)
		}

		row := menuAnalyticsRow{
			UUID:        menu.UUID,
			Name:        menu.Name,
			Price:       menu.Price,
			IsAvailable: menu.IsAvailable,
			IsFeatured:  menu.IsFeatured,
			IsPopular:   menu.IsPopular,
			TotalItems:  len(menu.Items),
		}
		if row.TotalItems > 0 {
			row.AverageItemPrice = roundCents(itemPriceSum / float64(row.TotalItems))
		}
		row.MenuItemsCost = roundCents(itemsCost)
		if itemsCost > 0 && menu.Price > 0 {
			row.ProfitMargin = roundCents((menu.Price - itemsCost) / menu.Price * 100)
		}
		analytics = append(analytics, row)

		priceSum += menu.Price
		marginSum += row.ProfitMargin
		if menu.IsAvailable {
			available++
		}
		if menu.IsFeatured {
			featured++
		}
		if menu.IsPopular {
			popular++
		}
	}

	summary := gin.H{
		"totalMenus":          len(menus),
		"availableMenus":      available,
		"featuredMenus":       featured,
		"popularMenus":        popular,
		"averageMenuPrice":    0.0,
		"averageProfitMargin": 0.0,
	}
	if len(menus) > 0 {
		summary["averageMenuPrice"] = roundCents(priceSum / float64(len(menus)))
		summary["averageProfitMargin"] = roundCents(marginSum / float64(len(menus)))
	}

	utils.RespondJSON(c, http.StatusOK, "Menu analytics", gin.H{
		"analytics": analytics,
		"summary":   summary,
	})
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
