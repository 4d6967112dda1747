package controllers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"restaurant-service/middlewares"
	"restaurant-service/models"
	"restaurant-service/utils"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

type CreateRestaurantRequest struct {
	Name                string              `json:"name" binding:"required,min=2,max=100"`
	Description         string              `json:"description" binding:"max=1000"`
	CuisineType         string              `json:"cuisineType" binding:"max=100"`
	Phone               string              `json:"phone" binding:"max=20"`
	Email               string              `json:"email" binding:"omitempty,email"`
	Address             string              `json:"address" binding:"required,max=500"`
	City                string              `json:"city" binding:"required,max=100"`
	PostalCode          string              `json:"postalCode" binding:"required,max=20"`
	Country             string              `json:"country" binding:"max=100"`
	Latitude            *float64            `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude           *float64            `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	DeliveryFee         *float64            `json:"deliveryFee" binding:"omitempty,gte=0,lte=50"`
	MinimumOrder        *float64            `json:"minimumOrder" binding:"omitempty,gte=0"`
	AverageDeliveryTime *int                `json:"averageDeliveryTime" binding:"omitempty,gte=10,lte=120"`
	OpeningHours        models.OpeningHours `json:"openingHours"`
	ProfileImage        string              `json:"profileImage"`
	BannerImage         string              `json:"bannerImage"`
	Tags                models.StringList   `json:"tags"`
	Settings            models.JSONMap      `json:"settings"`
}

type UpdateRestaurantRequest struct {
	Name                *string              `json:"name" binding:"omitempty,min=2,max=100"`
	Description         *string              `json:"description" binding:"omitempty,max=1000"`
	CuisineType         *string              `json:"cuisineType" binding:"omitempty,max=100"`
	Phone               *string              `json:"phone" binding:"omitempty,max=20"`
	Email               *string              `json:"email" binding:"omitempty,email"`
	Address             *string              `json:"address" binding:"omitempty,max=500"`
	City                *string              `json:"city" binding:"omitempty,max=100"`
	PostalCode          *string              `json:"postalCode" binding:"omitempty,max=20"`
	Country             *string              `json:"country" binding:"omitempty,max=100"`
	Latitude            *float64             `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude           *float64             `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	DeliveryFee         *float64             `json:"deliveryFee" binding:"omitempty,gte=0,lte=50"`
	MinimumOrder        *float64             `json:"minimumOrder" binding:"omitempty,gte=0"`
	AverageDeliveryTime *int                 `json:"averageDeliveryTime" binding:"omitempty,gte=10,lte=120"`
	OpeningHours        *models.OpeningHours `json:"openingHours"`
	ProfileImage        *string              `json:"profileImage"`
	BannerImage         *string              `json:"bannerImage"`
	Tags                *models.StringList   `json:"tags"`
	Settings            *models.JSONMap      `json:"settings"`
}

// restaurantView augments the stored entity with the computed fields every
// public read returns.
type restaurantView struct {
	models.Restaurant
	IsOpenNow bool     `json:"isOpenNow"`
	Distance  *float64 `json:"distance,omitempty"`
}

func newRestaurantView(r models.Restaurant, now time.Time) restaurantView {
	return restaurantView{Restaurant: r, IsOpenNow: r.IsOpenNow(now)}
}

// Create registers the acting user's restaurant. The owner lookup is only a
// fast path for a friendly error; the unique index on owner_id is the
// authoritative guard against a concurrent double-create.
func (rc *RestaurantController) Create(c *gin.Context) {
	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	ownerID := middlewares.UserID(c)

	var existing models.Restaurant
	if err := rc.DB.Where("owner_id = ?", ownerID).First(&existing).Error; err == nil {
		utils.RespondAppError(c, utils.DuplicateError("You already have a restaurant registered", nil))
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondAppError(c, err)
		return
	}

	restaurant := models.Restaurant{
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		CuisineType:  req.CuisineType,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      "France",
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		OpeningHours: req.OpeningHours,
		ProfileImage: req.ProfileImage,
		BannerImage:  req.BannerImage,
		Tags:         req.Tags,
		Settings:     req.Settings,
	}
	if req.Country != "" {
		restaurant.Country = req.Country
	}
	if req.DeliveryFee != nil {
		restaurant.DeliveryFee = *req.DeliveryFee
	}
	if req.MinimumOrder != nil {
		restaurant.MinimumOrder = *req.MinimumOrder
	}
	restaurant.AverageDeliveryTime = 30
	if req.AverageDeliveryTime != nil {
		restaurant.AverageDeliveryTime = *req.AverageDeliveryTime
	}

	if err := rc.DB.Create(&restaurant).Error; err != nil {
		if isUniqueViolation(err) {
			utils.RespondAppError(c, utils.DuplicateError("You already have a restaurant registered", nil))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

// Get returns an active restaurant's public profile with its available items
// and menus, its latest visible reviews, and the distance from the caller
// when coordinates are supplied.
func (rc *RestaurantController) Get(c *gin.Context) {
	uuid := c.Param("uuid")

	var restaurant models.Restaurant
	err := rc.DB.
		Preload("Items", "is_available = ?", true).
		Preload("Items.Category").
		Preload("Menus", "is_available = ?", true).
		Preload("Menus.Items.Item").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_visible = ?", true).Order("created_at DESC").Limit(5)
		}).
		Where("uuid = ? AND is_active = ?", uuid, true).
		First(&restaurant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFoundError("No active restaurant found with the provided ID"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	view := newRestaurantView(restaurant, time.Now())
	if lat, lng, ok := parseCoordinates(c); ok {
		view.Distance = restaurant.DistanceFrom(lat, lng)
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", view)
}

// GetMy returns the owner's restaurant with everything attached, including
// the last 30 daily statistic rows.
func (rc *RestaurantController) GetMy(c *gin.Context) {
	ownerID := middlewares.UserID(c)

	var restaurant models.Restaurant
	err := rc.DB.
		Preload("Items.Category").
		Preload("Menus.Items.Item").
		Preload("Stats", func(db *gorm.DB) *gorm.DB {
			return db.Order("date DESC").Limit(30)
		}).
		Where("owner_id = ?", ownerID).
		First(&restaurant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, utils.NotFoundError("No restaurant found for your account"))
			return
		}
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

func (rc *RestaurantController) Update(c *gin.Context) {
	var req UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(rc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	applyRestaurantUpdate(restaurant, &req)

	if err := rc.DB.Save(restaurant).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant updated successfully", restaurant)
}

func applyRestaurantUpdate(r *models.Restaurant, req *UpdateRestaurantRequest) {
	if req.Name != nil {
		r.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.CuisineType != nil {
		r.CuisineType = *req.CuisineType
	}
	if req.Phone != nil {
		r.Phone = *req.Phone
	}
	if req.Email != nil {
		r.Email = *req.Email
	}
	if req.Address != nil {
		r.Address = *req.Address
	}
	if req.City != nil {
		r.City = *req.City
	}
	if req.PostalCode != nil {
		r.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		r.Country = *req.Country
	}
	if req.Latitude != nil {
		r.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		r.Longitude = req.Longitude
	}
	if req.DeliveryFee != nil {
		r.DeliveryFee = *req.DeliveryFee
	}
	if req.MinimumOrder != nil {
		r.MinimumOrder = *req.MinimumOrder
	}
	if req.AverageDeliveryTime != nil {
		r.AverageDeliveryTime = *req.AverageDeliveryTime
	}
	if req.OpeningHours != nil {
		r.OpeningHours = *req.OpeningHours
	}
	if req.ProfileImage != nil {
		r.ProfileImage = *req.ProfileImage
	}
	if req.BannerImage != nil {
		r.BannerImage = *req.BannerImage
	}
	if req.Tags != nil {
		r.Tags = *req.Tags
	}
	if req.Settings != nil {
		r.Settings = *req.Settings
	}
}

// ToggleStatus opens or closes the restaurant. Without an explicit isOpen in
// the body the current state is flipped.
func (rc *RestaurantController) ToggleStatus(c *gin.Context) {
	var req struct {
		IsOpen *bool `json:"isOpen"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(rc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if req.IsOpen != nil {
		restaurant.IsOpen = *req.IsOpen
	} else {
		restaurant.IsOpen = !restaurant.IsOpen
	}

	if err := rc.DB.Model(restaurant).Update("is_open", restaurant.IsOpen).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Restaurant closed successfully"
	if restaurant.IsOpen {
		message = "Restaurant opened successfully"
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{"isOpen": restaurant.IsOpen})
}

var restaurantSortFields = map[string]string{
	"rating":      "rating",
	"name":        "name",
	"deliveryFee": "delivery_fee",
	"reviewCount": "review_count",
	"createdAt":   "created_at",
}

// Search filters active restaurants by text, city, cuisine, rating, delivery
// fee and optionally by distance from a point. Geo filtering is done on the
// loaded rows so it works identically on every database backend.
func (rc *RestaurantController) Search(c *gin.Context) {
	page, limit := utils.ParsePagination(c, 20, 50)

	query := rc.DB.Model(&models.Restaurant{}).Where("is_active = ?", true)

	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR description LIKE ? OR cuisine_type LIKE ?", like, like, like)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if cuisine := c.Query("cuisineType"); cuisine != "" {
		query = query.Where("cuisine_type = ?", cuisine)
	}
	if c.Query("isOpen") == "true" {
		query = query.Where("is_open = ?", true)
	}
	if minRating := c.Query("minRating"); minRating != "" {
		if v, err := strconv.ParseFloat(minRating, 64); err == nil {
			query = query.Where("rating >= ?", v)
		}
	}
	if maxFee := c.Query("maxDeliveryFee"); maxFee != "" {
		if v, err := strconv.ParseFloat(maxFee, 64); err == nil {
			query = query.Where("delivery_fee <= ?", v)
		}
	}

	lat, lng, hasGeo := parseCoordinates(c)
	if hasGeo {
		radius := 10.0
		if r := c.Query("radius"); r != "" {
			if v, err := strconv.ParseFloat(r, 64); err == nil && v > 0 {
				radius = v
			}
		}

		var all []models.Restaurant
		if err := query.Find(&all).Error; err != nil {
			utils.RespondAppError(c, err)
			return
		}

		now := time.Now()
		views := make([]restaurantView, 0, len(all))
		for _, r := range all {
			d := r.DistanceFrom(lat, lng)
			if d == nil || *d > radius {
				continue
			}
			v := newRestaurantView(r, now)
			v.Distance = d
			views = append(views, v)
		}
		sort.Slice(views, func(i, j int) bool {
			return *views[i].Distance < *views[j].Distance
		})

		total := int64(len(views))
		start := (page - 1) * limit
		if start > len(views) {
			start = len(views)
		}
		end := start + limit
		if end > len(views) {
			end = len(views)
		}

		utils.RespondJSON(c, http.StatusOK, "Restaurants found", gin.H{
			"restaurants": views[start:end],
			"pagination":  utils.NewPagination(page, limit, total),
		})
		return
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}

	orderColumn, ok := restaurantSortFields[c.DefaultQuery("sortBy", "rating")]
	if !ok {
		orderColumn = "rating"
	}
	direction := "DESC"
	if strings.EqualFold(c.Query("sortOrder"), "asc") {
		direction = "ASC"
	}

	var restaurants []models.Restaurant
	err := query.
		Order(orderColumn + " " + direction).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&restaurants).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	now := time.Now()
	views := make([]restaurantView, 0, len(restaurants))
	for _, r := range restaurants {
		views = append(views, newRestaurantView(r, now))
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurants found", gin.H{
		"restaurants": views,
		"pagination":  utils.NewPagination(page, limit, count),
	})
}

// Popular lists open, active restaurants rated 4.0 or better.
func (rc *RestaurantController) Popular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	query := rc.DB.
		Where("is_active = ? AND is_open = ? AND rating >= ?", true, true, 4.0)
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var restaurants []models.Restaurant
	err := query.
		Order("rating DESC, review_count DESC").
		Limit(limit).
		Find(&restaurants).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	now := time.Now()
	views := make([]restaurantView, 0, len(restaurants))
	for _, r := range restaurants {
		views = append(views, newRestaurantView(r, now))
	}

	utils.RespondJSON(c, http.StatusOK, "Popular restaurants", gin.H{"restaurants": views})
}

// Nearby lists active restaurants within a radius of the given point, closest
// first. Latitude and longitude are required.
func (rc *RestaurantController) Nearby(c *gin.Context) {
	lat, lng, ok := parseCoordinates(c)
	if !ok {
		utils.RespondAppError(c, utils.ValidationError("Latitude and longitude are required", nil))
		return
	}

	radius := 5.0
	if r := c.Query("radius"); r != "" {
		if v, err := strconv.ParseFloat(r, 64); err == nil && v > 0 {
			radius = v
		}
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var restaurants []models.Restaurant
	err := rc.DB.
		Where("is_active = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", true).
		Find(&restaurants).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	now := time.Now()
	views := make([]restaurantView, 0, len(restaurants))
	for _, r := range restaurants {
		d := r.DistanceFrom(lat, lng)
		if d == nil || *d > radius {
			continue
		}
		v := newRestaurantView(r, now)
		v.Distance = d
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool {
		return *views[i].Distance < *views[j].Distance
	})
	if len(views) > limit {
		views = views[:limit]
	}

	utils.RespondJSON(c, http.StatusOK, "Nearby restaurants", gin.H{
		"restaurants": views,
		"searchCriteria": gin.H{
			"latitude":  lat,
			"longitude": lng,
			"radius":    radius,
		},
	})
}

func parseCoordinates(c *gin.Context) (lat, lng float64, ok bool) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" || lngStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
