package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-service/models"
	"restaurant-service/utils"
)

type StatsController struct {
	DB *gorm.DB
}

func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{DB: db}
}

const dateLayout = "2006-01-02"

// statsRange reads startDate/endDate query parameters, defaulting to the
// last 30 days.
func statsRange(c *gin.Context) (start, end string) {
	now := time.Now()
	end = now.Format(dateLayout)
	start = now.AddDate(0, 0, -30).Format(dateLayout)

	if s := c.Query("startDate"); s != "" {
		if _, err := time.Parse(dateLayout, s); err == nil {
			start = s
		}
	}
	if e := c.Query("endDate"); e != "" {
		if _, err := time.Parse(dateLayout, e); err == nil {
			end = e
		}
	}
	return start, end
}

// Get returns daily rows and their aggregate for a date range, optionally
// grouped by week or month and compared against the preceding period of the
// same length.
func (sc *StatsController) Get(c *gin.Context) {
	restaurant, err := ownerRestaurant(sc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	start, end := statsRange(c)

	var stats []models.RestaurantStat
	err = sc.DB.
		Preload("TopSellingItem").
		Where("restaurant_id = ? AND date BETWEEN ? AND ?", restaurant.ID, start, end).
		Order("date ASC").
		Find(&stats).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	aggregates := models.CalculateAggregates(stats)

	var daily interface{} = stats
	switch c.DefaultQuery("period", "daily") {
	case "weekly":
		daily = models.GroupStatsByWeek(stats)
	case "monthly":
		daily = models.GroupStatsByMonth(stats)
	}

	var comparison map[string]float64
	if c.Query("compare") == "true" {
		startDate, _ := time.Parse(dateLayout, start)
		endDate, _ := time.Parse(dateLayout, end)
		span := endDate.Sub(startDate)
		compareStart := startDate.Add(-span).Format(dateLayout)
		compareEnd := startDate.AddDate(0, 0, -1).Format(dateLayout)

		var previous []models.RestaurantStat
		err = sc.DB.
			Where("restaurant_id = ? AND date BETWEEN ? AND ?", restaurant.ID, compareStart, compareEnd).
			Find(&previous).Error
		if err != nil {
			utils.RespondAppError(c, err)
			return
		}
		comparison = models.CalculateGrowthRates(aggregates, models.CalculateAggregates(previous))
	}

	var today *models.RestaurantStat
	var todayRow models.RestaurantStat
	err = sc.DB.
		Where("restaurant_id = ? AND date = ?", restaurant.ID, time.Now().Format(dateLayout)).
		First(&todayRow).Error
	if err == nil {
		today = &todayRow
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant statistics", gin.H{
		"period": gin.H{
			"startDate": start,
			"endDate":   end,
			"totalDays": len(stats),
		},
		"aggregates": aggregates,
		"daily":      daily,
		"today":      today,
		"comparison": comparison,
	})
}

type UpsertDailyStatsRequest struct {
	Date string `json:"date"`

	TotalOrders     int `json:"totalOrders" binding:"gte=0"`
	CompletedOrders int `json:"completedOrders" binding:"gte=0"`
	CancelledOrders int `json:"cancelledOrders" binding:"gte=0"`
	RefundedOrders  int `json:"refundedOrders" binding:"gte=0"`

	TotalRevenue       float64 `json:"totalRevenue" binding:"gte=0"`
	NetRevenue         float64 `json:"netRevenue" binding:"gte=0"`
	DeliveryFeeRevenue float64 `json:"deliveryFeeRevenue" binding:"gte=0"`
	TaxAmount          float64 `json:"taxAmount" binding:"gte=0"`

	AveragePreparationTime int `json:"averagePreparationTime" binding:"gte=0"`
	AverageDeliveryTime    int `json:"averageDeliveryTime" binding:"gte=0"`
	OnTimeDeliveries       int `json:"onTimeDeliveries" binding:"gte=0"`
	LateDeliveries         int `json:"lateDeliveries" binding:"gte=0"`

	ItemsSold        int   `json:"itemsSold" binding:"gte=0"`
	UniqueItemsSold  int   `json:"uniqueItemsSold" binding:"gte=0"`
	TopSellingItemID *uint `json:"topSellingItemId"`
	MenusSold        int   `json:"menusSold" binding:"gte=0"`

	TotalCustomers     int `json:"totalCustomers" binding:"gte=0"`
	NewCustomers       int `json:"newCustomers" binding:"gte=0"`
	ReturningCustomers int `json:"returningCustomers" binding:"gte=0"`

	AverageRating   float64 `json:"averageRating" binding:"gte=0,lte=5"`
	TotalReviews    int     `json:"totalReviews" binding:"gte=0"`
	PositiveReviews int     `json:"positiveReviews" binding:"gte=0"`
	NegativeReviews int     `json:"negativeReviews" binding:"gte=0"`

	HoursOpen      float64 `json:"hoursOpen" binding:"gte=0,lte=24"`
	PeakHourOrders int     `json:"peakHourOrders" binding:"gte=0"`
	PeakHour       *int    `json:"peakHour" binding:"omitempty,gte=0,lte=23"`

	ViewCount  int    `json:"viewCount" binding:"gte=0"`
	DataSource string `json:"dataSource"`
	Notes      string `json:"notes"`
}

// UpsertDaily writes one day of counters. The storage layer resolves the
// insert-or-update on the (restaurant, date) unique pair so duplicate
// submissions for the same day cannot race each other.
func (sc *StatsController) UpsertDaily(c *gin.Context) {
	var req UpsertDailyStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondAppError(c, utils.ValidationError(err.Error(), nil))
		return
	}

	restaurant, err := ownerRestaurant(sc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		utils.RespondAppError(c, utils.ValidationError("date must be in YYYY-MM-DD format", nil))
		return
	}

	stat := models.RestaurantStat{
		RestaurantID:           restaurant.ID,
		Date:                   date,
		TotalOrders:            req.TotalOrders,
		CompletedOrders:        req.CompletedOrders,
		CancelledOrders:        req.CancelledOrders,
		RefundedOrders:         req.RefundedOrders,
		TotalRevenue:           req.TotalRevenue,
		NetRevenue:             req.NetRevenue,
		DeliveryFeeRevenue:     req.DeliveryFeeRevenue,
		TaxAmount:              req.TaxAmount,
		AveragePreparationTime: req.AveragePreparationTime,
		AverageDeliveryTime:    req.AverageDeliveryTime,
		OnTimeDeliveries:       req.OnTimeDeliveries,
		LateDeliveries:         req.LateDeliveries,
		ItemsSold:              req.ItemsSold,
		UniqueItemsSold:        req.UniqueItemsSold,
		TopSellingItemID:       req.TopSellingItemID,
		MenusSold:              req.MenusSold,
		TotalCustomers:         req.TotalCustomers,
		NewCustomers:           req.NewCustomers,
		ReturningCustomers:     req.ReturningCustomers,
		AverageRating:          req.AverageRating,
		TotalReviews:           req.TotalReviews,
		PositiveReviews:        req.PositiveReviews,
		NegativeReviews:        req.NegativeReviews,
		HoursOpen:              req.HoursOpen,
		PeakHourOrders:         req.PeakHourOrders,
		PeakHour:               req.PeakHour,
		ViewCount:              req.ViewCount,
		LastCalculated:         time.Now(),
		DataSource:             "automated",
		Notes:                  req.Notes,
	}
	if req.DataSource != "" {
		stat.DataSource = req.DataSource
	}
	stat.ComputeDerived()

	err = sc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "date"}},
		UpdateAll: true,
	}).Create(&stat).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Statistics saved successfully", stat)
}

// Summary is the dashboard view: today's numbers, trends over the last week
// and the best revenue day.
func (sc *StatsController) Summary(c *gin.Context) {
	restaurant, err := ownerRestaurant(sc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	sevenDaysAgo := time.Now().AddDate(0, 0, -7).Format(dateLayout)

	var recent []models.RestaurantStat
	err = sc.DB.
		Where("restaurant_id = ? AND date >= ?", restaurant.ID, sevenDaysAgo).
		Order("date DESC").
		Find(&recent).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	today := time.Now().Format(dateLayout)
	var todayView gin.H
	var bestDay gin.H
	var bestRevenue float64

	for _, stat := range recent {
		if stat.Date == today {
			todayView = gin.H{
				"orders":            stat.TotalOrders,
				"revenue":           stat.TotalRevenue,
				"averageOrderValue": stat.AverageOrderValue,
				"rating":            stat.AverageRating,
			}
		}
		if stat.TotalRevenue > bestRevenue {
			bestRevenue = stat.TotalRevenue
			bestDay = gin.H{
				"date":    stat.Date,
				"orders":  stat.TotalOrders,
				"revenue": stat.TotalRevenue,
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Statistics summary", gin.H{
		"today":           todayView,
		"trends":          models.CalculateTrends(recent),
		"bestDay":         bestDay,
		"weeklyAggregate": models.CalculateAggregates(recent),
	})
}

// Report assembles the full statistics report: per-day rows with derived
// rates, the range aggregate, insights, and chart series when requested.
func (sc *StatsController) Report(c *gin.Context) {
	restaurant, err := ownerRestaurant(sc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	start, end := statsRange(c)

	var stats []models.RestaurantStat
	err = sc.DB.
		Preload("TopSellingItem").
		Where("restaurant_id = ? AND date BETWEEN ? AND ?", restaurant.ID, start, end).
		Order("date ASC").
		Find(&stats).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	dailyStats := make([]gin.H, 0, len(stats))
	for _, stat := range stats {
		dailyStats = append(dailyStats, gin.H{
			"date":               stat.Date,
			"orders":             stat.TotalOrders,
			"revenue":            stat.TotalRevenue,
			"averageOrderValue":  stat.AverageOrderValue,
			"rating":             stat.AverageRating,
			"completionRate":     stat.CompletionRate(),
			"onTimeDeliveryRate": stat.OnTimeDeliveryRate(),
		})
	}

	report := gin.H{
		"restaurant": gin.H{
			"name": restaurant.Name,
			"uuid": restaurant.UUID,
		},
		"period": gin.H{
			"startDate": start,
			"endDate":   end,
			"totalDays": len(stats),
		},
		"summary":     models.CalculateAggregates(stats),
		"dailyStats":  dailyStats,
		"insights":    models.GenerateInsights(stats),
		"generatedAt": time.Now().Format(time.RFC3339),
	}

	if c.Query("includeCharts") == "true" {
		report["chartData"] = chartData(stats)
	}

	utils.RespondJSON(c, http.StatusOK, "Statistics report", gin.H{"report": report})
}

type chartPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

func chartData(stats []models.RestaurantStat) gin.H {
	revenue := make([]chartPoint, 0, len(stats))
	orders := make([]chartPoint, 0, len(stats))
	ratings := make([]chartPoint, 0, len(stats))

	for _, stat := range stats {
		revenue = append(revenue, chartPoint{X: stat.Date, Y: stat.TotalRevenue})
		orders = append(orders, chartPoint{X: stat.Date, Y: float64(stat.TotalOrders)})
		ratings = append(ratings, chartPoint{X: stat.Date, Y: stat.AverageRating})
	}

	return gin.H{
		"revenue": revenue,
		"orders":  orders,
		"ratings": ratings,
	}
}

type industryBenchmark struct {
	AvgOrderValue       float64 `json:"avgOrderValue"`
	AvgRating           float64 `json:"avgRating"`
	AvgCancellationRate float64 `json:"avgCancellationRate"`
	AvgRetentionRate    float64 `json:"avgRetentionRate"`
	RestaurantCount     int     `json:"restaurantCount"`
}

// Benchmarks compares the caller's last 30 days against anonymized averages
// of restaurants in the same city with the same cuisine.
func (sc *StatsController) Benchmarks(c *gin.Context) {
	restaurant, err := ownerRestaurant(sc.DB, c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30).Format(dateLayout)

	var myStats []models.RestaurantStat
	err = sc.DB.
		Where("restaurant_id = ? AND date >= ?", restaurant.ID, thirtyDaysAgo).
		Find(&myStats).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	myAggregates := models.CalculateAggregates(myStats)

	var industry industryBenchmark
	err = sc.DB.Raw(`
		SELECT
			COALESCE(AVG(rs.average_order_value), 0)     AS avg_order_value,
			COALESCE(AVG(rs.average_rating), 0)          AS avg_rating,
			COALESCE(AVG(rs.order_cancellation_rate), 0) AS avg_cancellation_rate,
			COALESCE(AVG(rs.customer_retention_rate), 0) AS avg_retention_rate,
			COUNT(DISTINCT rs.restaurant_id)             AS restaurant_count
		FROM restaurant_stats rs
		JOIN restaurants r ON rs.restaurant_id = r.id
		WHERE r.cuisine_type = ? AND r.city = ? AND r.id <> ? AND rs.date >= ?`,
		restaurant.CuisineType, restaurant.City, restaurant.ID, thirtyDaysAgo,
	).Scan(&industry).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Industry benchmarks", gin.H{
		"myPerformance": gin.H{
			"averageOrderValue": myAggregates.AverageOrderValue,
			"averageRating":     myAggregates.AverageRating,
			"cancellationRate":  myAggregates.CancellationRate,
		},
		"industryAverage": industry,
		"comparison": gin.H{
			"orderValueVsIndustry": percentageDifference(myAggregates.AverageOrderValue, industry.AvgOrderValue),
			"ratingVsIndustry":     percentageDifference(myAggregates.AverageRating, industry.AvgRating),
		},
		"criteria": gin.H{
			"cuisineType": restaurant.CuisineType,
			"city":        restaurant.City,
			"period":      "30 days",
		},
	})
}

func percentageDifference(mine, industry float64) float64 {
	if industry == 0 {
		if mine > 0 {
			return 100
		}
		return 0
	}
	return roundCents((mine - industry) / industry * 100)
}
