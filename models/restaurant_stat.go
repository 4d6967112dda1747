package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RestaurantStat is one day of raw counters for a restaurant, unique per
// (restaurant, date). Date uses the ISO form YYYY-MM-DD.
type RestaurantStat struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UUID         string `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	RestaurantID uint   `gorm:"not null;uniqueIndex:idx_restaurant_date;index" json:"restaurantId"`
	Date         string `gorm:"type:varchar(10);not null;uniqueIndex:idx_restaurant_date;index" json:"date"`

	// Orders
	TotalOrders     int `gorm:"default:0" json:"totalOrders"`
	CompletedOrders int `gorm:"default:0" json:"completedOrders"`
	CancelledOrders int `gorm:"default:0" json:"cancelledOrders"`
	RefundedOrders  int `gorm:"default:0" json:"refundedOrders"`

	// Revenue
	TotalRevenue       float64 `gorm:"type:decimal(12,2);default:0" json:"totalRevenue"`
	NetRevenue         float64 `gorm:"type:decimal(12,2);default:0" json:"netRevenue"`
	AverageOrderValue  float64 `gorm:"type:decimal(10,2);default:0" json:"averageOrderValue"`
	DeliveryFeeRevenue float64 `gorm:"type:decimal(10,2);default:0" json:"deliveryFeeRevenue"`
	TaxAmount          float64 `gorm:"type:decimal(10,2);default:0" json:"taxAmount"`

	// Delivery performance
	AveragePreparationTime int `gorm:"default:0" json:"averagePreparationTime"`
	AverageDeliveryTime    int `gorm:"default:0" json:"averageDeliveryTime"`
	OnTimeDeliveries       int `gorm:"default:0" json:"onTimeDeliveries"`
	LateDeliveries         int `gorm:"default:0" json:"lateDeliveries"`

	// Items
	ItemsSold        int   `gorm:"default:0" json:"itemsSold"`
	UniqueItemsSold  int   `gorm:"default:0" json:"uniqueItemsSold"`
	TopSellingItemID *uint `json:"topSellingItemId,omitempty"`
	MenusSold        int   `gorm:"default:0" json:"menusSold"`

	// Customers
	TotalCustomers        int     `gorm:"default:0" json:"totalCustomers"`
	NewCustomers          int     `gorm:"default:0" json:"newCustomers"`
	ReturningCustomers    int     `gorm:"default:0" json:"returningCustomers"`
	CustomerRetentionRate float64 `gorm:"type:decimal(5,2);default:0" json:"customerRetentionRate"`

	// Ratings
	AverageRating   float64 `gorm:"type:decimal(3,2);default:0" json:"averageRating"`
	TotalReviews    int     `gorm:"default:0" json:"totalReviews"`
	PositiveReviews int     `gorm:"default:0" json:"positiveReviews"`
	NegativeReviews int     `gorm:"default:0" json:"negativeReviews"`

	// Operations
	HoursOpen             float64 `gorm:"type:decimal(4,2);default:0" json:"hoursOpen"`
	PeakHourOrders        int     `gorm:"default:0" json:"peakHourOrders"`
	PeakHour              *int    `json:"peakHour,omitempty"`
	OrderCancellationRate float64 `gorm:"type:decimal(5,2);default:0" json:"orderCancellationRate"`

	// Funnel
	ViewCount            int     `gorm:"default:0" json:"viewCount"`
	ConversionRate       float64 `gorm:"type:decimal(5,2);default:0" json:"conversionRate"`
	AverageItemsPerOrder float64 `gorm:"type:decimal(4,2);default:0" json:"averageItemsPerOrder"`

	LastCalculated time.Time `json:"lastCalculated"`
	DataSource     string    `gorm:"type:varchar(20);default:automated" json:"dataSource"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	TopSellingItem *Item `gorm:"foreignKey:TopSellingItemID" json:"topSellingItem,omitempty"`
}

func (s *RestaurantStat) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}

// ComputeDerived fills the derived rate fields from the raw counters. Each
// computation is guarded by its denominator and leaves the field untouched
// when the denominator is zero. Runs before every persist, including upserts.
func (s *RestaurantStat) ComputeDerived() {
	if s.TotalOrders > 0 {
		s.OrderCancellationRate = float64(s.CancelledOrders) / float64(s.TotalOrders) * 100
	}
	if s.TotalRevenue > 0 && s.CompletedOrders > 0 {
		s.AverageOrderValue = s.TotalRevenue / float64(s.CompletedOrders)
	}
	if s.TotalCustomers > 0 {
		s.CustomerRetentionRate = float64(s.ReturningCustomers) / float64(s.TotalCustomers) * 100
	}
	if s.ViewCount > 0 {
		s.ConversionRate = float64(s.TotalOrders) / float64(s.ViewCount) * 100
	}
	if s.TotalOrders > 0 {
		s.AverageItemsPerOrder = float64(s.ItemsSold) / float64(s.TotalOrders)
	}
}

func (s *RestaurantStat) CompletionRate() float64 {
	if s.TotalOrders == 0 {
		return 0
	}
	return round2(float64(s.CompletedOrders) / float64(s.TotalOrders) * 100)
}

func (s *RestaurantStat) SuccessRate() float64 {
	if s.TotalOrders == 0 {
		return 0
	}
	successful := s.TotalOrders - s.CancelledOrders - s.RefundedOrders
	return round2(float64(successful) / float64(s.TotalOrders) * 100)
}

func (s *RestaurantStat) OnTimeDeliveryRate() float64 {
	total := s.OnTimeDeliveries + s.LateDeliveries
	if total == 0 {
		return 0
	}
	return round2(float64(s.OnTimeDeliveries) / float64(total) * 100)
}

func (s *RestaurantStat) PositiveReviewRate() float64 {
	if s.TotalReviews == 0 {
		return 0
	}
	return round2(float64(s.PositiveReviews) / float64(s.TotalReviews) * 100)
}
