package models

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID                  uint         `gorm:"primaryKey" json:"id"`
	UUID                string       `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	OwnerID             string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"ownerId"`
	Name                string       `gorm:"type:varchar(255);not null" json:"name"`
	Description         string       `gorm:"type:text" json:"description,omitempty"`
	CuisineType         string       `gorm:"type:varchar(100);index" json:"cuisineType,omitempty"`
	Phone               string       `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email               string       `gorm:"type:varchar(255)" json:"email,omitempty"`
	Address             string       `gorm:"type:text;not null" json:"address"`
	City                string       `gorm:"type:varchar(100);not null;index" json:"city"`
	PostalCode          string       `gorm:"type:varchar(20);not null" json:"postalCode"`
	Country             string       `gorm:"type:varchar(100);default:France" json:"country"`
	Latitude            *float64     `gorm:"type:decimal(10,8)" json:"latitude,omitempty"`
	Longitude           *float64     `gorm:"type:decimal(11,8)" json:"longitude,omitempty"`
	IsActive            bool         `gorm:"default:true;index" json:"isActive"`
	IsVerified          bool         `gorm:"default:false" json:"isVerified"`
	IsOpen              bool         `gorm:"default:false;index" json:"isOpen"`
	Rating              float64      `gorm:"type:decimal(3,2);default:0" json:"rating"`
	ReviewCount         int          `gorm:"default:0" json:"reviewCount"`
	DeliveryFee         float64      `gorm:"type:decimal(10,2);default:0" json:"deliveryFee"`
	MinimumOrder        float64      `gorm:"type:decimal(10,2);default:0" json:"minimumOrder"`
	AverageDeliveryTime int          `gorm:"default:30" json:"averageDeliveryTime"`
	OpeningHours        OpeningHours `gorm:"type:text" json:"openingHours"`
	ProfileImage        string       `gorm:"type:varchar(255)" json:"profileImage,omitempty"`
	BannerImage         string       `gorm:"type:varchar(255)" json:"bannerImage,omitempty"`
	Tags                StringList   `gorm:"type:text" json:"tags"`
	BusinessLicense     string       `gorm:"type:varchar(100)" json:"-"`
	Settings            JSONMap      `gorm:"type:text" json:"settings"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`

	Items   []Item           `gorm:"foreignKey:RestaurantID" json:"items,omitempty"`
	Menus   []Menu           `gorm:"foreignKey:RestaurantID" json:"menus,omitempty"`
	Reviews []Review         `gorm:"foreignKey:RestaurantID" json:"reviews,omitempty"`
	Stats   []RestaurantStat `gorm:"foreignKey:RestaurantID" json:"stats,omitempty"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	return nil
}

// IsOpenNow reports whether the restaurant is accepting orders at the given
// moment. Opening hours spanning midnight are not supported: a close time
// earlier than the open time never matches.
func (r *Restaurant) IsOpenNow(now time.Time) bool {
	if !r.IsOpen || !r.IsActive {
		return false
	}

	today, ok := r.OpeningHours[strconv.Itoa(int(now.Weekday()))]
	if !ok || today.IsClosed || today.Open == nil || today.Close == nil {
		return false
	}

	currentTime := now.Hour()*100 + now.Minute()
	return currentTime >= *today.Open && currentTime <= *today.Close
}

const earthRadiusKm = 6371

// DistanceFrom returns the haversine distance in kilometers between the
// restaurant and the given coordinates, or nil when the restaurant has no
// stored location.
func (r *Restaurant) DistanceFrom(lat, lng float64) *float64 {
	if r.Latitude == nil || r.Longitude == nil {
		return nil
	}

	dLat := (lat - *r.Latitude) * math.Pi / 180
	dLng := (lng - *r.Longitude) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(*r.Latitude*math.Pi/180)*math.Cos(lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	d := earthRadiusKm * c
	return &d
}
