package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Item struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UUID            string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	RestaurantID    uint            `gorm:"not null;index" json:"restaurantId"`
	CategoryID      *uint           `gorm:"index" json:"categoryId,omitempty"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	Price           float64         `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice   *float64        `gorm:"type:decimal(10,2)" json:"originalPrice,omitempty"`
	IsAvailable     bool            `gorm:"default:true;index" json:"isAvailable"`
	PreparationTime int             `gorm:"default:15" json:"preparationTime"`
	Calories        int             `gorm:"default:0" json:"calories,omitempty"`
	Allergens       StringList      `gorm:"type:text" json:"allergens"`
	NutritionalInfo NutritionalInfo `gorm:"type:text" json:"nutritionalInfo"`
	Ingredients     StringList      `gorm:"type:text" json:"ingredients"`
	Images          StringList      `gorm:"type:text" json:"images"`
	Tags            StringList      `gorm:"type:text" json:"tags"`
	IsVegetarian    bool            `gorm:"default:false" json:"isVegetarian"`
	IsVegan         bool            `gorm:"default:false" json:"isVegan"`
	IsGlutenFree    bool            `gorm:"default:false" json:"isGlutenFree"`
	IsSpicy         bool            `gorm:"default:false" json:"isSpicy"`
	SpicyLevel      int             `gorm:"default:0" json:"spicyLevel"`
	Rating          float64         `gorm:"type:decimal(3,2);default:0" json:"rating"`
	ReviewCount     int             `gorm:"default:0" json:"reviewCount"`
	OrderCount      int             `gorm:"default:0" json:"orderCount"`
	IsPopular       bool            `gorm:"default:false;index" json:"isPopular"`
	IsFeatured      bool            `gorm:"default:false;index" json:"isFeatured"`
	SortOrder       int             `gorm:"default:0" json:"sortOrder"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Restaurant *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == "" {
		i.UUID = uuid.NewString()
	}
	return nil
}

// HasDiscount is true only when the original price strictly exceeds the
// current price.
func (i *Item) HasDiscount() bool {
	return i.OriginalPrice != nil && *i.OriginalPrice > i.Price
}

func (i *Item) DiscountPercentage() int {
	if !i.HasDiscount() {
		return 0
	}
	return int(math.Round((*i.OriginalPrice - i.Price) / *i.OriginalPrice * 100))
}
