package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Menu is a priced bundle of items. Its price is authoritative and never
// recomputed from the items it contains.
type Menu struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UUID            string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	RestaurantID    uint       `gorm:"not null;index" json:"restaurantId"`
	Name            string     `gorm:"type:varchar(255);not null" json:"name"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	Price           float64    `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice   *float64   `gorm:"type:decimal(10,2)" json:"originalPrice,omitempty"`
	IsAvailable     bool       `gorm:"default:true;index" json:"isAvailable"`
	PreparationTime int        `gorm:"default:20" json:"preparationTime"`
	Images          StringList `gorm:"type:text" json:"images"`
	Tags            StringList `gorm:"type:text" json:"tags"`
	IsPopular       bool       `gorm:"default:false;index" json:"isPopular"`
	IsFeatured      bool       `gorm:"default:false;index" json:"isFeatured"`
	ValidFrom       *time.Time `json:"validFrom,omitempty"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
	SortOrder       int        `gorm:"default:0" json:"sortOrder"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Items []MenuItem `gorm:"foreignKey:MenuID" json:"items,omitempty"`
}

func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.NewString()
	}
	return nil
}

// IsVisibleAt applies the availability window: both bounds are optional and a
// nil bound is open-ended.
func (m *Menu) IsVisibleAt(now time.Time) bool {
	if !m.IsAvailable {
		return false
	}
	if m.ValidFrom != nil && m.ValidFrom.After(now) {
		return false
	}
	if m.ValidUntil != nil && m.ValidUntil.Before(now) {
		return false
	}
	return true
}

// MenuItem is one line of a menu: which item, how many, whether the guest may
// skip it, and any surcharge on top of the menu price.
type MenuItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	MenuID     uint    `gorm:"not null;uniqueIndex:idx_menu_item;index" json:"menuId"`
	ItemID     uint    `gorm:"not null;uniqueIndex:idx_menu_item;index" json:"itemId"`
	Quantity   int     `gorm:"default:1" json:"quantity"`
	IsOptional bool    `gorm:"default:false" json:"isOptional"`
	ExtraPrice float64 `gorm:"type:decimal(10,2);default:0" json:"extraPrice"`

	Item Item `gorm:"foreignKey:ItemID" json:"item"`
}

// NutritionalSummary sums calories and macros across a menu's items weighted
// by line quantity.
type NutritionalSummary struct {
	TotalCalories      int     `json:"totalCalories"`
	TotalProtein       float64 `json:"totalProtein"`
	TotalCarbohydrates float64 `json:"totalCarbohydrates"`
	TotalFat           float64 `json:"totalFat"`
}

func (m *Menu) NutritionalSummary() NutritionalSummary {
	var calories, protein, carbs, fat float64

	for _, line := range m.Items {
		qty := float64(line.Quantity)
		if qty < 1 {
			qty = 1
		}
		calories += float64(line.Item.Calories) * qty
		protein += line.Item.NutritionalInfo.Protein * qty
		carbs += line.Item.NutritionalInfo.Carbs * qty
		fat += line.Item.NutritionalInfo.Fat * qty
	}

	return NutritionalSummary{
		TotalCalories:      int(math.Round(calories)),
		TotalProtein:       math.Round(protein*10) / 10,
		TotalCarbohydrates: math.Round(carbs*10) / 10,
		TotalFat:           math.Round(fat*10) / 10,
	}
}
