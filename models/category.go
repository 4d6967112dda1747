package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Icon        string    `gorm:"type:varchar(100)" json:"icon,omitempty"`
	Image       string    `gorm:"type:varchar(255)" json:"image,omitempty"`
	Color       string    `gorm:"type:varchar(7)" json:"color,omitempty"`
	IsActive    bool      `gorm:"default:true;index" json:"isActive"`
	SortOrder   int       `gorm:"default:0;index" json:"sortOrder"`
	ParentID    *uint     `gorm:"index" json:"parentId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Parent        *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Subcategories []Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`
	Items         []Item     `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	return nil
}

// RestaurantCategory links a category to a restaurant. The pair is unique: a
// second attach of the same category is an error, not an upsert.
type RestaurantCategory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;uniqueIndex:idx_restaurant_category;index" json:"restaurantId"`
	CategoryID   uint      `gorm:"not null;uniqueIndex:idx_restaurant_category;index" json:"categoryId"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	AddedBy      string    `gorm:"type:varchar(64)" json:"addedBy,omitempty"`
	AddedAt      time.Time `json:"addedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (rc *RestaurantCategory) BeforeCreate(tx *gorm.DB) error {
	if rc.AddedAt.IsZero() {
		rc.AddedAt = time.Now()
	}
	return nil
}
