package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	RestaurantID uint       `gorm:"not null;index" json:"restaurantId"`
	CustomerID   string     `gorm:"type:varchar(64);not null;index" json:"customerId"`
	OrderID      string     `gorm:"type:varchar(64)" json:"orderId,omitempty"`
	Rating       int        `gorm:"not null;index" json:"rating"`
	Comment      string     `gorm:"type:text" json:"comment,omitempty"`
	Images       StringList `gorm:"type:text" json:"images"`
	IsVerified   bool       `gorm:"default:false" json:"isVerified"`
	IsVisible    bool       `gorm:"default:true;index" json:"isVisible"`
	Response     string     `gorm:"type:text" json:"response,omitempty"`
	RespondedAt  *time.Time `json:"respondedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	return nil
}
