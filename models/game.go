package models

import (
	"time"

	"gorm.io/gorm"
)

type Game struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null;index"`
	URL       string         `json:"url" gorm:"not null"`
	Count     int            `json:"count" gorm:"not null;default:0"`
	Featured  bool           `json:"featured" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Votes []Vote `json:"votes,omitempty" gorm:"foreignKey:GameID"`
}
