package db

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        uint           `gorm:"primaryKey"`
	UID       string         `gorm:"size:36;uniqueIndex;not null"`
	Email     string         `gorm:"size:128;uniqueIndex;not null"`
	Name      string         `gorm:"size:64;not null"`
	GameUIDs  datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

type Lobby struct {
	ID        uint           `gorm:"primaryKey"`
	UID       string         `gorm:"size:36;uniqueIndex;not null"`
	HostUID   string         `gorm:"size:36;index;not null"`
	Players   datatypes.JSON `gorm:"type:jsonb;not null"`
	GameUID   string         `gorm:"size:36;index"`
	Started   bool           `gorm:"not null;default:false"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

type Game struct {
	ID        uint           `gorm:"primaryKey"`
	UID       string         `gorm:"size:36;uniqueIndex;not null"`
	OwnerUID  string         `gorm:"size:36;index;not null"`
	State     string         `gorm:"size:32;not null"`
	Snapshot  datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameUID   string         `gorm:"size:36;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserEmail string    `gorm:"size:128"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
