package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Avatar 角色素材库条目，name 全库唯一（大小写不敏感）
type Avatar struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       []byte    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Avatar) TableName() string {
	return "avatar"
}

type Location struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `json:"name"`
	Image     []byte    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Location) TableName() string {
	return "location"
}

func ListAvatars(db *gorm.DB) ([]Avatar, error) {
	var avatars []Avatar
	if err := db.Order("created_at ASC").Find(&avatars).Error; err != nil {
		return nil, err
	}
	return avatars, nil
}

func GetAvatarByID(db *gorm.DB, id string) (*Avatar, error) {
	var a Avatar
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAvatarByName 按名字查重，大小写不敏感
func FindAvatarByName(db *gorm.DB, name string) (*Avatar, error) {
	var a Avatar
	err := db.Where("LOWER(name) = LOWER(?)", name).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func CreateAvatar(db *gorm.DB, a *Avatar) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	return db.Create(a).Error
}

func ListLocations(db *gorm.DB) ([]Location, error) {
	var locations []Location
	if err := db.Order("created_at ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func GetLocationByID(db *gorm.DB, id string) (*Location, error) {
	var l Location
	if err := db.First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}
