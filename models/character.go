package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// 角色来源：素材库选入 / 本次生成
	CharacterFromLibrary    = "library"
	CharacterNewlyGenerated = "generated"
)

// Character 项目完成时落库的角色，name 是场景内引用角色的唯一键
type Character struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID   string    `gorm:"column:project_id" json:"projectId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       []byte    `json:"image,omitempty"`
	Provenance  string    `json:"provenance"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Character) TableName() string {
	return "character"
}

func CreateCharacter(db *gorm.DB, c *Character) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()
	return db.Create(c).Error
}

func GetCharactersByProjectID(db *gorm.DB, projectID string) ([]Character, error) {
	var chars []Character
	if err := db.Where("project_id = ?", projectID).Find(&chars).Error; err != nil {
		return nil, err
	}
	return chars, nil
}
