package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Idea      string    `json:"idea"`
	Genre     string    `json:"genre"`
	Language  string    `json:"language"`
	Style     string    `json:"style"`
	SeoBundle SeoBundle `gorm:"type:json" json:"seoBundle"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Project) TableName() string {
	return "project"
}

// SceneRecord 持久化后的场景行，seq 从 1 开始连续编号
type SceneRecord struct {
	ID          string           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID   string           `gorm:"column:project_id" json:"projectId"`
	Seq         int              `json:"seq"`
	Description string           `json:"description"`
	Script      string           `json:"script"`
	Characters  StringList       `gorm:"type:json" json:"characters"`
	Image       []byte           `json:"image,omitempty"`
	VeoPrompt   *CinematicPrompt `gorm:"type:json" json:"veoPrompt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (SceneRecord) TableName() string {
	return "scene"
}

// CreateProject 首次落库，由仓储层分配 id；此后所有局部写都以该 id 为准
func CreateProject(db *gorm.DB, p *Project, scenes []SceneRecord) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		for i := range scenes {
			scenes[i].ID = uuid.NewString()
			scenes[i].ProjectID = p.ID
			scenes[i].CreatedAt = now
			scenes[i].UpdatedAt = now
		}
		if len(scenes) == 0 {
			return nil
		}
		return tx.Create(&scenes).Error
	})
}

// ReplaceProjectScenes 整体重写某项目的场景行（场景图重生后的后台补写）
func ReplaceProjectScenes(db *gorm.DB, projectID string, scenes []SceneRecord) error {
	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&SceneRecord{}).Error; err != nil {
			return err
		}
		for i := range scenes {
			scenes[i].ID = uuid.NewString()
			scenes[i].ProjectID = projectID
			scenes[i].CreatedAt = now
			scenes[i].UpdatedAt = now
		}
		if len(scenes) == 0 {
			return nil
		}
		return tx.Create(&scenes).Error
	})
}

func GetProjectByID(db *gorm.DB, id string) (*Project, error) {
	var p Project
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func GetProjectScenes(db *gorm.DB, projectID string) ([]SceneRecord, error) {
	var scenes []SceneRecord
	if err := db.Where("project_id = ?", projectID).Order("seq ASC").Find(&scenes).Error; err != nil {
		return nil, err
	}
	return scenes, nil
}

func ListProjects(db *gorm.DB) ([]Project, error) {
	var projects []Project
	if err := db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}
