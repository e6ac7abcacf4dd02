package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VideoHistory 按 (项目, 场景序号, 变体序号) 记录的生成视频
type VideoHistory struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID string    `gorm:"column:project_id" json:"projectId"`
	SceneSeq  int       `gorm:"column:scene_seq" json:"sceneSeq"`
	Variant   int       `json:"variant"`
	Prompt    string    `json:"prompt"`
	ObjectURL string    `gorm:"column:object_url" json:"objectUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func (VideoHistory) TableName() string {
	return "video_history"
}

type AudioHistory struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ProjectID    string    `gorm:"column:project_id" json:"projectId"`
	Text         string    `json:"text"`
	Voice        string    `json:"voice"`
	Style        string    `json:"style"`
	SpeakingRate float64   `gorm:"column:speaking_rate" json:"speakingRate"`
	ObjectURL    string    `gorm:"column:object_url" json:"objectUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (AudioHistory) TableName() string {
	return "audio_history"
}

// CreateVideoHistories 同一场景的两条变体一个事务入库，历史里不留半对
func CreateVideoHistories(db *gorm.DB, items []VideoHistory) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now()
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].CreatedAt = now
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
}

func CreateAudioHistory(db *gorm.DB, h *AudioHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = time.Now()
	return db.Create(h).Error
}

func GetVideoHistoryByProjectID(db *gorm.DB, projectID string) ([]VideoHistory, error) {
	var items []VideoHistory
	if err := db.Where("project_id = ?", projectID).
		Order("scene_seq ASC, variant ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
