package service

import (
	"context"

	"IdeaToVideo-server/models"
)

// Store 流水线依赖的持久层切面，生产环境由 DBStore 落到 MySQL
type Store interface {
	ListAvatars() ([]models.Avatar, error)
	GetAvatarByID(id string) (*models.Avatar, error)
	FindAvatarByName(name string) (*models.Avatar, error)
	CreateAvatar(a *models.Avatar) error
	ListLocations() ([]models.Location, error)
	GetLocationByID(id string) (*models.Location, error)
	CreateProject(p *models.Project, scenes []models.SceneRecord) error
	ReplaceProjectScenes(projectID string, scenes []models.SceneRecord) error
	CreateCharacter(c *models.Character) error
	CreateVideoHistories(items []models.VideoHistory) error
	CreateAudioHistory(h *models.AudioHistory) error
}

// ObjectStore 大体积产物（视频/音频）外置存储，返回可下载地址
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// DBStore 直接委托 models 包的 gorm 实现
type DBStore struct{}

func (DBStore) ListAvatars() ([]models.Avatar, error) {
	return models.ListAvatars(models.GormDB)
}

func (DBStore) GetAvatarByID(id string) (*models.Avatar, error) {
	return models.GetAvatarByID(models.GormDB, id)
}

func (DBStore) FindAvatarByName(name string) (*models.Avatar, error) {
	return models.FindAvatarByName(models.GormDB, name)
}

func (DBStore) CreateAvatar(a *models.Avatar) error {
	return models.CreateAvatar(models.GormDB, a)
}

func (DBStore) ListLocations() ([]models.Location, error) {
	return models.ListLocations(models.GormDB)
}

func (DBStore) GetLocationByID(id string) (*models.Location, error) {
	return models.GetLocationByID(models.GormDB, id)
}

func (DBStore) CreateProject(p *models.Project, scenes []models.SceneRecord) error {
	return models.CreateProject(models.GormDB, p, scenes)
}

func (DBStore) ReplaceProjectScenes(projectID string, scenes []models.SceneRecord) error {
	return models.ReplaceProjectScenes(models.GormDB, projectID, scenes)
}

func (DBStore) CreateCharacter(c *models.Character) error {
	return models.CreateCharacter(models.GormDB, c)
}

func (DBStore) CreateVideoHistories(items []models.VideoHistory) error {
	return models.CreateVideoHistories(models.GormDB, items)
}

func (DBStore) CreateAudioHistory(h *models.AudioHistory) error {
	return models.CreateAudioHistory(models.GormDB, h)
}
