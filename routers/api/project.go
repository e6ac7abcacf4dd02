package api

import (
	"net/http"

	"IdeaToVideo-server/models"

	"github.com/gin-gonic/gin"
)

// 项目列表：GET /v1/api/projects
func ListProjects(c *gin.Context) {
	projects, err := models.ListProjects(models.GormDB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询项目列表失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// 项目详情（含场景与角色）：GET /v1/api/projects/:project_id
func GetProject(c *gin.Context) {
	projectID := c.Param("project_id")
	project, err := models.GetProjectByID(models.GormDB, projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "项目不存在: " + err.Error()})
		return
	}
	scenes, err := models.GetProjectScenes(models.GormDB, projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询项目场景失败: " + err.Error()})
		return
	}
	characters, err := models.GetCharactersByProjectID(models.GormDB, projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询项目角色失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project, "scenes": scenes, "characters": characters})
}

// 项目视频历史：GET /v1/api/projects/:project_id/history/videos
func GetProjectVideoHistory(c *gin.Context) {
	items, err := models.GetVideoHistoryByProjectID(models.GormDB, c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询视频历史失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
