package api

import (
	"net/http"
	"strconv"

	"IdeaToVideo-server/models"
	"IdeaToVideo-server/service"

	"github.com/gin-gonic/gin"
)

// 角色素材库列表：GET /v1/api/avatars
func ListAvatars(c *gin.Context) {
	avatars, err := models.ListAvatars(models.GormDB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询角色素材库失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

// 地点素材库列表：GET /v1/api/locations
func ListLocations(c *gin.Context) {
	locations, err := models.ListLocations(models.GormDB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询地点素材库失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// 配音语气列表：GET /v1/api/voiceover/styles
func ListVoiceoverStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": service.VoiceoverStyles})
}

// 切换后端 server：PUT /v1/api/settings/backend
// 只影响之后发出的能力调用，进行中的调用照常完成
func UpdateBackendSetting(c *gin.Context) {
	var req struct {
		ServerID int `json:"serverId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := models.SetSetting(service.SettingActiveBackend, strconv.Itoa(req.ServerID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存设置失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已切换后端", "serverId": req.ServerID})
}
