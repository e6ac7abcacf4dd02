package api

import (
	"errors"
	"net/http"

	"IdeaToVideo-server/service"

	"github.com/gin-gonic/gin"
)

// 生成配音：POST /v1/api/runs/:run_id/voiceover
func GenerateVoiceover(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	var req service.VoiceoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	url, err := Pipe.GenerateVoiceover(c.Request.Context(), run, req)
	if err != nil {
		if errors.Is(err, service.ErrCancelled) {
			c.JSON(http.StatusOK, gin.H{"cancelled": true})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audioUrl": url})
}
