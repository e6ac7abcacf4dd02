package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func characterIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "角色下标必须是数字"})
		return 0, false
	}
	return index, true
}

// 编辑角色描述词：PUT /v1/api/runs/:run_id/characters/:index/prompt
func UpdateCharacterPrompt(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	index, ok := characterIndex(c)
	if !ok {
		return
	}
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := run.UpdateCharacterPrompt(index, req.Prompt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run.Snapshot()})
}

// 重生成单个角色形象：POST /v1/api/runs/:run_id/characters/:index/regenerate
func RegenerateCharacterImage(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	index, ok := characterIndex(c)
	if !ok {
		return
	}
	respondTransition(c, run, Pipe.RegenerateCharacterImage(c.Request.Context(), run, index))
}
