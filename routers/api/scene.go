package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func sceneSeq(c *gin.Context) (int, bool) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "场景序号必须是数字"})
		return 0, false
	}
	return seq, true
}

// 编辑场景：PUT /v1/api/runs/:run_id/scenes/:seq
func UpdateScene(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	seq, ok := sceneSeq(c)
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description" binding:"required"`
		Script      string `json:"script" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := run.UpdateScene(seq, req.Description, req.Script); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run.Snapshot()})
}

// 重生成单个场景图：POST /v1/api/runs/:run_id/scenes/:seq/regenerate
func RegenerateSceneImage(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	seq, ok := sceneSeq(c)
	if !ok {
		return
	}
	respondTransition(c, run, Pipe.RegenerateSceneImage(c.Request.Context(), run, seq))
}

// 生成场景视频对：POST /v1/api/runs/:run_id/scenes/:seq/videos
func GenerateSceneVideos(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	seq, ok := sceneSeq(c)
	if !ok {
		return
	}
	respondTransition(c, run, Pipe.GenerateSceneVideos(c.Request.Context(), run, seq))
}
