package api

import (
	"errors"
	"net/http"

	"IdeaToVideo-server/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Pipe 流水线编排器，在 main.go 中装配
var Pipe *service.Pipeline

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func findRun(c *gin.Context) (*service.Run, bool) {
	run, ok := service.GetRun(c.Param("run_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "运行不存在"})
		return nil, false
	}
	return run, true
}

// respondTransition 统一转换结果：取消静默返回，失败带错误信息
func respondTransition(c *gin.Context, run *service.Run, err error) {
	if err != nil {
		if errors.Is(err, service.ErrCancelled) {
			c.JSON(http.StatusOK, gin.H{"cancelled": true, "run": run.Snapshot()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run": run.Snapshot()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run.Snapshot()})
}

// 创建运行：POST /v1/api/runs
func CreateRun(c *gin.Context) {
	run := service.NewRun()
	c.JSON(http.StatusOK, gin.H{"run": run.Snapshot()})
}

// 查询运行：GET /v1/api/runs/:run_id
func GetRunStatus(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run.Snapshot()})
}

// 提交创意：POST /v1/api/runs/:run_id/idea
func SubmitIdea(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	var req service.SubmitIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	respondTransition(c, run, Pipe.SubmitIdea(c.Request.Context(), run, req))
}

// 确认角色：POST /v1/api/runs/:run_id/characters/confirm
func ConfirmCharacters(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	respondTransition(c, run, Pipe.ConfirmCharacters(c.Request.Context(), run))
}

// 合成全部场景图：POST /v1/api/runs/:run_id/scene-images
func GenerateSceneImages(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	respondTransition(c, run, Pipe.GenerateSceneImages(c.Request.Context(), run))
}

// 完成流水线：POST /v1/api/runs/:run_id/finalize
func FinalizePipeline(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	respondTransition(c, run, Pipe.Finalize(c.Request.Context(), run))
}

// 回退阶段：POST /v1/api/runs/:run_id/back
func BackToStage(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	var req struct {
		Stage string `json:"stage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := run.Back(service.Stage(req.Stage)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run.Snapshot()})
}

// 取消当前转换：POST /v1/api/runs/:run_id/cancel
func CancelRun(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	run.Cancel()
	c.JSON(http.StatusOK, gin.H{"message": "已发出取消"})
}

// 重置运行：POST /v1/api/runs/:run_id/reset
func ResetRun(c *gin.Context) {
	run, ok := findRun(c)
	if !ok {
		return
	}
	if err := run.Reset(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run.Snapshot()})
}

// 运行进度 WebSocket 推送：先推当前快照，之后每次进度/阶段变化即推
func RunProgressWebSocket(c *gin.Context) {
	run, ok := service.GetRun(c.Param("run_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "运行不存在"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "WebSocket升级失败"})
		return
	}
	defer conn.Close()

	ch, unsubscribe := run.Subscribe()
	defer unsubscribe()

	// 客户端断开时结束推送
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap := <-ch:
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
