package routers

import (
	"IdeaToVideo-server/routers/api"

	"github.com/gin-gonic/gin"
)

func InitRouter() *gin.Engine {
	r := gin.Default()
	v1 := r.Group("/v1/api")
	{
		v1.POST("/runs", api.CreateRun)
		v1.GET("/runs/:run_id", api.GetRunStatus)
		v1.POST("/runs/:run_id/idea", api.SubmitIdea)
		v1.POST("/runs/:run_id/characters/confirm", api.ConfirmCharacters)
		v1.POST("/runs/:run_id/scene-images", api.GenerateSceneImages)
		v1.POST("/runs/:run_id/finalize", api.FinalizePipeline)
		v1.POST("/runs/:run_id/back", api.BackToStage)
		v1.POST("/runs/:run_id/cancel", api.CancelRun)
		v1.POST("/runs/:run_id/reset", api.ResetRun)
		v1.PUT("/runs/:run_id/characters/:index/prompt", api.UpdateCharacterPrompt)
		v1.POST("/runs/:run_id/characters/:index/regenerate", api.RegenerateCharacterImage)
		v1.PUT("/runs/:run_id/scenes/:seq", api.UpdateScene)
		v1.POST("/runs/:run_id/scenes/:seq/regenerate", api.RegenerateSceneImage)
		v1.POST("/runs/:run_id/scenes/:seq/videos", api.GenerateSceneVideos)
		v1.POST("/runs/:run_id/voiceover", api.GenerateVoiceover)
		v1.GET("/projects", api.ListProjects)
		v1.GET("/projects/:project_id", api.GetProject)
		v1.GET("/projects/:project_id/history/videos", api.GetProjectVideoHistory)
		v1.GET("/avatars", api.ListAvatars)
		v1.GET("/locations", api.ListLocations)
		v1.GET("/voiceover/styles", api.ListVoiceoverStyles)
		v1.PUT("/settings/backend", api.UpdateBackendSetting)
	}
	r.GET("/runs/:run_id/wss", api.RunProgressWebSocket)
	return r
}
